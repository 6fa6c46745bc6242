package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// ThresholdStore serves and switches threshold configurations
type ThresholdStore interface {
	ActiveOrDefault(ctx context.Context) (*domain.ThresholdConfig, error)
	Activate(ctx context.Context, id uuid.UUID) error
}

// Retrainer evaluates the validation ledger and proposes a new configuration
type Retrainer interface {
	Retrain(ctx context.Context) (*domain.ThresholdConfig, error)
}

// ThresholdHandler handles threshold configuration requests
type ThresholdHandler struct {
	store     ThresholdStore
	retrainer Retrainer
	logger    *slog.Logger
}

// NewThresholdHandler creates a new ThresholdHandler instance
func NewThresholdHandler(store ThresholdStore, retrainer Retrainer, logger *slog.Logger) *ThresholdHandler {
	return &ThresholdHandler{
		store:     store,
		retrainer: retrainer,
		logger:    logger,
	}
}

// GetActive GET /v1/thresholds/active - return the active configuration
func (h *ThresholdHandler) GetActive(c *fiber.Ctx) error {
	cfg, err := h.store.ActiveOrDefault(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(cfg)
}

// RetrainResponse reports the result of a retrain run
type RetrainResponse struct {
	Retrained bool                    `json:"retrained"`
	Config    *domain.ThresholdConfig `json:"config,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// Retrain POST /v1/thresholds/retrain - evaluate the ledger and propose a new config
func (h *ThresholdHandler) Retrain(c *fiber.Ctx) error {
	next, err := h.retrainer.Retrain(c.Context())
	if err != nil {
		return err
	}

	if next == nil {
		return c.JSON(RetrainResponse{
			Retrained: false,
			Message:   "not enough new validations since the last training",
		})
	}

	h.logger.Info("retrain proposed new configuration",
		slog.String("version", next.Version),
		slog.Float64("accuracy", next.Accuracy))

	return c.Status(fiber.StatusCreated).JSON(RetrainResponse{
		Retrained: true,
		Config:    next,
	})
}

// Activate POST /v1/thresholds/:id/activate - promote a configuration
func (h *ThresholdHandler) Activate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.store.Activate(c.Context(), id); err != nil {
		return err
	}

	h.logger.Info("threshold configuration activated", slog.String("id", id.String()))

	return c.JSON(fiber.Map{"activated": id})
}
