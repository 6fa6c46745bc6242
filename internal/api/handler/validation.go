package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// ValidationRecorder records human judgments of past identifications
type ValidationRecorder interface {
	RecordValidation(ctx context.Context, record *domain.ValidationRecord) error
}

// ValidationHandler handles validation feedback requests
type ValidationHandler struct {
	recorder ValidationRecorder
	logger   *slog.Logger
}

// NewValidationHandler creates a new ValidationHandler instance
func NewValidationHandler(recorder ValidationRecorder, logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// CreateValidationRequest is the body for recording a validation judgment
type CreateValidationRequest struct {
	ImageHash          string                      `json:"image_hash"`
	SuggestedProductID *uuid.UUID                  `json:"suggested_product_id,omitempty"`
	ActualProductID    *uuid.UUID                  `json:"actual_product_id,omitempty"`
	Confidence         float64                     `json:"confidence"`
	MatchType          domain.MatchType            `json:"match_type"`
	Similarity         float64                     `json:"similarity"`
	WasCorrect         bool                        `json:"was_correct"`
	CorrectionType     domain.CorrectionType       `json:"correction_type,omitempty"`
	ValidatedBy        string                      `json:"validated_by,omitempty"`
	Source             domain.IdentificationSource `json:"source,omitempty"`
	SaleID             *uuid.UUID                  `json:"sale_id,omitempty"`
	StockEntryID       *uuid.UUID                  `json:"stock_entry_id,omitempty"`
}

// Create POST /v1/validations - record a human judgment of an identification
func (h *ValidationHandler) Create(c *fiber.Ctx) error {
	var req CreateValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	record := &domain.ValidationRecord{
		ImageHash:          req.ImageHash,
		SuggestedProductID: req.SuggestedProductID,
		ActualProductID:    req.ActualProductID,
		Confidence:         req.Confidence,
		MatchType:          req.MatchType,
		Similarity:         req.Similarity,
		WasCorrect:         req.WasCorrect,
		CorrectionType:     req.CorrectionType,
		ValidatedBy:        req.ValidatedBy,
		Source:             req.Source,
		SaleID:             req.SaleID,
		StockEntryID:       req.StockEntryID,
	}

	if err := h.recorder.RecordValidation(c.Context(), record); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}
