package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// IdentifyService interface for the identification engine
type IdentifyService interface {
	Identify(ctx context.Context, image []byte, source domain.IdentificationSource) (domain.Outcome, error)
	IdentifyMultiple(ctx context.Context, image []byte, minConfidence float64) (*domain.MultiDetectionResult, error)
}

// IdentifyHandler handles identification requests
type IdentifyHandler struct {
	service IdentifyService
	logger  *slog.Logger
}

// NewIdentifyHandler creates a new IdentifyHandler instance
func NewIdentifyHandler(service IdentifyService, logger *slog.Logger) *IdentifyHandler {
	return &IdentifyHandler{
		service: service,
		logger:  logger,
	}
}

// IdentifyResponse is the response for the single-object identify endpoint.
// Exactly the fields relevant to the outcome status are populated.
type IdentifyResponse struct {
	Status        domain.OutcomeStatus        `json:"status"`
	Match         *domain.IdentificationMatch `json:"match,omitempty"`
	Product       *domain.Product             `json:"product,omitempty"`
	ConfigVersion string                      `json:"config_version,omitempty"`
	Error         *ErrorInfo                  `json:"error,omitempty"`
}

// ErrorInfo carries a policy refusal in the response body
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Identify POST /v1/identify - identify a single product in an image
func (h *IdentifyHandler) Identify(c *fiber.Ctx) error {
	source, err := parseSource(c.FormValue("source"))
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	outcome, err := h.service.Identify(c.Context(), imageBytes, source)
	if err != nil {
		return err
	}

	switch o := outcome.(type) {
	case domain.Identified:
		return c.JSON(IdentifyResponse{
			Status:        o.Status(),
			Match:         &o.Match,
			ConfigVersion: o.ConfigVersion,
		})
	case domain.PartialMatch:
		return c.JSON(IdentifyResponse{
			Status:        o.Status(),
			Match:         &o.Match,
			ConfigVersion: o.ConfigVersion,
		})
	case domain.NewProductCreated:
		return c.Status(fiber.StatusCreated).JSON(IdentifyResponse{
			Status:  o.Status(),
			Product: &o.Product,
		})
	case domain.IdentificationError:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(IdentifyResponse{
			Status: o.Status(),
			Error:  &ErrorInfo{Code: o.Code, Message: o.Message},
		})
	default:
		return domain.ErrInternal
	}
}

// IdentifyBatch POST /v1/identify/batch - identify every product in an image
func (h *IdentifyHandler) IdentifyBatch(c *fiber.Ctx) error {
	minConfidence, err := parseMinConfidence(c.FormValue("min_confidence"))
	if err != nil {
		return err
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	result, err := h.service.IdentifyMultiple(c.Context(), imageBytes, minConfidence)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// parseSource validates the declared identification source, defaulting to manual
func parseSource(raw string) (domain.IdentificationSource, error) {
	switch domain.IdentificationSource(strings.TrimSpace(raw)) {
	case domain.SourceStockEntry:
		return domain.SourceStockEntry, nil
	case domain.SourceSale:
		return domain.SourceSale, nil
	case domain.SourceManual, "":
		return domain.SourceManual, nil
	default:
		return "", domain.ErrValidationFailed.WithError(
			errors.New("source must be stock_entry, sale or manual"))
	}
}

func parseMinConfidence(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 || value > 1 {
		return 0, domain.ErrValidationFailed.WithError(
			errors.New("min_confidence must be a number between 0 and 1"))
	}
	return value, nil
}

// extractAndValidateImage extracts and validates the image from the form
func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size > maxImageSize {
		return nil, domain.ErrImageTooLarge
	}

	if file.Size == 0 {
		return nil, domain.ErrInvalidImage
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
