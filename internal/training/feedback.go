package training

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// RecordValidation appends one human judgment to the validation ledger.
// The ledger is append-only; retraining consumes it in batches.
func (c *Controller) RecordValidation(ctx context.Context, record *domain.ValidationRecord) error {
	if record.ImageHash == "" || record.MatchType == "" {
		return domain.ErrValidationFailed
	}
	if record.Confidence < 0 || record.Confidence > 1 {
		return domain.ErrValidationFailed
	}
	if record.CorrectionType == "" {
		if record.WasCorrect {
			record.CorrectionType = domain.CorrectionCorrect
		} else {
			record.CorrectionType = domain.CorrectionFalsePositive
		}
	}

	if err := c.validations.Create(ctx, record); err != nil {
		return err
	}

	c.logger.Debug("validation recorded",
		slog.String("match_type", string(record.MatchType)),
		slog.Bool("was_correct", record.WasCorrect))

	return nil
}
