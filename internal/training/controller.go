package training

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
	"github.com/saturnino-fabrica-de-software/identika/internal/repository"
)

const (
	// RetrainBatchSize is the number of validations that must accumulate
	// since the active configuration's last training before a retrain runs.
	// Adjusting thresholds on smaller samples would thrash them on noise.
	RetrainBatchSize = 100

	// maxSampleSize caps how many recent records one retrain analyzes
	maxSampleSize = 1000

	// minSamplesPerType is the minimum sample count for a match type's
	// threshold to be adjusted at all
	minSamplesPerType = 10

	// thresholdStep is the fixed adjustment applied per retrain
	thresholdStep = 0.02

	// targetAccuracy is the floor below which a threshold is raised
	targetAccuracy = 0.90
	// relaxAccuracy is the ceiling above which a threshold is lowered
	relaxAccuracy = 0.95
)

// Controller consumes accumulated validation feedback and produces new
// versioned threshold configurations. Configurations are append-only: the
// controller never mutates an existing version, and the new version starts
// inactive. Activation is a separate explicit step.
type Controller struct {
	validations repository.ValidationRepositoryInterface
	configs     repository.ThresholdConfigRepositoryInterface
	store       *ConfigStore
	logger      *slog.Logger
}

func NewController(
	validations repository.ValidationRepositoryInterface,
	configs repository.ThresholdConfigRepositoryInterface,
	store *ConfigStore,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		validations: validations,
		configs:     configs,
		store:       store,
		logger:      logger,
	}
}

type typeStats struct {
	total   int
	correct int
}

func (s typeStats) accuracy() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.correct) / float64(s.total)
}

// Retrain runs one training pass. It returns (nil, nil) when fewer than
// RetrainBatchSize validations accumulated since the active configuration's
// last training; otherwise it persists and returns the new inactive
// configuration.
func (c *Controller) Retrain(ctx context.Context) (*domain.ThresholdConfig, error) {
	active, err := c.store.ActiveOrDefault(ctx)
	if err != nil {
		return nil, err
	}

	count, err := c.validations.CountSince(ctx, active.LastTrainingAt)
	if err != nil {
		return nil, err
	}
	if count < RetrainBatchSize {
		c.logger.Debug("not enough validations to retrain",
			slog.Int64("accumulated", count),
			slog.Int("required", RetrainBatchSize))
		return nil, nil
	}

	records, err := c.validations.Recent(ctx, maxSampleSize)
	if err != nil {
		return nil, err
	}

	next, err := c.buildNextConfig(active, records)
	if err != nil {
		return nil, err
	}

	if err := c.configs.Create(ctx, next); err != nil {
		return nil, err
	}

	c.logger.Info("retrained threshold configuration",
		slog.String("version", next.Version),
		slog.Int("sample_count", next.SampleCount),
		slog.Float64("accuracy", next.Accuracy))

	return next, nil
}

// buildNextConfig derives the next configuration from the active one and a
// batch of validation records
func (c *Controller) buildNextConfig(active *domain.ThresholdConfig, records []domain.ValidationRecord) (*domain.ThresholdConfig, error) {
	version, err := domain.NextVersion(active.Version)
	if err != nil {
		return nil, err
	}

	next := &domain.ThresholdConfig{
		Version:                       version,
		BrandModelMinConfidence:       active.BrandModelMinConfidence,
		LogoDetectionMinConfidence:    active.LogoDetectionMinConfidence,
		ObjectDetectionMinConfidence:  active.ObjectDetectionMinConfidence,
		VisionMatchMinConfidence:      active.VisionMatchMinConfidence,
		VectorSimilarityMinConfidence: active.VectorSimilarityMinConfidence,
		AutoApproveThreshold:          active.AutoApproveThreshold,
		ManualValidationThreshold:     active.ManualValidationThreshold,
		LastTrainingAt:                time.Now().UTC(),
		SampleCount:                   len(records),
		IsActive:                      false,
	}

	byType := make(map[domain.MatchType]*typeStats)
	for _, record := range records {
		stats, ok := byType[record.MatchType]
		if !ok {
			stats = &typeStats{}
			byType[record.MatchType] = stats
		}
		stats.total++

		next.TotalIdentifications++
		if record.WasCorrect {
			stats.correct++
			next.CorrectIdentifications++
		}
		switch record.CorrectionType {
		case domain.CorrectionFalsePositive:
			next.FalsePositives++
		case domain.CorrectionFalseNegative:
			next.FalseNegatives++
		}
	}

	for matchType, stats := range byType {
		floor := floorFor(next, matchType)
		if floor == nil {
			continue
		}
		if stats.total < minSamplesPerType {
			c.logger.Debug("skipping threshold adjustment, sample too small",
				slog.String("match_type", string(matchType)),
				slog.Int("samples", stats.total))
			continue
		}

		accuracy := stats.accuracy()
		switch {
		case accuracy >= relaxAccuracy:
			*floor = domain.ClampThreshold(round4(*floor - thresholdStep))
		case accuracy < targetAccuracy:
			*floor = domain.ClampThreshold(round4(*floor + thresholdStep))
		}
	}

	if next.TotalIdentifications > 0 {
		next.Accuracy = round4(float64(next.CorrectIdentifications) / float64(next.TotalIdentifications))
	}

	return next, nil
}

// floorFor maps a validation record's match type onto the threshold it
// calibrates. Unknown match types still count toward global accuracy but
// adjust nothing.
func floorFor(cfg *domain.ThresholdConfig, matchType domain.MatchType) *float64 {
	switch matchType {
	case "BRAND_MODEL":
		return &cfg.BrandModelMinConfidence
	case "LOGO_DETECTION":
		return &cfg.LogoDetectionMinConfidence
	case "OBJECT_DETECTION":
		return &cfg.ObjectDetectionMinConfidence
	case domain.MatchTypeVision:
		return &cfg.VisionMatchMinConfidence
	case domain.MatchTypeVectorSimilarity:
		return &cfg.VectorSimilarityMinConfidence
	default:
		return nil
	}
}

// round4 rounds half-up to 4 decimal places
func round4(v float64) float64 {
	return math.Floor(v*10000+0.5) / 10000
}
