package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

type ThresholdConfigRepository struct {
	pool PgxPool
}

func NewThresholdConfigRepository(pool PgxPool) *ThresholdConfigRepository {
	return &ThresholdConfigRepository{pool: pool}
}

const thresholdColumns = `id, version, brand_model_min_confidence, logo_detection_min_confidence,
		object_detection_min_confidence, vision_match_min_confidence, vector_similarity_min_confidence,
		auto_approve_threshold, manual_validation_threshold,
		total_identifications, correct_identifications, false_positives, false_negatives,
		accuracy, last_training_at, sample_count, is_active, created_at`

// Create inserts a new configuration version. Existing versions are never
// mutated; history is append-only.
func (r *ThresholdConfigRepository) Create(ctx context.Context, config *domain.ThresholdConfig) error {
	query := `
		INSERT INTO threshold_configs (
			id, version, brand_model_min_confidence, logo_detection_min_confidence,
			object_detection_min_confidence, vision_match_min_confidence, vector_similarity_min_confidence,
			auto_approve_threshold, manual_validation_threshold,
			total_identifications, correct_identifications, false_positives, false_negatives,
			accuracy, last_training_at, sample_count, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		RETURNING created_at
	`

	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		config.ID,
		config.Version,
		config.BrandModelMinConfidence,
		config.LogoDetectionMinConfidence,
		config.ObjectDetectionMinConfidence,
		config.VisionMatchMinConfidence,
		config.VectorSimilarityMinConfidence,
		config.AutoApproveThreshold,
		config.ManualValidationThreshold,
		config.TotalIdentifications,
		config.CorrectIdentifications,
		config.FalsePositives,
		config.FalseNegatives,
		config.Accuracy,
		config.LastTrainingAt,
		config.SampleCount,
		config.IsActive,
	).Scan(&config.CreatedAt)

	if err != nil {
		return fmt.Errorf("create threshold config: %w", err)
	}

	return nil
}

// GetActive returns the single active configuration
func (r *ThresholdConfigRepository) GetActive(ctx context.Context) (*domain.ThresholdConfig, error) {
	query := `SELECT ` + thresholdColumns + ` FROM threshold_configs WHERE is_active = true LIMIT 1`

	var cfg domain.ThresholdConfig
	err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.ID,
		&cfg.Version,
		&cfg.BrandModelMinConfidence,
		&cfg.LogoDetectionMinConfidence,
		&cfg.ObjectDetectionMinConfidence,
		&cfg.VisionMatchMinConfidence,
		&cfg.VectorSimilarityMinConfidence,
		&cfg.AutoApproveThreshold,
		&cfg.ManualValidationThreshold,
		&cfg.TotalIdentifications,
		&cfg.CorrectIdentifications,
		&cfg.FalsePositives,
		&cfg.FalseNegatives,
		&cfg.Accuracy,
		&cfg.LastTrainingAt,
		&cfg.SampleCount,
		&cfg.IsActive,
		&cfg.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoActiveThresholdConfig
	}
	if err != nil {
		return nil, fmt.Errorf("get active threshold config: %w", err)
	}

	return &cfg, nil
}

// Activate flags the given configuration as active and deactivates the rest.
// Both updates run in one transaction so an unknown id leaves the previously
// active row untouched. Deactivation comes first because of the partial
// unique index on is_active.
func (r *ThresholdConfigRepository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin activate transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `UPDATE threshold_configs SET is_active = false WHERE is_active = true`); err != nil {
		return fmt.Errorf("deactivate threshold configs: %w", err)
	}

	result, err := tx.Exec(ctx, `UPDATE threshold_configs SET is_active = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("activate threshold config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrThresholdConfigNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit activate transaction: %w", err)
	}

	return nil
}
