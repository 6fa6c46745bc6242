package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

type ValidationRepository struct {
	pool PgxPool
}

func NewValidationRepository(pool PgxPool) *ValidationRepository {
	return &ValidationRepository{pool: pool}
}

// Create appends one validation record. The ledger is append-only:
// records are never updated or deleted in normal operation.
func (r *ValidationRepository) Create(ctx context.Context, record *domain.ValidationRecord) error {
	query := `
		INSERT INTO validation_records (
			id, image_hash, suggested_product_id, actual_product_id, confidence,
			match_type, similarity, was_correct, correction_type, validated_by,
			source, sale_id, stock_entry_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.ImageHash,
		record.SuggestedProductID,
		record.ActualProductID,
		record.Confidence,
		record.MatchType,
		record.Similarity,
		record.WasCorrect,
		record.CorrectionType,
		record.ValidatedBy,
		record.Source,
		record.SaleID,
		record.StockEntryID,
	).Scan(&record.CreatedAt)

	if err != nil {
		return fmt.Errorf("create validation record: %w", err)
	}

	return nil
}

// CountSince returns the number of validation records created after the given time
func (r *ValidationRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM validation_records WHERE created_at > $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count validation records: %w", err)
	}

	return count, nil
}

// Recent returns the most recent validation records, newest first
func (r *ValidationRepository) Recent(ctx context.Context, limit int) ([]domain.ValidationRecord, error) {
	query := `
		SELECT id, image_hash, suggested_product_id, actual_product_id, confidence,
			match_type, similarity, was_correct, correction_type, validated_by,
			source, sale_id, stock_entry_id, created_at
		FROM validation_records
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent validation records: %w", err)
	}
	defer rows.Close()

	var records []domain.ValidationRecord
	for rows.Next() {
		var rec domain.ValidationRecord
		err := rows.Scan(
			&rec.ID,
			&rec.ImageHash,
			&rec.SuggestedProductID,
			&rec.ActualProductID,
			&rec.Confidence,
			&rec.MatchType,
			&rec.Similarity,
			&rec.WasCorrect,
			&rec.CorrectionType,
			&rec.ValidatedBy,
			&rec.Source,
			&rec.SaleID,
			&rec.StockEntryID,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan validation record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate validation records: %w", err)
	}

	return records, nil
}
