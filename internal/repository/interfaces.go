package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories depend on.
// pgxmock.PgxPoolIface satisfies it, which keeps repository tests hermetic.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProductRepositoryInterface defines catalog data access for the matching engine
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByExactFields(ctx context.Context, brand, modelNumber *string, category string) ([]domain.Product, error)
	FindMostSimilar(ctx context.Context, embedding []float64, minSimilarity float64) (*domain.Product, float64, error)
}

// ValidationRepositoryInterface defines access to the validation feedback ledger
type ValidationRepositoryInterface interface {
	Create(ctx context.Context, record *domain.ValidationRecord) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.ValidationRecord, error)
}

// ThresholdConfigRepositoryInterface defines access to threshold configurations
type ThresholdConfigRepositoryInterface interface {
	Create(ctx context.Context, config *domain.ThresholdConfig) error
	GetActive(ctx context.Context) (*domain.ThresholdConfig, error)
	Activate(ctx context.Context, id uuid.UUID) error
}
