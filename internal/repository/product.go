package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

type ProductRepository struct {
	pool PgxPool
}

func NewProductRepository(pool PgxPool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, description, category, brand, model_number, colors,
		logo_detections, object_detections, usage_tags, image_tags, embedding,
		recognition_accuracy, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, category, brand, model_number, colors,
			logo_detections, object_detections, usage_tags, image_tags, embedding,
			recognition_accuracy, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Category,
		product.Brand,
		product.ModelNumber,
		product.Colors,
		product.LogoDetections,
		product.ObjectDetections,
		product.UsageTags,
		product.ImageTags,
		toVector(product.Embedding),
		product.RecognitionAccuracy,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProductExists
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	return product, nil
}

// FindByExactFields queries candidates whose brand and/or model number equal
// the given values (case-insensitive), always also filtering by category.
// Absent brand/model values do not contribute a condition.
func (r *ProductRepository) FindByExactFields(ctx context.Context, brand, modelNumber *string, category string) ([]domain.Product, error) {
	conditions := []string{"LOWER(category) = LOWER($1)"}
	args := []any{category}

	if brand != nil && *brand != "" {
		args = append(args, *brand)
		conditions = append(conditions, fmt.Sprintf("LOWER(brand) = LOWER($%d)", len(args)))
	}
	if modelNumber != nil && *modelNumber != "" {
		args = append(args, *modelNumber)
		conditions = append(conditions, fmt.Sprintf("LOWER(model_number) = LOWER($%d)", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find products by exact fields: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// FindMostSimilar returns the single catalog entry closest to the query
// embedding, or nil when nothing reaches minSimilarity. Similarity is
// cosine-derived (1 - cosine distance).
func (r *ProductRepository) FindMostSimilar(ctx context.Context, embedding []float64, minSimilarity float64) (*domain.Product, float64, error) {
	query := `
		SELECT ` + productColumns + `, 1 - (embedding <=> $1) AS similarity
		FROM products
		WHERE embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT 1
	`

	vec := toVector(embedding)
	if vec == nil {
		return nil, 0, fmt.Errorf("find most similar: empty embedding")
	}

	row := r.pool.QueryRow(ctx, query, *vec, minSimilarity)
	product, similarity, err := scanProductWithSimilarity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find most similar product: %w", err)
	}

	return product, similarity, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var embedding *pgvector.Vector

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Brand,
		&product.ModelNumber,
		&product.Colors,
		&product.LogoDetections,
		&product.ObjectDetections,
		&product.UsageTags,
		&product.ImageTags,
		&embedding,
		&product.RecognitionAccuracy,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Embedding = fromVector(embedding)
	return &product, nil
}

func scanProductWithSimilarity(row rowScanner) (*domain.Product, float64, error) {
	var product domain.Product
	var embedding *pgvector.Vector
	var similarity float64

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Brand,
		&product.ModelNumber,
		&product.Colors,
		&product.LogoDetections,
		&product.ObjectDetections,
		&product.UsageTags,
		&product.ImageTags,
		&embedding,
		&product.RecognitionAccuracy,
		&product.CreatedAt,
		&product.UpdatedAt,
		&similarity,
	)
	if err != nil {
		return nil, 0, err
	}

	product.Embedding = fromVector(embedding)
	return &product, similarity, nil
}

func toVector(embedding []float64) *pgvector.Vector {
	if len(embedding) == 0 {
		return nil
	}
	floats := make([]float32, len(embedding))
	for i, v := range embedding {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)
	return &vec
}

func fromVector(vec *pgvector.Vector) []float64 {
	if vec == nil || vec.Slice() == nil {
		return nil
	}
	embedding := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		embedding[i] = float64(v)
	}
	return embedding
}
