package vision

import (
	"context"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// Analyzer extracts structured product attributes from a photograph.
// Analyze works on the full image; AnalyzeMultiple returns one result per
// detected object, each optionally locating the object with a bounding box.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*domain.VisionResult, error)
	AnalyzeMultiple(ctx context.Context, image []byte) ([]domain.VisionResult, error)
}

// EmbeddingGenerator produces a fixed-length vector representing the
// visual content of an image, compared downstream via cosine similarity.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, image []byte) ([]float64, error)
}

// EmbeddingDimension is the vector length every generator must produce,
// matching the vector(512) column in the catalog.
const EmbeddingDimension = 512
