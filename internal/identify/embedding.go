package identify

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// matchEmbedding is the fallback matcher: single nearest neighbor by cosine
// similarity, restricted to the configured floor. No disambiguation happens
// at this stage; the closest entry either clears the floor or nothing does.
func (s *Service) matchEmbedding(ctx context.Context, embedding []float64, cfg *domain.ThresholdConfig) (*domain.IdentificationMatch, error) {
	product, similarity, err := s.products.FindMostSimilar(ctx, embedding, cfg.VectorSimilarityMinConfidence)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	return &domain.IdentificationMatch{
		Product:    *product,
		Confidence: similarity,
		MatchType:  domain.MatchTypeVectorSimilarity,
		Similarity: similarity,
		Details:    fmt.Sprintf("nearest embedding at cosine similarity %.4f", similarity),
		Metadata: map[string]interface{}{
			"method":         "vector_similarity",
			"min_confidence": cfg.VectorSimilarityMinConfidence,
		},
	}, nil
}
