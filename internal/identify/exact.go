package identify

import (
	"context"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

// matchExact is the exact-field matcher: case-insensitive equality on brand
// and/or model number, always filtered by category. It returns at most one
// match. With fewer than two usable conditions it short-circuits to no match
// rather than querying on category alone.
func (s *Service) matchExact(ctx context.Context, result *domain.VisionResult) (*domain.IdentificationMatch, error) {
	var brand, modelNumber *string
	conditions := 1 // category is always present
	if result.HasBrand() {
		brand = &result.Brand
		conditions++
	}
	if result.HasModelNumber() {
		modelNumber = &result.ModelNumber
		conditions++
	}

	if conditions < 2 {
		return nil, nil
	}

	category := result.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	products, err := s.products.FindByExactFields(ctx, brand, modelNumber, category)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredCandidate, len(products))
	for i, product := range products {
		scored[i] = ScoreCandidate(product, result)
	}

	winner := pickWinner(scored, result)
	return matchFromCandidate(winner), nil
}

// pickWinner resolves ties between candidates that matched the same fields.
// Ties are broken by tag overlap against the image's usage and image tags;
// when the image carries no tags, the highest total similarity wins.
func pickWinner(scored []domain.ScoredCandidate, result *domain.VisionResult) domain.ScoredCandidate {
	if len(scored) == 1 {
		return scored[0]
	}

	imageTags := tagUnion(result.UsageTags, result.ImageTags)
	if len(imageTags) == 0 {
		return highestSimilarity(scored)
	}

	best := scored[0]
	bestOverlap := tagOverlap(best, imageTags)
	for _, candidate := range scored[1:] {
		overlap := tagOverlap(candidate, imageTags)
		if overlap > bestOverlap || (overlap == bestOverlap && candidate.Total > best.Total) {
			best = candidate
			bestOverlap = overlap
		}
	}
	return best
}

func highestSimilarity(scored []domain.ScoredCandidate) domain.ScoredCandidate {
	best := scored[0]
	for _, candidate := range scored[1:] {
		if candidate.Total > best.Total {
			best = candidate
		}
	}
	return best
}

// tagUnion builds a case-insensitive set from both tag lists
func tagUnion(usageTags, imageTags []string) map[string]struct{} {
	union := make(map[string]struct{}, len(usageTags)+len(imageTags))
	for _, tag := range usageTags {
		union[strings.ToLower(tag)] = struct{}{}
	}
	for _, tag := range imageTags {
		union[strings.ToLower(tag)] = struct{}{}
	}
	return union
}

func tagOverlap(candidate domain.ScoredCandidate, imageTags map[string]struct{}) int {
	overlap := 0
	for tag := range tagUnion(candidate.Product.UsageTags, candidate.Product.ImageTags) {
		if _, ok := imageTags[tag]; ok {
			overlap++
		}
	}
	return overlap
}

func matchFromCandidate(candidate domain.ScoredCandidate) *domain.IdentificationMatch {
	return &domain.IdentificationMatch{
		Product:    candidate.Product,
		Confidence: candidate.Total,
		MatchType:  domain.MatchTypeVision,
		Similarity: candidate.Total,
		Details:    fmt.Sprintf("matched catalog fields with similarity %.4f", candidate.Total),
		Metadata: map[string]interface{}{
			"method":          "exact_fields",
			"base_similarity": candidate.BaseSimilarity,
			"logo_bonus":      candidate.LogoBonus,
			"object_bonus":    candidate.ObjectBonus,
			"matched_logos":   candidate.MatchedLogos,
			"matched_objects": candidate.MatchedObjects,
		},
	}
}
