package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision"
)

// Provider is a deterministic vision analyzer and embedding generator for
// tests and local development. The same image bytes always produce the same
// analysis and the same embedding.
type Provider struct{}

var (
	_ vision.Analyzer           = (*Provider)(nil)
	_ vision.EmbeddingGenerator = (*Provider)(nil)
)

// New cria uma nova instância do mock provider
func New() *Provider {
	return &Provider{}
}

// Analyze derives a synthetic VisionResult from the image hash
func (p *Provider) Analyze(ctx context.Context, image []byte) (*domain.VisionResult, error) {
	if len(image) < 100 {
		return nil, domain.ErrInvalidImage
	}

	result := buildResult(image, nil)
	return &result, nil
}

// AnalyzeMultiple returns between one and three synthetic detections,
// derived from the image hash so tests can rely on stable output
func (p *Provider) AnalyzeMultiple(ctx context.Context, image []byte) ([]domain.VisionResult, error) {
	if len(image) < 100 {
		return nil, domain.ErrInvalidImage
	}

	hash := sha256.Sum256(image)
	count := int(hash[0])%3 + 1

	results := make([]domain.VisionResult, 0, count)
	for i := 0; i < count; i++ {
		offset := float64(i) / float64(count)
		results = append(results, buildResult(image, &domain.BoundingBox{
			X:      offset,
			Y:      0.1,
			Width:  1.0 / float64(count),
			Height: 0.8,
		}))
	}

	return results, nil
}

// Embed gera embedding determinístico baseado no hash da imagem
func (p *Provider) Embed(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) < 100 {
		return nil, domain.ErrInvalidImage
	}

	return generateEmbedding(image), nil
}

var mockBrands = []string{"Stanley", "DeWalt", "Bosch", "Makita"}

var mockObjects = [][]string{
	{"Hammer", "Tool"},
	{"Drill", "Power Tool"},
	{"Screwdriver", "Tool"},
	{"Wrench", "Hand Tool"},
}

func buildResult(image []byte, box *domain.BoundingBox) domain.VisionResult {
	hash := sha256.Sum256(image)
	brand := mockBrands[int(hash[1])%len(mockBrands)]
	objects := mockObjects[int(hash[2])%len(mockObjects)]

	return domain.VisionResult{
		Brand:         brand,
		Category:      "Tools",
		Colors:        []string{"Yellow", "Black"},
		Logos:         []string{brand},
		Objects:       objects,
		UsageTags:     []string{"construction", "diy"},
		ImageTags:     objects,
		BoundingBox:   box,
		SuggestedName: brand + " " + objects[0],
	}
}

// generateEmbedding gera embedding determinístico baseado no hash da imagem
func generateEmbedding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, vision.EmbeddingDimension)
	hashLen := len(hash)

	for i := 0; i < vision.EmbeddingDimension; i++ {
		idx := i % hashLen
		embedding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}
