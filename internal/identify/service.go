package identify

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
	"github.com/saturnino-fabrica-de-software/identika/internal/repository"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision"
)

// ThresholdProvider supplies the active threshold configuration, creating the
// default one when the store is empty.
type ThresholdProvider interface {
	ActiveOrDefault(ctx context.Context) (*domain.ThresholdConfig, error)
}

// Service orchestrates the identification pipeline: vision analysis, the
// exact-field matcher, the embedding fallback and the create-new decision.
type Service struct {
	products   repository.ProductRepositoryInterface
	thresholds ThresholdProvider
	analyzer   vision.Analyzer
	embedder   vision.EmbeddingGenerator
	logger     *slog.Logger
}

func NewService(
	products repository.ProductRepositoryInterface,
	thresholds ThresholdProvider,
	analyzer vision.Analyzer,
	embedder vision.EmbeddingGenerator,
	logger *slog.Logger,
) *Service {
	return &Service{
		products:   products,
		thresholds: thresholds,
		analyzer:   analyzer,
		embedder:   embedder,
		logger:     logger,
	}
}

// Identify runs the single-object flow. Policy refusals (selling an
// unregistered product) are returned as an IdentificationError outcome, not
// as a Go error; errors are reserved for infrastructure failures.
func (s *Service) Identify(ctx context.Context, image []byte, source domain.IdentificationSource) (domain.Outcome, error) {
	cfg, err := s.thresholds.ActiveOrDefault(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		return nil, domain.ErrVisionAnalysisFailed.WithError(err)
	}

	match, err := s.matchExact(ctx, result)
	if err != nil {
		return nil, err
	}

	// Any path that reaches the create-new step below went through the
	// fallback, so the embedding is computed at most once
	var embedding []float64
	if match == nil {
		embedding, err = s.embedder.Embed(ctx, image)
		if err != nil {
			return nil, domain.ErrEmbeddingFailed.WithError(err)
		}

		match, err = s.matchEmbedding(ctx, embedding, cfg)
		if err != nil {
			return nil, err
		}
	}

	if match != nil {
		s.logger.Info("product identified",
			slog.String("product_id", match.Product.ID.String()),
			slog.String("match_type", string(match.MatchType)),
			slog.Float64("confidence", match.Confidence))

		if match.Confidence < cfg.AutoApproveThreshold {
			return domain.PartialMatch{Match: *match, ConfigVersion: cfg.Version}, nil
		}
		return domain.Identified{Match: *match, ConfigVersion: cfg.Version}, nil
	}

	if source == domain.SourceSale {
		// Creating inventory as a side effect of a sale would corrupt
		// stock accounting
		s.logger.Warn("refusing to register product during sale")
		return domain.IdentificationError{
			Code:    domain.ErrUnregisteredProductSale.Code,
			Message: domain.ErrUnregisteredProductSale.Message,
		}, nil
	}

	product := newProductFromVision(result, embedding)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("new product registered",
		slog.String("product_id", product.ID.String()),
		slog.String("category", product.Category))

	return domain.NewProductCreated{Product: *product}, nil
}

// newProductFromVision builds a catalog entry from the attributes the vision
// analysis extracted
func newProductFromVision(result *domain.VisionResult, embedding []float64) *domain.Product {
	category := result.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	product := &domain.Product{
		Name:             suggestProductName(result, category),
		Description:      result.SuggestedDescription,
		Category:         category,
		Colors:           result.Colors,
		LogoDetections:   domain.NewDetections(result.Logos),
		ObjectDetections: domain.NewDetections(result.Objects),
		UsageTags:        result.UsageTags,
		ImageTags:        result.ImageTags,
		Embedding:        embedding,
	}

	if result.HasBrand() {
		brand := result.Brand
		product.Brand = &brand
	}
	if result.HasModelNumber() {
		model := result.ModelNumber
		product.ModelNumber = &model
	}

	return product
}

func suggestProductName(result *domain.VisionResult, category string) string {
	if result.SuggestedName != "" {
		return result.SuggestedName
	}

	switch {
	case result.HasBrand() && len(result.Objects) > 0:
		return result.Brand + " " + result.Objects[0]
	case len(result.Objects) > 0:
		return result.Objects[0]
	case result.HasBrand():
		return result.Brand
	default:
		return category
	}
}
