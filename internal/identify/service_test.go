package identify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExactFields(ctx context.Context, brand, modelNumber *string, category string) ([]domain.Product, error) {
	args := m.Called(ctx, brand, modelNumber, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindMostSimilar(ctx context.Context, embedding []float64, minSimilarity float64) (*domain.Product, float64, error) {
	args := m.Called(ctx, embedding, minSimilarity)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Get(1).(float64), args.Error(2)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, image []byte) (*domain.VisionResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VisionResult), args.Error(1)
}

func (m *MockAnalyzer) AnalyzeMultiple(ctx context.Context, image []byte) ([]domain.VisionResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VisionResult), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, image []byte) ([]float64, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

type stubThresholds struct {
	cfg *domain.ThresholdConfig
	err error
}

func (s *stubThresholds) ActiveOrDefault(ctx context.Context) (*domain.ThresholdConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func testConfig() *domain.ThresholdConfig {
	cfg := domain.DefaultThresholdConfig()
	cfg.LastTrainingAt = time.Now().UTC()
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(products *MockProductRepository, analyzer *MockAnalyzer, embedder *MockEmbedder, cfg *domain.ThresholdConfig) *Service {
	return NewService(products, &stubThresholds{cfg: cfg}, analyzer, embedder, testLogger())
}

func stanleyResult() *domain.VisionResult {
	return &domain.VisionResult{
		Brand:       "Stanley",
		ModelNumber: "STMT74101",
		Category:    "Herramientas",
		Logos:       []string{"Stanley"},
		Objects:     []string{"maletín"},
	}
}

func stanleyProduct() domain.Product {
	return domain.Product{
		ID:               uuid.New(),
		Name:             "Stanley STMT74101",
		Brand:            strPtr("Stanley"),
		ModelNumber:      strPtr("STMT74101"),
		Category:         "Herramientas",
		LogoDetections:   domain.NewDetections([]string{"stanley"}),
		ObjectDetections: domain.NewDetections([]string{"maletín", "llaves"}),
	}
}

func TestService_Identify_ExactMatch(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	image := []byte("image-bytes")
	analyzer.On("Analyze", mock.Anything, image).Return(stanleyResult(), nil)
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{stanleyProduct()}, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), image, domain.SourceStockEntry)

	require.NoError(t, err)
	require.Equal(t, domain.StatusIdentified, outcome.Status())

	identified := outcome.(domain.Identified)
	assert.InDelta(t, 0.90, identified.Match.Confidence, 1e-9)
	assert.Equal(t, domain.MatchTypeVision, identified.Match.MatchType)
	assert.Equal(t, "1.0", identified.ConfigVersion)

	embedder.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestService_Identify_PartialMatch(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	// Candidate with no stored logos/objects scores 0.60 base only
	candidate := stanleyProduct()
	candidate.LogoDetections = nil
	candidate.ObjectDetections = nil

	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(stanleyResult(), nil)
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{candidate}, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceStockEntry)

	require.NoError(t, err)
	require.Equal(t, domain.StatusPartialMatch, outcome.Status())

	partial := outcome.(domain.PartialMatch)
	assert.InDelta(t, 0.60, partial.Match.Confidence, 1e-9)
}

func TestService_Identify_EmbeddingFallback(t *testing.T) {
	tests := []struct {
		name       string
		floor      float64
		similarity float64
		found      bool
	}{
		{name: "above floor", floor: 0.75, similarity: 0.81, found: true},
		{name: "below floor falls through", floor: 0.85, similarity: 0, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductRepository)
			analyzer := new(MockAnalyzer)
			embedder := new(MockEmbedder)

			// No brand/model: exact matcher short-circuits without querying
			result := &domain.VisionResult{Category: "Herramientas"}
			analyzer.On("Analyze", mock.Anything, mock.Anything).Return(result, nil)

			embedding := make([]float64, 512)
			embedder.On("Embed", mock.Anything, mock.Anything).Return(embedding, nil)

			if tt.found {
				match := stanleyProduct()
				products.On("FindMostSimilar", mock.Anything, embedding, tt.floor).
					Return(&match, tt.similarity, nil)
			} else {
				products.On("FindMostSimilar", mock.Anything, embedding, tt.floor).
					Return(nil, 0.0, nil)
				products.On("Create", mock.Anything, mock.Anything).Return(nil)
			}

			cfg := testConfig()
			cfg.VectorSimilarityMinConfidence = tt.floor

			svc := newTestService(products, analyzer, embedder, cfg)
			outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceStockEntry)

			require.NoError(t, err)
			if tt.found {
				require.Equal(t, domain.StatusPartialMatch, outcome.Status())
				partial := outcome.(domain.PartialMatch)
				assert.InDelta(t, tt.similarity, partial.Match.Confidence, 1e-9)
				assert.Equal(t, domain.MatchTypeVectorSimilarity, partial.Match.MatchType)
				products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.Equal(t, domain.StatusNewProductCreated, outcome.Status())
			}

			products.AssertNotCalled(t, "FindByExactFields",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Identify_SaleRefusal(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	result := &domain.VisionResult{Category: "Herramientas"}
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(result, nil)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(make([]float64, 512), nil)
	products.On("FindMostSimilar", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceSale)

	require.NoError(t, err, "policy refusal is an outcome, not an error")
	require.Equal(t, domain.StatusError, outcome.Status())

	refusal := outcome.(domain.IdentificationError)
	assert.Equal(t, domain.ErrUnregisteredProductSale.Code, refusal.Code)

	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Identify_NewProductCreated(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	result := &domain.VisionResult{
		Brand:         "Stanley",
		Category:      "Herramientas",
		Colors:        []string{"Yellow"},
		Logos:         []string{"Stanley"},
		Objects:       []string{"maletín"},
		UsageTags:     []string{"taller"},
		SuggestedName: "Stanley maletín",
	}
	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(result, nil)

	// The fallback embedding is reused when registering the new product
	embedding := make([]float64, 512)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(embedding, nil).Once()
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{}, nil)
	products.On("FindMostSimilar", mock.Anything, embedding, mock.Anything).
		Return(nil, 0.0, nil)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Stanley maletín" &&
			p.Brand != nil && *p.Brand == "Stanley" &&
			len(p.LogoDetections) == 1 &&
			len(p.Embedding) == 512
	})).Return(nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceStockEntry)

	require.NoError(t, err)
	require.Equal(t, domain.StatusNewProductCreated, outcome.Status())

	created := outcome.(domain.NewProductCreated)
	assert.Equal(t, "Stanley maletín", created.Product.Name)
	products.AssertExpectations(t)
	embedder.AssertExpectations(t)
}

func TestService_Identify_VisionFailure(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	analyzer.On("Analyze", mock.Anything, mock.Anything).
		Return(nil, errors.New("rekognition down"))

	svc := newTestService(products, analyzer, embedder, testConfig())
	_, err := svc.Identify(context.Background(), []byte("image"), domain.SourceManual)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVisionAnalysisFailed)
}

func TestService_Identify_TieBreakByTagOverlap(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	// Higher-similarity candidate with no matching tags
	shiny := stanleyProduct()
	shiny.UsageTags = []string{"jardín"}

	// Lower-similarity candidate whose tags overlap the image's
	tagged := stanleyProduct()
	tagged.LogoDetections = nil
	tagged.ObjectDetections = nil
	tagged.UsageTags = []string{"taller", "construcción"}

	result := stanleyResult()
	result.UsageTags = []string{"taller"}

	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(result, nil)
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{shiny, tagged}, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceStockEntry)

	require.NoError(t, err)
	require.Equal(t, domain.StatusPartialMatch, outcome.Status())

	partial := outcome.(domain.PartialMatch)
	assert.Equal(t, tagged.ID, partial.Match.Product.ID,
		"greater tag overlap must win irrespective of similarity")
}

func TestService_Identify_TieBreakBySimilarityWhenNoTags(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	weak := stanleyProduct()
	weak.LogoDetections = nil
	weak.ObjectDetections = nil

	strong := stanleyProduct()

	analyzer.On("Analyze", mock.Anything, mock.Anything).Return(stanleyResult(), nil)
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{weak, strong}, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	outcome, err := svc.Identify(context.Background(), []byte("image"), domain.SourceStockEntry)

	require.NoError(t, err)

	identified := outcome.(domain.Identified)
	assert.Equal(t, strong.ID, identified.Match.Product.ID)
}
