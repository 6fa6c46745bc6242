package identify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

func TestService_IdentifyMultiple_Grouping(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	known := *stanleyResult()
	unknown := domain.VisionResult{Category: "Herramientas", Objects: []string{"caja"}}

	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).
		Return([]domain.VisionResult{known, known, unknown}, nil)

	// Both Stanley detections resolve to the same catalog entry
	catalog := stanleyProduct()
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{catalog}, nil)

	// The unknown detection short-circuits the exact matcher (no brand/model)
	// and misses on the embedding fallback
	embedder.On("Embed", mock.Anything, mock.Anything).Return(make([]float64, 512), nil)
	products.On("FindMostSimilar", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	result, err := svc.IdentifyMultiple(context.Background(), []byte("image"), 0)

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalDetected)
	assert.Equal(t, 2, result.TotalIdentified)
	assert.Equal(t, 1, result.TotalUnknown)
	assert.Equal(t, "1.0", result.ConfigVersion)

	require.Len(t, result.Groups, 2)

	// Sorted by descending mean confidence: the identified group first
	identified := result.Groups[0]
	assert.Equal(t, catalog.ID, identified.Product.ID)
	assert.Equal(t, 2, identified.Quantity)
	assert.InDelta(t, 0.90, identified.Confidence, 1e-9)
	assert.True(t, identified.IsConfirmed)
	assert.ElementsMatch(t, []int{0, 1}, identified.Indexes)

	temporary := result.Groups[1]
	assert.True(t, temporary.Temporary)
	assert.Equal(t, 1, temporary.Quantity)
	assert.InDelta(t, 0.50, temporary.Confidence, 1e-9)
	assert.False(t, temporary.IsConfirmed)
	assert.Equal(t, domain.MatchTypeTemporary, temporary.MatchType)
}

func TestService_IdentifyMultiple_PlaceholdersNeverCollapse(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	unknown := domain.VisionResult{Category: "Herramientas"}
	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).
		Return([]domain.VisionResult{unknown, unknown}, nil)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(make([]float64, 512), nil)
	products.On("FindMostSimilar", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	result, err := svc.IdentifyMultiple(context.Background(), []byte("image"), 0)

	require.NoError(t, err)
	require.Len(t, result.Groups, 2, "unknown detections must form one group each")
	for _, group := range result.Groups {
		assert.True(t, group.Temporary)
		assert.Equal(t, 1, group.Quantity)
	}
}

func TestService_IdentifyMultiple_BoundsConcurrency(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	unknown := domain.VisionResult{Category: "Herramientas"}
	results := make([]domain.VisionResult, 3*maxConcurrentObjects)
	for i := range results {
		results[i] = unknown
	}
	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).Return(results, nil)

	var active, peak int32
	embedder.On("Embed", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			cur := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&peak)
				if cur <= prev || atomic.CompareAndSwapInt32(&peak, prev, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		}).
		Return(make([]float64, 512), nil)
	products.On("FindMostSimilar", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	result, err := svc.IdentifyMultiple(context.Background(), []byte("image"), 0)

	require.NoError(t, err)
	assert.Equal(t, len(results), result.TotalDetected)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(maxConcurrentObjects))
}

func TestService_IdentifyMultiple_MinConfidenceFilter(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	known := *stanleyResult()
	unknown := domain.VisionResult{Category: "Herramientas"}

	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).
		Return([]domain.VisionResult{known, unknown}, nil)
	products.On("FindByExactFields", mock.Anything, mock.Anything, mock.Anything, "Herramientas").
		Return([]domain.Product{stanleyProduct()}, nil)
	embedder.On("Embed", mock.Anything, mock.Anything).Return(make([]float64, 512), nil)
	products.On("FindMostSimilar", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, 0.0, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())
	result, err := svc.IdentifyMultiple(context.Background(), []byte("image"), 0.60)

	require.NoError(t, err)
	require.Len(t, result.Groups, 1, "temporary group at 0.50 must be filtered out")
	assert.False(t, result.Groups[0].Temporary)

	// Counters describe the detections, not the filtered view
	assert.Equal(t, 2, result.TotalDetected)
	assert.Equal(t, 1, result.TotalUnknown)
}

func TestService_IdentifyMultiple_CropFailureDegrades(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	boxed := *stanleyResult()
	boxed.BoundingBox = &domain.BoundingBox{X: 0.1, Y: 0.1, Width: 0.5, Height: 0.5}

	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).
		Return([]domain.VisionResult{boxed}, nil)

	svc := newTestService(products, analyzer, embedder, testConfig())

	// Not a decodable image: the crop fails, the detection degrades
	result, err := svc.IdentifyMultiple(context.Background(), []byte("not-an-image"), 0)

	require.NoError(t, err)
	require.Len(t, result.Groups, 1)
	assert.True(t, result.Groups[0].Temporary)
	assert.Equal(t, 1, result.TotalUnknown)

	products.AssertNotCalled(t, "FindByExactFields",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_IdentifyMultiple_VisionFailure(t *testing.T) {
	products := new(MockProductRepository)
	analyzer := new(MockAnalyzer)
	embedder := new(MockEmbedder)

	analyzer.On("AnalyzeMultiple", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	svc := newTestService(products, analyzer, embedder, testConfig())
	_, err := svc.IdentifyMultiple(context.Background(), []byte("image"), 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVisionAnalysisFailed)
}

func TestGroupDetections_MeanRounding(t *testing.T) {
	product := stanleyProduct()
	detections := []domain.DetectedProduct{
		{Index: 0, Match: domain.IdentificationMatch{Product: product, Confidence: 0.80, MatchType: domain.MatchTypeVision}},
		{Index: 1, Match: domain.IdentificationMatch{Product: product, Confidence: 0.85, MatchType: domain.MatchTypeVision}},
		{Index: 2, Match: domain.IdentificationMatch{Product: product, Confidence: 0.92, MatchType: domain.MatchTypeVision}},
	}

	groups := groupDetections(detections)

	require.Len(t, groups, 1)
	// (0.80 + 0.85 + 0.92) / 3 = 0.856666... -> 0.8567 half-up
	assert.InDelta(t, 0.8567, groups[0].Confidence, 1e-9)
	assert.Equal(t, 3, groups[0].Quantity)
	assert.True(t, groups[0].IsConfirmed)
}
