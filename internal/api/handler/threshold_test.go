package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/identika/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
)

type MockThresholdStore struct {
	mock.Mock
}

func (m *MockThresholdStore) ActiveOrDefault(ctx context.Context) (*domain.ThresholdConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThresholdConfig), args.Error(1)
}

func (m *MockThresholdStore) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRetrainer struct {
	mock.Mock
}

func (m *MockRetrainer) Retrain(ctx context.Context) (*domain.ThresholdConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThresholdConfig), args.Error(1)
}

func newThresholdApp(store *MockThresholdStore, retrainer *MockRetrainer) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
	h := NewThresholdHandler(store, retrainer, testLogger())
	app.Get("/v1/thresholds/active", h.GetActive)
	app.Post("/v1/thresholds/retrain", h.Retrain)
	app.Post("/v1/thresholds/:id/activate", h.Activate)
	return app
}

func TestThresholdHandler_GetActive(t *testing.T) {
	store := new(MockThresholdStore)
	cfg := domain.DefaultThresholdConfig()
	cfg.ID = uuid.New()
	store.On("ActiveOrDefault", mock.Anything).Return(cfg, nil)

	app := newThresholdApp(store, new(MockRetrainer))

	req, _ := http.NewRequest(http.MethodGet, "/v1/thresholds/active", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got domain.ThresholdConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "1.0", got.Version)
	assert.InDelta(t, 0.85, got.AutoApproveThreshold, 1e-9)
}

func TestThresholdHandler_Retrain_ProposesConfig(t *testing.T) {
	retrainer := new(MockRetrainer)
	next := domain.DefaultThresholdConfig()
	next.ID = uuid.New()
	next.Version = "1.1"
	next.IsActive = false
	next.LastTrainingAt = time.Now().UTC()
	retrainer.On("Retrain", mock.Anything).Return(next, nil)

	app := newThresholdApp(new(MockThresholdStore), retrainer)

	req, _ := http.NewRequest(http.MethodPost, "/v1/thresholds/retrain", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var got RetrainResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Retrained)
	require.NotNil(t, got.Config)
	assert.Equal(t, "1.1", got.Config.Version)
	assert.False(t, got.Config.IsActive)
}

func TestThresholdHandler_Retrain_Skipped(t *testing.T) {
	retrainer := new(MockRetrainer)
	retrainer.On("Retrain", mock.Anything).Return(nil, nil)

	app := newThresholdApp(new(MockThresholdStore), retrainer)

	req, _ := http.NewRequest(http.MethodPost, "/v1/thresholds/retrain", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got RetrainResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.False(t, got.Retrained)
	assert.Nil(t, got.Config)
	assert.NotEmpty(t, got.Message)
}

func TestThresholdHandler_Activate(t *testing.T) {
	store := new(MockThresholdStore)
	id := uuid.New()
	store.On("Activate", mock.Anything, id).Return(nil)

	app := newThresholdApp(store, new(MockRetrainer))

	req, _ := http.NewRequest(http.MethodPost, "/v1/thresholds/"+id.String()+"/activate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	store.AssertExpectations(t)
}

func TestThresholdHandler_Activate_BadID(t *testing.T) {
	store := new(MockThresholdStore)
	app := newThresholdApp(store, new(MockRetrainer))

	req, _ := http.NewRequest(http.MethodPost, "/v1/thresholds/not-a-uuid/activate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	store.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

func TestThresholdHandler_Activate_NotFound(t *testing.T) {
	store := new(MockThresholdStore)
	id := uuid.New()
	store.On("Activate", mock.Anything, id).Return(domain.ErrThresholdConfigNotFound)

	app := newThresholdApp(store, new(MockRetrainer))

	req, _ := http.NewRequest(http.MethodPost, "/v1/thresholds/"+id.String()+"/activate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
