package training

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/saturnino-fabrica-de-software/identika/internal/domain"
	"github.com/saturnino-fabrica-de-software/identika/internal/repository"
)

const (
	activeConfigKey = "threshold_config:active"
	activeConfigTTL = 30 * time.Second
)

// ConfigStore is a read-through cache over the threshold configuration
// repository. The active configuration is read on every identification, so
// it is cached with a short TTL; writes invalidate the cache. When the store
// holds no active configuration at all, it self-heals by persisting the
// default v1.0 one.
type ConfigStore struct {
	repo   repository.ThresholdConfigRepositoryInterface
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewConfigStore(repo repository.ThresholdConfigRepositoryInterface, logger *slog.Logger) *ConfigStore {
	return &ConfigStore{
		repo:   repo,
		cache:  gocache.New(activeConfigTTL, 2*activeConfigTTL),
		logger: logger,
	}
}

// ActiveOrDefault returns the active threshold configuration, creating and
// activating the default v1.0 configuration when none exists.
func (s *ConfigStore) ActiveOrDefault(ctx context.Context) (*domain.ThresholdConfig, error) {
	if cached, ok := s.cache.Get(activeConfigKey); ok {
		return cached.(*domain.ThresholdConfig), nil
	}

	cfg, err := s.repo.GetActive(ctx)
	if errors.Is(err, domain.ErrNoActiveThresholdConfig) {
		cfg = domain.DefaultThresholdConfig()
		if createErr := s.repo.Create(ctx, cfg); createErr != nil {
			return nil, createErr
		}
		s.logger.Info("no active threshold configuration, created default",
			slog.String("version", cfg.Version))
	} else if err != nil {
		return nil, err
	}

	s.cache.SetDefault(activeConfigKey, cfg)
	return cfg, nil
}

// Activate flips the active flag to the given configuration and invalidates
// the cached value
func (s *ConfigStore) Activate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Activate(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(activeConfigKey)
	return nil
}

// Invalidate drops the cached active configuration
func (s *ConfigStore) Invalidate() {
	s.cache.Delete(activeConfigKey)
}
