// Package factory selects the vision analyzer and embedding generator
// implementations based on runtime configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/identika/internal/config"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision/embedder"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision/mock"
	"github.com/saturnino-fabrica-de-software/identika/internal/vision/rekognition"
)

// ProviderType defines supported vision analyzer types
type ProviderType string

const (
	// ProviderTypeMock is the deterministic provider (local, for dev/test)
	ProviderTypeMock ProviderType = "mock"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
)

// NewAnalyzer creates a vision.Analyzer based on configuration.
//
// Environment variables:
//   - VISION_PROVIDER: "mock" or "rekognition" (default: "mock")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewAnalyzer(ctx context.Context, cfg *config.Config) (vision.Analyzer, error) {
	providerType := ProviderType(cfg.VisionProvider)

	switch providerType {
	case ProviderTypeRekognition:
		rekogConfig := rekognition.DefaultConfig()
		if cfg.AWSRegion != "" {
			rekogConfig.Region = cfg.AWSRegion
		}

		prov, err := rekognition.NewProvider(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return prov, nil

	case ProviderTypeMock, "":
		// Default to the mock analyzer for dev/test environments
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.VisionProvider, ProviderTypeMock, ProviderTypeRekognition)
	}
}

// NewEmbeddingGenerator creates the embedding generator. The mock analyzer
// doubles as the generator so local runs need no sidecar.
func NewEmbeddingGenerator(cfg *config.Config) vision.EmbeddingGenerator {
	if ProviderType(cfg.VisionProvider) == ProviderTypeMock || cfg.VisionProvider == "" {
		return mock.New()
	}

	embedderConfig := embedder.DefaultConfig()
	if cfg.EmbedderURL != "" {
		embedderConfig.BaseURL = cfg.EmbedderURL
	}

	return embedder.NewClient(embedderConfig)
}
