package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Vision analysis
	VisionProvider string `envconfig:"VISION_PROVIDER" default:"mock"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Embedding sidecar
	EmbedderURL string `envconfig:"EMBEDDER_URL" default:"http://localhost:5005"`

	// Threshold retraining
	RetrainInterval time.Duration `envconfig:"RETRAIN_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
