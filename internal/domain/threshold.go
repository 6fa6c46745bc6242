package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Threshold bounds. Adjusted thresholds are always clamped into this range.
const (
	ThresholdFloor   = 0.50
	ThresholdCeiling = 0.99
)

// ThresholdConfig is a versioned bundle of confidence floors controlling
// auto-approval vs. manual-review routing. Configurations are append-only:
// retraining produces a new version, it never mutates an existing one.
// Exactly one configuration is active at a time.
type ThresholdConfig struct {
	ID uuid.UUID `json:"id"`
	// Version is "major.minor", monotonically increasing
	Version string `json:"version"`

	BrandModelMinConfidence       float64 `json:"brand_model_min_confidence"`
	LogoDetectionMinConfidence    float64 `json:"logo_detection_min_confidence"`
	ObjectDetectionMinConfidence  float64 `json:"object_detection_min_confidence"`
	VisionMatchMinConfidence      float64 `json:"vision_match_min_confidence"`
	VectorSimilarityMinConfidence float64 `json:"vector_similarity_min_confidence"`

	AutoApproveThreshold      float64 `json:"auto_approve_threshold"`
	ManualValidationThreshold float64 `json:"manual_validation_threshold"`

	TotalIdentifications   int64   `json:"total_identifications"`
	CorrectIdentifications int64   `json:"correct_identifications"`
	FalsePositives         int64   `json:"false_positives"`
	FalseNegatives         int64   `json:"false_negatives"`
	Accuracy               float64 `json:"accuracy"`

	LastTrainingAt time.Time `json:"last_training_at"`
	SampleCount    int       `json:"sample_count"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultThresholdConfig returns the v1.0 configuration the engine self-heals
// with when no active configuration exists yet.
func DefaultThresholdConfig() *ThresholdConfig {
	return &ThresholdConfig{
		Version:                       "1.0",
		BrandModelMinConfidence:       0.90,
		LogoDetectionMinConfidence:    0.75,
		ObjectDetectionMinConfidence:  0.70,
		VisionMatchMinConfidence:      0.80,
		VectorSimilarityMinConfidence: 0.75,
		AutoApproveThreshold:          0.85,
		ManualValidationThreshold:     0.60,
		LastTrainingAt:                time.Now().UTC(),
		IsActive:                      true,
	}
}

// ClampThreshold bounds a threshold value to the allowed range
func ClampThreshold(v float64) float64 {
	if v < ThresholdFloor {
		return ThresholdFloor
	}
	if v > ThresholdCeiling {
		return ThresholdCeiling
	}
	return v
}

// NextVersion increments a "major.minor" version string: the minor component
// advances by one, rolling over into the major component at 10.
func NextVersion(version string) (string, error) {
	parts := strings.SplitN(version, ".", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid version %q", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid major version %q: %w", parts[0], err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid minor version %q: %w", parts[1], err)
	}

	minor++
	if minor >= 10 {
		major++
		minor = 0
	}

	return fmt.Sprintf("%d.%d", major, minor), nil
}
