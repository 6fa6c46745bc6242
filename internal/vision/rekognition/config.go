package rekognition

// Config holds configuration for the AWS Rekognition vision analyzer
type Config struct {
	// Region is the AWS region where Rekognition will be called (e.g., "us-east-1")
	Region string

	// MaxLabels caps how many labels DetectLabels may return per image
	MaxLabels int32

	// MinLabelConfidence filters out low-confidence labels (0-100, AWS scale)
	MinLabelConfidence float32

	// MinTextConfidence filters out low-confidence text detections (0-100)
	MinTextConfidence float32
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:             "us-east-1",
		MaxLabels:          30,
		MinLabelConfidence: 55,
		MinTextConfidence:  80,
	}
}
