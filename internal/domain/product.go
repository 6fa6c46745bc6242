package domain

import (
	"time"

	"github.com/google/uuid"
)

// Detection is a single logo or object detected in a product image,
// stored with the product as a structured blob.
type Detection struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Product represents a catalog entry that identifications are matched against
type Product struct {
	ID                  uuid.UUID   `json:"id"`
	Name                string      `json:"name"`
	Description         string      `json:"description,omitempty"`
	Category            string      `json:"category"`
	Brand               *string     `json:"brand,omitempty"`
	ModelNumber         *string     `json:"model_number,omitempty"`
	Colors              []string    `json:"colors,omitempty"`
	LogoDetections      []Detection `json:"logo_detections,omitempty"`
	ObjectDetections    []Detection `json:"object_detections,omitempty"`
	UsageTags           []string    `json:"usage_tags,omitempty"`
	ImageTags           []string    `json:"image_tags,omitempty"`
	Embedding           []float64   `json:"-"`
	RecognitionAccuracy float64     `json:"recognition_accuracy"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// LogoNames returns the names of all stored logo detections
func (p *Product) LogoNames() []string {
	return detectionNames(p.LogoDetections)
}

// ObjectNames returns the names of all stored object detections
func (p *Product) ObjectNames() []string {
	return detectionNames(p.ObjectDetections)
}

func detectionNames(detections []Detection) []string {
	if len(detections) == 0 {
		return nil
	}
	names := make([]string, len(detections))
	for i, d := range detections {
		names[i] = d.Name
	}
	return names
}

// NewDetections builds structured detections from plain names.
// Confidence is unknown at this point, so it is recorded as 1.0.
func NewDetections(names []string) []Detection {
	if len(names) == 0 {
		return nil
	}
	detections := make([]Detection, len(names))
	for i, name := range names {
		detections[i] = Detection{Name: name, Confidence: 1.0}
	}
	return detections
}
