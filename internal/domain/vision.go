package domain

// DefaultCategory is assigned when the vision analysis cannot infer a category
const DefaultCategory = "Other"

// BoundingBox is a normalized (0-1) rectangle locating an object in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// VisionResult holds the structured attributes extracted from a photograph
// by the vision analyzer. One result is produced per detected object.
type VisionResult struct {
	Brand                string       `json:"brand,omitempty"`
	ModelNumber          string       `json:"model_number,omitempty"`
	Category             string       `json:"category"`
	Colors               []string     `json:"colors,omitempty"`
	Logos                []string     `json:"logos,omitempty"`
	Objects              []string     `json:"objects,omitempty"`
	UsageTags            []string     `json:"usage_tags,omitempty"`
	ImageTags            []string     `json:"image_tags,omitempty"`
	BoundingBox          *BoundingBox `json:"bounding_box,omitempty"`
	SuggestedName        string       `json:"suggested_name,omitempty"`
	SuggestedDescription string       `json:"suggested_description,omitempty"`
}

// HasBrand reports whether the analysis extracted a brand name
func (v *VisionResult) HasBrand() bool {
	return v.Brand != ""
}

// HasModelNumber reports whether the analysis extracted a model number
func (v *VisionResult) HasModelNumber() bool {
	return v.ModelNumber != ""
}

// IdentificationSource declares what business operation triggered an identification
type IdentificationSource string

const (
	SourceStockEntry IdentificationSource = "stock_entry"
	SourceSale       IdentificationSource = "sale"
	SourceManual     IdentificationSource = "manual"
)
