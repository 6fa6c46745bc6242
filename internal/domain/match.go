package domain

import (
	"github.com/google/uuid"
)

// MatchType tags how an identification match was produced
type MatchType string

const (
	// MatchTypeVision is an exact-field match on brand/model/category
	MatchTypeVision MatchType = "VISION_MATCH"
	// MatchTypeVectorSimilarity is an embedding nearest-neighbor match
	MatchTypeVectorSimilarity MatchType = "VECTOR_SIMILARITY"
	// MatchTypeTemporary marks a detected-but-unknown placeholder in multi-object results
	MatchTypeTemporary MatchType = "TEMPORARY"
)

// ScoredCandidate is one catalog candidate scored against a vision result.
// It lives only for the duration of a single matching pass.
type ScoredCandidate struct {
	Product        Product
	BaseSimilarity float64
	LogoBonus      float64
	ObjectBonus    float64
	Total          float64
	MatchedLogos   []string
	MatchedObjects []string
}

// IdentificationMatch is the winning candidate of a matching pass
type IdentificationMatch struct {
	Product    Product                `json:"product"`
	Confidence float64                `json:"confidence"`
	MatchType  MatchType              `json:"match_type"`
	Details    string                 `json:"details"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// OutcomeStatus is the terminal state of a single-object identification
type OutcomeStatus string

const (
	StatusIdentified        OutcomeStatus = "IDENTIFIED"
	StatusPartialMatch      OutcomeStatus = "PARTIAL_MATCH"
	StatusNewProductCreated OutcomeStatus = "NEW_PRODUCT_CREATED"
	StatusError             OutcomeStatus = "ERROR"
)

// Outcome is the result of a single-object identification. It is a closed
// set: Identified, PartialMatch, NewProductCreated or IdentificationError.
// Each variant carries only the fields relevant to it.
type Outcome interface {
	Status() OutcomeStatus
}

// Identified means a match was found at or above the auto-approve threshold
type Identified struct {
	Match         IdentificationMatch `json:"match"`
	ConfigVersion string              `json:"config_version"`
}

func (Identified) Status() OutcomeStatus { return StatusIdentified }

// PartialMatch means a match was found but its confidence requires manual review
type PartialMatch struct {
	Match         IdentificationMatch `json:"match"`
	ConfigVersion string              `json:"config_version"`
}

func (PartialMatch) Status() OutcomeStatus { return StatusPartialMatch }

// NewProductCreated means no match was found and a new catalog entry was persisted
type NewProductCreated struct {
	Product Product `json:"product"`
}

func (NewProductCreated) Status() OutcomeStatus { return StatusNewProductCreated }

// IdentificationError is a terminal policy refusal, not a transport failure.
// Selling an unregistered product is the canonical case.
type IdentificationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (IdentificationError) Status() OutcomeStatus { return StatusError }

// ConfirmedGroupThreshold is the mean confidence at which a detected
// product group is considered confirmed without review.
const ConfirmedGroupThreshold = 0.60

// DetectedProduct is the per-object result of a multi-object identification.
// Temporary detections keep a nil product ID and are keyed by their detection
// index instead, so they can never collapse with a real catalog entry.
type DetectedProduct struct {
	Index     int                 `json:"index"`
	Match     IdentificationMatch `json:"match"`
	Temporary bool                `json:"temporary"`
}

// GroupKey identifies a product group. Either ProductID is set (real catalog
// entry) or the key is a placeholder carrying the detection index.
type GroupKey struct {
	ProductID   uuid.UUID
	Placeholder bool
	Index       int
}

// Key returns the grouping key for a detection
func (d DetectedProduct) Key() GroupKey {
	if d.Temporary {
		return GroupKey{Placeholder: true, Index: d.Index}
	}
	return GroupKey{ProductID: d.Match.Product.ID}
}

// ProductGroup aggregates identical detections in one multi-object pass
type ProductGroup struct {
	Product     Product   `json:"product"`
	Temporary   bool      `json:"temporary"`
	Quantity    int       `json:"quantity"`
	Confidence  float64   `json:"confidence"`
	IsConfirmed bool      `json:"is_confirmed"`
	MatchType   MatchType `json:"match_type"`
	Indexes     []int     `json:"indexes"`
}

// MultiDetectionResult is the aggregate outcome of a multi-object identification
type MultiDetectionResult struct {
	Groups          []ProductGroup `json:"groups"`
	TotalDetected   int            `json:"total_detected"`
	TotalIdentified int            `json:"total_identified"`
	TotalUnknown    int            `json:"total_unknown"`
	ConfigVersion   string         `json:"config_version"`
}
