package domain

import (
	"time"

	"github.com/google/uuid"
)

// CorrectionType classifies a human judgment of a past identification
type CorrectionType string

const (
	CorrectionCorrect       CorrectionType = "correct"
	CorrectionFalsePositive CorrectionType = "false_positive"
	CorrectionFalseNegative CorrectionType = "false_negative"
	CorrectionImproved      CorrectionType = "improved"
)

// ValidationRecord is one human judgment of a past identification.
// Records are append-only; the threshold controller consumes them in batches.
type ValidationRecord struct {
	ID                 uuid.UUID            `json:"id"`
	ImageHash          string               `json:"image_hash"`
	SuggestedProductID *uuid.UUID           `json:"suggested_product_id,omitempty"`
	ActualProductID    *uuid.UUID           `json:"actual_product_id,omitempty"`
	Confidence         float64              `json:"confidence"`
	MatchType          MatchType            `json:"match_type"`
	Similarity         float64              `json:"similarity"`
	WasCorrect         bool                 `json:"was_correct"`
	CorrectionType     CorrectionType       `json:"correction_type"`
	ValidatedBy        string               `json:"validated_by"`
	Source             IdentificationSource `json:"source"`
	SaleID             *uuid.UUID           `json:"sale_id,omitempty"`
	StockEntryID       *uuid.UUID           `json:"stock_entry_id,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}
