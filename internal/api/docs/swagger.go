package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// MatchData represents a winning match in an identification response
type MatchData struct {
	Confidence float64 `json:"confidence" example:"0.9"`
	MatchType  string  `json:"match_type" example:"VISION_MATCH"`
	Details    string  `json:"details" example:"matched catalog fields with similarity 0.9000"`
	Similarity float64 `json:"similarity" example:"0.9"`
}

// IdentifyResponseData represents the response for a single-object identification
type IdentifyResponseData struct {
	Status        string     `json:"status" example:"IDENTIFIED"`
	Match         *MatchData `json:"match,omitempty"`
	ConfigVersion string     `json:"config_version,omitempty" example:"1.0"`
}

// ProductGroupData represents one grouped detection in a batch response
type ProductGroupData struct {
	Quantity    int     `json:"quantity" example:"2"`
	Confidence  float64 `json:"confidence" example:"0.9"`
	IsConfirmed bool    `json:"is_confirmed" example:"true"`
	MatchType   string  `json:"match_type" example:"VISION_MATCH"`
}

// BatchResponseData represents the response for a multi-object identification
type BatchResponseData struct {
	Groups          []ProductGroupData `json:"groups"`
	TotalDetected   int                `json:"total_detected" example:"3"`
	TotalIdentified int                `json:"total_identified" example:"2"`
	TotalUnknown    int                `json:"total_unknown" example:"1"`
	ConfigVersion   string             `json:"config_version" example:"1.0"`
}

// ValidationResponseData represents a recorded validation judgment
type ValidationResponseData struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ImageHash  string  `json:"image_hash" example:"a3f5..."`
	MatchType  string  `json:"match_type" example:"VISION_MATCH"`
	Confidence float64 `json:"confidence" example:"0.92"`
	WasCorrect bool    `json:"was_correct" example:"true"`
}

// ThresholdConfigData represents a threshold configuration
type ThresholdConfigData struct {
	ID                            string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Version                       string  `json:"version" example:"1.0"`
	AutoApproveThreshold          float64 `json:"auto_approve_threshold" example:"0.85"`
	VisionMatchMinConfidence      float64 `json:"vision_match_min_confidence" example:"0.80"`
	VectorSimilarityMinConfidence float64 `json:"vector_similarity_min_confidence" example:"0.75"`
	Accuracy                      float64 `json:"accuracy" example:"0.95"`
	IsActive                      bool    `json:"is_active" example:"true"`
}

// RetrainResponseData represents the result of a retrain run
type RetrainResponseData struct {
	Retrained bool                 `json:"retrained" example:"true"`
	Config    *ThresholdConfigData `json:"config,omitempty"`
	Message   string               `json:"message,omitempty" example:"not enough new validations since the last training"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Identika Product Identification API",
		Version:     "v1.0.0",
		Description: "Product identification and adaptive matching engine: vision analysis, catalog matching with embedding fallback, and feedback-driven threshold tuning",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/identify - Identify a single product
		endpoint.New(
			endpoint.POST,
			"/identify",
			endpoint.WithTags("Identify"),
			endpoint.WithSummary("Identify a product in an image"),
			endpoint.WithDescription("Analyzes the image, matches it against the catalog by exact fields with an embedding fallback, and routes the result by the active thresholds. Unmatched images create a new catalog entry unless the source is a sale."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("source", parameter.Form, parameter.WithDescription("Business operation: stock_entry, sale or manual (default manual)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(IdentifyResponseData{}, "200", "Product identified or routed to manual review"),
				response.New(IdentifyResponseData{}, "201", "New product created"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "IMAGE_TOO_LARGE", Message: "Image exceeds the maximum supported size"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNREGISTERED_PRODUCT_SALE", Message: "Cannot sell a product that is not registered in the catalog"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "VISION_ANALYSIS_FAILED", Message: "Vision analysis of the image failed"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/identify/batch - Identify every product in an image
		endpoint.New(
			endpoint.POST,
			"/identify/batch",
			endpoint.WithTags("Identify"),
			endpoint.WithSummary("Identify every product in an image"),
			endpoint.WithDescription("Detects all objects in the image, identifies each one independently and aggregates identical products into quantified groups. Unidentified objects come back as temporary placeholders."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("min_confidence", parameter.Form, parameter.WithDescription("Drop groups below this mean confidence (0-1, default 0)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BatchResponseData{}, "200", "Detection completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "VISION_ANALYSIS_FAILED", Message: "Vision analysis of the image failed"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/validations - Record a validation judgment
		endpoint.New(
			endpoint.POST,
			"/validations",
			endpoint.WithTags("Validations"),
			endpoint.WithSummary("Record a human judgment of an identification"),
			endpoint.WithDescription("Appends one validation record to the feedback ledger. Once enough records accumulate, retraining proposes adjusted thresholds."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ValidationResponseData{}, "201", "Validation recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/thresholds/active - Get the active threshold configuration
		endpoint.New(
			endpoint.GET,
			"/thresholds/active",
			endpoint.WithTags("Thresholds"),
			endpoint.WithSummary("Get the active threshold configuration"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ThresholdConfigData{}, "200", "Active configuration"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/thresholds/retrain - Trigger a retrain run
		endpoint.New(
			endpoint.POST,
			"/thresholds/retrain",
			endpoint.WithTags("Thresholds"),
			endpoint.WithSummary("Evaluate the validation ledger and propose new thresholds"),
			endpoint.WithDescription("Runs the threshold controller once. With enough new validations a new inactive configuration version is created; otherwise the run is a no-op."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RetrainResponseData{}, "200", "Not enough new validations, nothing proposed"),
				response.New(RetrainResponseData{}, "201", "New configuration proposed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/thresholds/:id/activate - Promote a configuration
		endpoint.New(
			endpoint.POST,
			"/thresholds/{id}/activate",
			endpoint.WithTags("Thresholds"),
			endpoint.WithSummary("Activate a threshold configuration"),
			endpoint.WithDescription("Promotes the configuration to active, deactivating the previous one"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Configuration ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct {
					Activated string `json:"activated" example:"550e8400-e29b-41d4-a716-446655440000"`
				}{}, "200", "Configuration activated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "THRESHOLD_CONFIG_NOT_FOUND", Message: "Threshold configuration not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /health - Health check
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		// GET /ready - Readiness check
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Checks database connectivity"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "not ready"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
