package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "Image exceeds the maximum supported size",
		StatusCode: 422,
	}

	ErrProductNotFound = &AppError{
		Code:       "PRODUCT_NOT_FOUND",
		Message:    "Product not found",
		StatusCode: 404,
	}

	ErrProductExists = &AppError{
		Code:       "PRODUCT_ALREADY_EXISTS",
		Message:    "A product with the same brand and model already exists in this category",
		StatusCode: 409,
	}

	ErrVisionAnalysisFailed = &AppError{
		Code:       "VISION_ANALYSIS_FAILED",
		Message:    "Vision analysis of the image failed",
		StatusCode: 502,
	}

	ErrEmbeddingFailed = &AppError{
		Code:       "EMBEDDING_FAILED",
		Message:    "Embedding generation for the image failed",
		StatusCode: 502,
	}

	ErrNoActiveThresholdConfig = &AppError{
		Code:       "NO_ACTIVE_THRESHOLD_CONFIG",
		Message:    "No active threshold configuration found",
		StatusCode: 404,
	}

	ErrThresholdConfigNotFound = &AppError{
		Code:       "THRESHOLD_CONFIG_NOT_FOUND",
		Message:    "Threshold configuration not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrUnregisteredProductSale = &AppError{
		Code:       "UNREGISTERED_PRODUCT_SALE",
		Message:    "Cannot sell a product that is not registered in the catalog",
		StatusCode: 422,
	}
)
