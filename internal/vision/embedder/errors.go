package embedder

import "errors"

var (
	// ErrEmbedderUnavailable indicates the embedding service cannot be reached
	// after exhausting retries
	ErrEmbedderUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidResponse indicates the embedding service returned malformed data
	ErrInvalidResponse = errors.New("invalid response from embedding service")

	// ErrDimensionMismatch indicates the returned vector has the wrong length
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
