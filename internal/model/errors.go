package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrInsufficientData gates persona synthesis below the completeness threshold.
	ErrInsufficientData = errors.New("insufficient data for synthesis")

	// ErrExtractionParse means the model returned 200 but nothing array-shaped parsed.
	ErrExtractionParse = errors.New("failed to parse extracted memories")

	// ErrNoMemoriesExtracted means the parsed payload held no memories at all.
	ErrNoMemoriesExtracted = errors.New("no memories could be extracted")
)
