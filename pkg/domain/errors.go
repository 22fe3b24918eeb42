package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetNotFound means no pipeline run has published a dataset yet
	// (or the stored one expired). Distinct from an empty dataset, which is
	// a valid result.
	ErrDatasetNotFound = errors.New("dataset not available")

	ErrFestivalNotFound   = errors.New("festival not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrExternalAPIFailure = errors.New("external API failure")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
