package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when the catalog API has no such product
	ErrProductNotFound = errors.New("product not found")

	// ErrCatalogAPIFailure is returned when a catalog API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrFeedUnavailable is the user-facing failure of a feed resolution
	ErrFeedUnavailable = errors.New("Failed to load products")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrHandpickLimit is returned when more than MaxHandpicked products are selected
	ErrHandpickLimit = errors.New("Maximum 8 products can be selected for handpicked section")

	// ErrNoPriceTier is returned when a product draft has no complete price tier
	ErrNoPriceTier = errors.New("Please add at least one valid price tier")

	// ErrNoImages is returned when a product draft has no images
	ErrNoImages = errors.New("Please add at least one image")

	// ErrSuperseded is returned when a debounced call was replaced by a newer one
	ErrSuperseded = errors.New("superseded by a newer request")
)

// APIError carries the status and message of a failed catalog API response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog API returned status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match any APIError against ErrCatalogAPIFailure
func (e *APIError) Unwrap() error {
	return ErrCatalogAPIFailure
}

// StatusOf returns the HTTP status carried by err, or 0 if there is none
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
