package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/loomhouse/storefront/internal/domain"
)

// Listing responses come in three shapes: a bare array, an object with a "products" array,
// or an object with a "data" array. They are probed in that order.
type envelope struct {
	Products   json.RawMessage    `json:"products"`
	Data       json.RawMessage    `json:"data"`
	Product    json.RawMessage    `json:"product"`
	Pagination *domain.Pagination `json:"pagination"`
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// productArray returns the raw product array of body, or nil when no known shape matches
func productArray(body []byte) (json.RawMessage, *envelope, error) {
	if isArray(body) {
		return body, nil, nil
	}
	if !isObject(body) {
		return nil, nil, fmt.Errorf("%w: unexpected response body", domain.ErrCatalogAPIFailure)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case isArray(env.Products):
		return env.Products, &env, nil
	case isArray(env.Data):
		return env.Data, &env, nil
	default:
		return nil, &env, nil
	}
}

// DecodeProducts normalizes a listing response into a product slice.
// Unknown shapes yield an empty, non-nil slice.
func DecodeProducts(body []byte) ([]domain.Product, error) {
	raw, _, err := productArray(body)
	if err != nil {
		return nil, err
	}
	products := []domain.Product{}
	if raw == nil {
		return products, nil
	}
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// DecodeFeed normalizes a listing response into items plus pagination.
// Without an embedded pagination object a single page holding every item is synthesized.
func DecodeFeed(body []byte) (*domain.Feed, error) {
	raw, env, err := productArray(body)
	if err != nil {
		return nil, err
	}

	feed := &domain.Feed{Items: []domain.Product{}}
	if raw != nil {
		if err := json.Unmarshal(raw, &feed.Items); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
	}

	if env != nil && env.Pagination != nil {
		feed.Pagination = *env.Pagination
	} else {
		feed.Pagination = domain.SinglePage(len(feed.Items))
	}

	return feed, nil
}

// DecodeProduct decodes a single product, accepting it bare or nested under "product" or "data"
func DecodeProduct(body []byte) (*domain.Product, error) {
	if !isObject(body) {
		return nil, fmt.Errorf("%w: unexpected product body", domain.ErrCatalogAPIFailure)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := json.RawMessage(body)
	switch {
	case isObject(env.Product):
		raw = env.Product
	case isObject(env.Data):
		raw = env.Data
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &product, nil
}

// DecodeSuggestions decodes the suggestion list using the same shape probing as listings
func DecodeSuggestions(body []byte) ([]domain.Suggestion, error) {
	raw, _, err := productArray(body)
	if err != nil {
		return nil, err
	}
	suggestions := []domain.Suggestion{}
	if raw == nil {
		return suggestions, nil
	}
	if err := json.Unmarshal(raw, &suggestions); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return suggestions, nil
}
