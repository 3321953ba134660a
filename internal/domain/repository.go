package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for interacting with the remote catalog API
type CatalogClient interface {
	ListProducts(ctx context.Context, page, limit int) (*Feed, error)
	AllProducts(ctx context.Context) ([]Product, error)
	LatestProducts(ctx context.Context) ([]Product, error)
	HandpickedProducts(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) (*Feed, error)
	SearchSuggestions(ctx context.Context, query string) ([]Suggestion, error)
	ProductsByCategory(ctx context.Context, category string) (*Feed, error)
	FilterByCategory(ctx context.Context, category string) (*Feed, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, draft *NewDraft) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ToggleHandpicked(ctx context.Context, id string) (*Product, error)
	SetHandpicked(ctx context.Context, ids []string) error
	AdminProducts(ctx context.Context) ([]Product, error)
}
