package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/infrastructure/catalog"
)

// FeedService resolves a FeedQuery into exactly one catalog call sequence
type FeedService struct {
	catalog  domain.CatalogClient
	imageURL string
}

// NewFeedService creates a feed resolver
func NewFeedService(catalogClient domain.CatalogClient, imageBaseURL string) *FeedService {
	return &FeedService{catalog: catalogClient, imageURL: imageBaseURL}
}

// Views prepares feed items for display
func (s *FeedService) Views(products []domain.Product) []domain.ProductView {
	return catalog.NewViews(s.imageURL, products)
}

// Resolve fetches the products for q.
//
// Resolution order:
//  1. search text: search endpoint with the raw text, category filters applied afterwards,
//     pagination taken from the search response.
//  2. one category: category endpoint.
//  3. several categories: first listing page of MultiFilterPageSize, filtered afterwards,
//     with the listing's pagination.
//  4. otherwise: listing page q.Page of FeedPageSize.
//
// Resolve has no side effects; recording a submitted search is the caller's job.
// On failure the returned feed is empty with single-page pagination and the error wraps
// domain.ErrFeedUnavailable.
func (s *FeedService) Resolve(ctx context.Context, q domain.FeedQuery) (*domain.Feed, error) {
	feed, err := s.resolve(ctx, q)
	if err != nil {
		log.Error().Err(err).
			Str("search", q.Search).
			Strs("filters", q.Filters).
			Int("page", q.Page).
			Msg("error fetching products")
		return &domain.Feed{Items: []domain.Product{}, Pagination: domain.SinglePage(0)},
			fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
	}
	return feed, nil
}

func (s *FeedService) resolve(ctx context.Context, q domain.FeedQuery) (*domain.Feed, error) {
	switch {
	case q.HasSearch():
		feed, err := s.catalog.Search(ctx, q.Search)
		if err != nil {
			return nil, err
		}
		if len(q.Filters) > 0 {
			feed.Items = filterByCategory(feed.Items, q.Filters)
		}
		return feed, nil

	case len(q.Filters) == 1:
		return s.catalog.ProductsByCategory(ctx, q.Filters[0])

	case len(q.Filters) > 1:
		feed, err := s.catalog.ListProducts(ctx, 1, domain.MultiFilterPageSize)
		if err != nil {
			return nil, err
		}
		feed.Items = filterByCategory(feed.Items, q.Filters)
		return feed, nil

	default:
		page := q.Page
		if page < 1 {
			page = 1
		}
		return s.catalog.ListProducts(ctx, page, domain.FeedPageSize)
	}
}

// filterByCategory keeps the products whose category is one of categories
func filterByCategory(products []domain.Product, categories []string) []domain.Product {
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Category != "" && allowed[p.Category] {
			out = append(out, p)
		}
	}
	return out
}
