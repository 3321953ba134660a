package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/infrastructure/catalog"
)

const (
	// MoreProductsCount is how many other products the detail page suggests
	MoreProductsCount = 6

	morePageSize     = 12
	moreMaxPages     = 3
	moreFallbackSize = 20
)

// ProductDetail is the product page payload
type ProductDetail struct {
	Product domain.ProductView   `json:"product"`
	More    []domain.ProductView `json:"moreProducts"`
}

// ProductService serves single products and the "more products" strip
type ProductService struct {
	catalog  domain.CatalogClient
	imageURL string

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProductService creates a product service. rnd may be nil for a randomly seeded source.
func NewProductService(catalogClient domain.CatalogClient, imageBaseURL string, rnd *rand.Rand) *ProductService {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ProductService{catalog: catalogClient, imageURL: imageBaseURL, rnd: rnd}
}

// Get returns one product prepared for display
func (s *ProductService) Get(ctx context.Context, id string) (*domain.ProductView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidRequest
	}
	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("error fetching product")
		return nil, err
	}
	view := catalog.NewView(s.imageURL, *product)
	return &view, nil
}

// Detail returns the product plus up to MoreProductsCount other products.
// A failure to load the other products only empties that strip.
func (s *ProductService) Detail(ctx context.Context, id string) (*ProductDetail, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	more, err := s.More(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("id", id).Msg("more products unavailable")
		more = []domain.Product{}
	}

	return &ProductDetail{Product: *view, More: catalog.NewViews(s.imageURL, more)}, nil
}

// More picks up to MoreProductsCount random products other than excludeID, drawn from
// up to three random listing pages. If that fails the first page is used instead.
func (s *ProductService) More(ctx context.Context, excludeID string) ([]domain.Product, error) {
	products, err := s.sampleProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("error fetching more products, falling back to first page")
		fallback, ferr := s.catalog.ListProducts(ctx, 1, moreFallbackSize)
		if ferr != nil {
			return nil, fmt.Errorf("fallback also failed: %w", ferr)
		}
		products = fallback.Items
	}

	available := uniqueExcluding(products, excludeID)
	s.shuffle(available)
	if len(available) > MoreProductsCount {
		available = available[:MoreProductsCount]
	}
	return available, nil
}

func (s *ProductService) sampleProducts(ctx context.Context) ([]domain.Product, error) {
	first, err := s.catalog.ListProducts(ctx, 1, morePageSize)
	if err != nil {
		return nil, err
	}

	totalPages := first.Pagination.TotalPages
	if totalPages <= 1 {
		return first.Items, nil
	}

	pages := s.randomPages(totalPages, min(moreMaxPages, totalPages-1))

	results := make([][]domain.Product, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, page := range pages {
		g.Go(func() error {
			feed, err := s.catalog.ListProducts(gctx, page, morePageSize)
			if err != nil {
				return err
			}
			results[i] = feed.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Product
	for _, items := range results {
		all = append(all, items...)
	}
	return all, nil
}

// randomPages draws n page numbers in [1, total]; repeated draws are dropped
func (s *ProductService) randomPages(total, n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool)
	var pages []int
	for i := 0; i < n; i++ {
		p := s.rnd.IntN(total) + 1
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}
	return pages
}

func (s *ProductService) shuffle(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})
}

func uniqueExcluding(products []domain.Product, excludeID string) []domain.Product {
	seen := make(map[string]bool)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID == excludeID || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
