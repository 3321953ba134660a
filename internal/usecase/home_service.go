package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/infrastructure/catalog"
	"github.com/loomhouse/storefront/internal/metrics"
)

const homeCacheKey = "home:products"

// recentFallbackSize is how many listing products stand in when the latest endpoint is empty
const recentFallbackSize = 5

// HomeData is the raw product data behind the home page
type HomeData struct {
	All        []domain.Product `json:"all"`
	Latest     []domain.Product `json:"latest"`
	Handpicked []domain.Product `json:"handpicked"`
}

// RecentlyAdded returns the latest products, or the first few of the full listing when there are none
func (d *HomeData) RecentlyAdded() []domain.Product {
	if len(d.Latest) > 0 {
		return d.Latest
	}
	if len(d.All) > recentFallbackSize {
		return d.All[:recentFallbackSize]
	}
	return d.All
}

// HomeParams describes the client's viewport and carousel positions
type HomeParams struct {
	Width       int
	Start       int
	RecentStart int
}

// WindowView is one rendered carousel position
type WindowView struct {
	Items   []domain.ProductView `json:"items"`
	Start   int                  `json:"start"`
	Next    int                  `json:"next"`
	Prev    int                  `json:"prev"`
	Visible int                  `json:"visible"`
	Total   int                  `json:"total"`
}

// HomePage is the home page payload
type HomePage struct {
	RecentlyAdded WindowView `json:"recentlyAdded"`
	Handpicked    WindowView `json:"handpicked"`
	// SlideIntervalMs is the handpicked auto-advance period; the recently-added carousel has none
	SlideIntervalMs int64 `json:"slideIntervalMs"`
	// TransitionMs is how long the recently-added carousel ignores further moves
	TransitionMs int64    `json:"transitionMs"`
	Preload      []string `json:"preload"`
}

// HomeService assembles the home page from the catalog, caching the raw product data
type HomeService struct {
	catalog  domain.CatalogClient
	cache    domain.CacheRepository
	cacheTTL time.Duration
	imageURL string
}

// NewHomeService creates a home page service. imageBaseURL is used to resolve product images.
func NewHomeService(catalogClient domain.CatalogClient, cache domain.CacheRepository, cacheTTL time.Duration, imageBaseURL string) *HomeService {
	return &HomeService{
		catalog:  catalogClient,
		cache:    cache,
		cacheTTL: cacheTTL,
		imageURL: imageBaseURL,
	}
}

// Load returns the home page product data, from cache when possible
func (s *HomeService) Load(ctx context.Context) (*HomeData, error) {
	if data, ok := s.getFromCache(ctx); ok {
		return data, nil
	}

	data := &HomeData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		all, err := s.catalog.AllProducts(gctx)
		if err != nil {
			return fmt.Errorf("all products: %w", err)
		}
		data.All = all
		return nil
	})
	g.Go(func() error {
		latest, err := s.catalog.LatestProducts(gctx)
		if err != nil {
			return fmt.Errorf("latest products: %w", err)
		}
		data.Latest = latest
		return nil
	})
	g.Go(func() error {
		handpicked, err := s.catalog.HandpickedProducts(gctx)
		if domain.StatusOf(err) == http.StatusNotFound {
			log.Info().Msg("no handpicked products found")
			data.Handpicked = []domain.Product{}
			return nil
		}
		if err != nil {
			return fmt.Errorf("handpicked products: %w", err)
		}
		data.Handpicked = handpicked
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("error fetching home products")
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
	}

	s.setInCache(ctx, data)
	return data, nil
}

// Page loads the home data and renders both carousels for the given viewport and positions
func (s *HomeService) Page(ctx context.Context, params HomeParams) (*HomePage, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(data, params), nil
}

func (s *HomeService) render(data *HomeData, params HomeParams) *HomePage {
	recent := data.RecentlyAdded()
	handpicked := data.Handpicked

	page := &HomePage{
		SlideIntervalMs: SlideInterval.Milliseconds(),
		TransitionMs:    CarouselTransition.Milliseconds(),
	}

	// Recently added: wrap-around window of RecentCarouselSize
	page.RecentlyAdded = WindowView{Total: len(recent), Visible: RecentCarouselSize, Items: []domain.ProductView{}}
	if n := len(recent); n > 0 {
		start := mod(params.RecentStart, n)
		page.RecentlyAdded.Start = start
		page.RecentlyAdded.Next = NextRecent(start, n)
		page.RecentlyAdded.Prev = PrevRecent(start, n)
		page.RecentlyAdded.Items = catalog.NewViews(s.imageURL, Window(recent, start, RecentCarouselSize))
	}

	// Handpicked: responsive slider without wrap inside the window
	visible := VisibleCount(params.Width)
	page.Handpicked = WindowView{Total: len(handpicked), Visible: visible, Items: []domain.ProductView{}}
	if n := len(handpicked); n > 0 {
		start := params.Start
		if visible >= n || start < 0 {
			start = 0
		} else if start > n-visible {
			start = n - visible
		}
		page.Handpicked.Start = start
		page.Handpicked.Next = NextSlide(start, n, visible)
		page.Handpicked.Prev = PrevSlide(start, n, visible)
		page.Handpicked.Items = catalog.NewViews(s.imageURL, Window(handpicked, start, min(visible, n)))
	}

	page.Preload = preloadURLs(s.imageURL, handpicked, recent)
	return page
}

// preloadURLs lists the first image of every product once, in display order
func preloadURLs(baseURL string, groups ...[]domain.Product) []string {
	seen := make(map[string]bool)
	urls := []string{}
	for _, products := range groups {
		for _, p := range products {
			if len(p.Images) == 0 {
				continue
			}
			u := catalog.ResolveImageURL(baseURL, p.Images[0])
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// Invalidate drops the cached home data, e.g. after the handpicked set changed
func (s *HomeService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, homeCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate home cache")
	}
}

func (s *HomeService) getFromCache(ctx context.Context) (*HomeData, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, homeCacheKey)
	if err != nil {
		metrics.ObserveCacheLookup(false)
		return nil, false
	}
	var data HomeData
	if err := json.Unmarshal(raw, &data); err != nil {
		metrics.ObserveCacheLookup(false)
		return nil, false
	}
	metrics.ObserveCacheLookup(true)
	return &data, true
}

func (s *HomeService) setInCache(ctx context.Context, data *HomeData) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	// Log but don't fail if caching fails
	if err := s.cache.Set(ctx, homeCacheKey, raw, s.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache home products")
	}
}
