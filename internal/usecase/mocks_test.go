package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/loomhouse/storefront/internal/domain"
)

// MockCacheRepository is an in-memory domain.CacheRepository that can be told to fail
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockCatalogClient records every call and answers from canned data
type MockCatalogClient struct {
	mu    sync.Mutex
	calls []string

	pages          map[int]*domain.Feed
	listError      error
	all            []domain.Product
	allError       error
	latest         []domain.Product
	handpicked     []domain.Product
	handpickedErr  error
	searchResult   *domain.Feed
	searchError    error
	suggestions    []domain.Suggestion
	suggestionsErr error
	byCategory     map[string]*domain.Feed
	products       map[string]*domain.Product
	created        *domain.NewDraft
	createError    error
	deleteError    error
	savedIDs       []string
	adminProducts  []domain.Product
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{
		pages:      make(map[int]*domain.Feed),
		byCategory: make(map[string]*domain.Feed),
		products:   make(map[string]*domain.Product),
	}
}

func (m *MockCatalogClient) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *MockCatalogClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockCatalogClient) ListProducts(ctx context.Context, page, limit int) (*domain.Feed, error) {
	m.record("list page=%d limit=%d", page, limit)
	if m.listError != nil {
		return nil, m.listError
	}
	if feed, ok := m.pages[page]; ok {
		cp := *feed
		cp.Items = append([]domain.Product(nil), feed.Items...)
		return &cp, nil
	}
	return &domain.Feed{Items: []domain.Product{}, Pagination: domain.SinglePage(0)}, nil
}

func (m *MockCatalogClient) AllProducts(ctx context.Context) ([]domain.Product, error) {
	m.record("all")
	return m.all, m.allError
}

func (m *MockCatalogClient) LatestProducts(ctx context.Context) ([]domain.Product, error) {
	m.record("latest")
	return m.latest, nil
}

func (m *MockCatalogClient) HandpickedProducts(ctx context.Context) ([]domain.Product, error) {
	m.record("handpicked")
	if m.handpickedErr != nil {
		return nil, m.handpickedErr
	}
	return m.handpicked, nil
}

func (m *MockCatalogClient) Search(ctx context.Context, query string) (*domain.Feed, error) {
	m.record("search q=%s", query)
	if m.searchError != nil {
		return nil, m.searchError
	}
	if m.searchResult == nil {
		return &domain.Feed{Items: []domain.Product{}, Pagination: domain.SinglePage(0)}, nil
	}
	cp := *m.searchResult
	cp.Items = append([]domain.Product(nil), m.searchResult.Items...)
	return &cp, nil
}

func (m *MockCatalogClient) SearchSuggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	m.record("suggestions q=%s", query)
	if m.suggestionsErr != nil {
		return nil, m.suggestionsErr
	}
	return m.suggestions, nil
}

func (m *MockCatalogClient) ProductsByCategory(ctx context.Context, category string) (*domain.Feed, error) {
	m.record("category %s", category)
	if feed, ok := m.byCategory[category]; ok {
		return feed, nil
	}
	return &domain.Feed{Items: []domain.Product{}, Pagination: domain.SinglePage(0)}, nil
}

func (m *MockCatalogClient) FilterByCategory(ctx context.Context, category string) (*domain.Feed, error) {
	m.record("filter category=%s", category)
	return m.ProductsByCategory(ctx, category)
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.record("get %s", id)
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockCatalogClient) CreateProduct(ctx context.Context, draft *domain.NewDraft) (*domain.Product, error) {
	m.record("create")
	if m.createError != nil {
		return nil, m.createError
	}
	m.created = draft
	return &domain.Product{ID: "new-1", Name: draft.Fields["name"], Price: draft.Tiers}, nil
}

func (m *MockCatalogClient) DeleteProduct(ctx context.Context, id string) error {
	m.record("delete %s", id)
	return m.deleteError
}

func (m *MockCatalogClient) ToggleHandpicked(ctx context.Context, id string) (*domain.Product, error) {
	m.record("toggle %s", id)
	return &domain.Product{ID: id, IsHandpicked: true}, nil
}

func (m *MockCatalogClient) SetHandpicked(ctx context.Context, ids []string) error {
	m.record("set-handpicked %d", len(ids))
	m.savedIDs = ids
	return nil
}

func (m *MockCatalogClient) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	m.record("admin products")
	return m.adminProducts, nil
}

func products(entries ...string) []domain.Product {
	// each entry is "id:category"
	out := make([]domain.Product, 0, len(entries))
	for _, s := range entries {
		var id, category string
		for i := 0; i < len(s); i++ {
			if s[i] == ':' {
				id, category = s[:i], s[i+1:]
				break
			}
		}
		if id == "" {
			id = s
		}
		out = append(out, domain.Product{ID: id, Name: "Product " + id, Category: category})
	}
	return out
}

func ids(ps []domain.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
