package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/infrastructure/catalog"
)

// MaxHandpicked caps the curated set
const MaxHandpicked = 8

// HandpickSelection is an insertion-ordered set of product ids chosen for the handpicked section
type HandpickSelection struct {
	ids   []string
	index map[string]int
}

// NewHandpickSelection creates a selection holding ids, duplicates and blanks dropped
func NewHandpickSelection(ids ...string) *HandpickSelection {
	sel := &HandpickSelection{index: make(map[string]int)}
	for _, id := range ids {
		sel.Add(id)
	}
	return sel
}

// Add inserts id if it is not already selected
func (s *HandpickSelection) Add(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

// Toggle selects id if it was not selected and deselects it otherwise. It returns the new state.
func (s *HandpickSelection) Toggle(id string) bool {
	if s.Has(id) {
		s.remove(id)
		return false
	}
	s.Add(id)
	return true
}

func (s *HandpickSelection) remove(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}

// Has reports whether id is selected
func (s *HandpickSelection) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids
func (s *HandpickSelection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in selection order
func (s *HandpickSelection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// OverLimit reports whether the selection exceeds MaxHandpicked
func (s *HandpickSelection) OverLimit() bool {
	return s.Len() > MaxHandpicked
}

// HandpickPanel is the admin curation panel payload
type HandpickPanel struct {
	Products []domain.ProductView `json:"products"`
	Selected []string             `json:"selected"`
	Max      int                  `json:"max"`
}

// AdminProductList is the admin product table payload
type AdminProductList struct {
	Items      []domain.ProductView `json:"items"`
	Pagination domain.Pagination    `json:"pagination"`
	Term       string               `json:"term"`
}

// MatchesTerm reports whether term occurs, ignoring case, in the product's name, category or color.
// A blank term matches every product.
func MatchesTerm(p domain.Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Category, p.Color} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// AdminService backs the admin console: product creation and deletion plus handpicked curation
type AdminService struct {
	catalog  domain.CatalogClient
	home     *HomeService
	imageURL string
}

// NewAdminService creates an admin service. home may be nil; when set its cache is
// invalidated after changes that alter the home page.
func NewAdminService(catalogClient domain.CatalogClient, home *HomeService, imageBaseURL string) *AdminService {
	return &AdminService{catalog: catalogClient, home: home, imageURL: imageBaseURL}
}

// PrepareDraft keeps the complete price tiers of draft and checks that it can be submitted
func PrepareDraft(draft *domain.NewDraft) (*domain.NewDraft, error) {
	if draft == nil {
		return nil, domain.ErrInvalidRequest
	}

	valid := make([]domain.PriceTier, 0, len(draft.Tiers))
	for _, tier := range draft.Tiers {
		if tier.Valid() {
			valid = append(valid, tier)
		}
	}
	if len(valid) == 0 {
		return nil, domain.ErrNoPriceTier
	}
	if len(draft.Images) == 0 {
		return nil, domain.ErrNoImages
	}

	fields := make(map[string]string, len(draft.Fields))
	for k, v := range draft.Fields {
		fields[k] = strings.TrimSpace(v)
	}
	if category := fields["category"]; category != "" && !domain.IsCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, category)
	}

	return &domain.NewDraft{Fields: fields, Tiers: valid, Images: draft.Images}, nil
}

// CreateProduct validates and submits a product draft
func (s *AdminService) CreateProduct(ctx context.Context, draft *domain.NewDraft) (*domain.ProductView, error) {
	prepared, err := PrepareDraft(draft)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.CreateProduct(ctx, prepared)
	if err != nil {
		log.Error().Err(err).Msg("error adding product")
		return nil, err
	}

	s.invalidateHome(ctx)
	view := catalog.NewView(s.imageURL, *product)
	return &view, nil
}

// DeleteProduct removes a product. Catalog failures keep the server's message in a *domain.APIError.
func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("error deleting product")
		return err
	}
	s.invalidateHome(ctx)
	return nil
}

// ProductList loads one listing page for the admin product table and keeps the products matching term
func (s *AdminService) ProductList(ctx context.Context, term string, page int) (*AdminProductList, error) {
	if page < 1 {
		page = 1
	}

	feed, err := s.catalog.ListProducts(ctx, page, domain.FeedPageSize)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("error fetching products")
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
	}

	matched := make([]domain.Product, 0, len(feed.Items))
	for _, p := range feed.Items {
		if MatchesTerm(p, term) {
			matched = append(matched, p)
		}
	}

	return &AdminProductList{
		Items:      catalog.NewViews(s.imageURL, matched),
		Pagination: feed.Pagination,
		Term:       strings.TrimSpace(term),
	}, nil
}

// HandpickPanel loads every product with its handpicked status and the current selection
func (s *AdminService) HandpickPanel(ctx context.Context) (*HandpickPanel, error) {
	products, err := s.catalog.AdminProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error fetching products")
		return nil, err
	}

	sel := NewHandpickSelection()
	for _, p := range products {
		if p.IsHandpicked {
			sel.Add(p.ID)
		}
	}

	return &HandpickPanel{
		Products: catalog.NewViews(s.imageURL, products),
		Selected: sel.IDs(),
		Max:      MaxHandpicked,
	}, nil
}

// SaveHandpicked replaces the curated set. Selections above MaxHandpicked are rejected
// without contacting the catalog.
func (s *AdminService) SaveHandpicked(ctx context.Context, ids []string) error {
	sel := NewHandpickSelection(ids...)
	if sel.OverLimit() {
		return fmt.Errorf("%w: %d selected", domain.ErrHandpickLimit, sel.Len())
	}

	if err := s.catalog.SetHandpicked(ctx, sel.IDs()); err != nil {
		log.Error().Err(err).Msg("error saving handpicked products")
		return err
	}

	s.invalidateHome(ctx)
	return nil
}

// ToggleHandpicked flips one product's curation flag
func (s *AdminService) ToggleHandpicked(ctx context.Context, id string) (*domain.ProductView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidRequest
	}
	product, err := s.catalog.ToggleHandpicked(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateHome(ctx)
	view := catalog.NewView(s.imageURL, *product)
	return &view, nil
}

func (s *AdminService) invalidateHome(ctx context.Context) {
	if s.home != nil {
		s.home.Invalidate(ctx)
	}
}
