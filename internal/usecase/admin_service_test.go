package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomhouse/storefront/internal/domain"
)

func idList(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("id%d", i)
	}
	return out
}

func TestHandpickSelection(t *testing.T) {
	sel := NewHandpickSelection("a", "b", "a", " ", "c")
	assert.Equal(t, []string{"a", "b", "c"}, sel.IDs())

	assert.False(t, sel.Toggle("b"))
	assert.Equal(t, []string{"a", "c"}, sel.IDs())
	assert.True(t, sel.Toggle("b"))
	assert.Equal(t, []string{"a", "c", "b"}, sel.IDs())
	assert.True(t, sel.Has("c"))
	assert.False(t, sel.OverLimit())

	assert.True(t, NewHandpickSelection(idList(9)...).OverLimit())
	assert.False(t, NewHandpickSelection(idList(8)...).OverLimit())
}

func TestAdminService_SaveHandpicked_RejectsNine(t *testing.T) {
	catalog := NewMockCatalogClient()
	service := NewAdminService(catalog, nil, testImageBase)

	err := service.SaveHandpicked(context.Background(), idList(9))

	assert.ErrorIs(t, err, domain.ErrHandpickLimit)
	assert.Empty(t, catalog.Calls())
}

func TestAdminService_SaveHandpicked_PostsEight(t *testing.T) {
	catalog := NewMockCatalogClient()
	service := NewAdminService(catalog, nil, testImageBase)

	err := service.SaveHandpicked(context.Background(), idList(8))

	require.NoError(t, err)
	assert.Equal(t, []string{"set-handpicked 8"}, catalog.Calls())
	assert.Equal(t, idList(8), catalog.savedIDs)
}

func TestAdminService_SaveHandpicked_DedupesBeforeLimit(t *testing.T) {
	catalog := NewMockCatalogClient()
	service := NewAdminService(catalog, nil, testImageBase)

	selected := append(idList(8), "id0", "id1")
	require.NoError(t, service.SaveHandpicked(context.Background(), selected))
	assert.Len(t, catalog.savedIDs, 8)
}

func TestAdminService_SaveHandpicked_InvalidatesHome(t *testing.T) {
	catalog := NewMockCatalogClient()
	cache := NewMockCacheRepository()
	home := NewHomeService(catalog, cache, time.Minute, testImageBase)
	service := NewAdminService(catalog, home, testImageBase)
	ctx := context.Background()

	_, err := home.Load(ctx)
	require.NoError(t, err)
	ok, _ := cache.Exists(ctx, homeCacheKey)
	require.True(t, ok)

	require.NoError(t, service.SaveHandpicked(ctx, []string{"a"}))
	ok, _ = cache.Exists(ctx, homeCacheKey)
	assert.False(t, ok)
}

func TestPrepareDraft(t *testing.T) {
	images := []domain.ImageUpload{{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}}}

	tests := []struct {
		name      string
		draft     *domain.NewDraft
		wantErr   error
		wantTiers int
	}{
		{
			name:    "nil draft",
			draft:   nil,
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "no complete tier",
			draft: &domain.NewDraft{
				Tiers:  []domain.PriceTier{{MinQuantity: 10, Price: 5}, {MinQuantity: 20, MaxQuantity: 10, Price: 5}},
				Images: images,
			},
			wantErr: domain.ErrNoPriceTier,
		},
		{
			name: "no images",
			draft: &domain.NewDraft{
				Tiers: []domain.PriceTier{{MinQuantity: 1, MaxQuantity: 10, Price: 5}},
			},
			wantErr: domain.ErrNoImages,
		},
		{
			name: "unknown category",
			draft: &domain.NewDraft{
				Fields: map[string]string{"category": "Saree"},
				Tiers:  []domain.PriceTier{{MinQuantity: 1, MaxQuantity: 10, Price: 5}},
				Images: images,
			},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name: "incomplete tiers dropped",
			draft: &domain.NewDraft{
				Fields: map[string]string{"name": "  Kashmir Shawl "},
				Tiers:  []domain.PriceTier{{MinQuantity: 1, MaxQuantity: 10, Price: 5}, {MinQuantity: 11}},
				Images: images,
			},
			wantTiers: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrepareDraft(tt.draft)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Tiers, tt.wantTiers)
			assert.Equal(t, "Kashmir Shawl", got.Fields["name"])
		})
	}
}

func TestAdminService_CreateProduct_ValidationMakesNoCall(t *testing.T) {
	catalog := NewMockCatalogClient()
	service := NewAdminService(catalog, nil, testImageBase)

	_, err := service.CreateProduct(context.Background(), &domain.NewDraft{})

	assert.ErrorIs(t, err, domain.ErrNoPriceTier)
	assert.Empty(t, catalog.Calls())
}

func TestAdminService_CreateProduct(t *testing.T) {
	catalog := NewMockCatalogClient()
	service := NewAdminService(catalog, nil, testImageBase)

	view, err := service.CreateProduct(context.Background(), &domain.NewDraft{
		Fields: map[string]string{"name": "Silk Stole"},
		Tiers:  []domain.PriceTier{{MinQuantity: 12, MaxQuantity: 100, Price: 450}},
		Images: []domain.ImageUpload{{Filename: "a.jpg", Data: []byte{1}}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Silk Stole", view.Name)
	require.NotNil(t, view.StartingPrice)
	assert.Equal(t, 450.0, *view.StartingPrice)
	assert.Equal(t, "Silk Stole", catalog.created.Fields["name"])
}

func TestAdminService_DeleteProduct_KeepsServerMessage(t *testing.T) {
	catalog := NewMockCatalogClient()
	catalog.deleteError = &domain.APIError{StatusCode: 400, Message: "Product is referenced by an order"}
	service := NewAdminService(catalog, nil, testImageBase)

	err := service.DeleteProduct(context.Background(), "p1")

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Product is referenced by an order", apiErr.Message)

	assert.ErrorIs(t, service.DeleteProduct(context.Background(), ""), domain.ErrInvalidRequest)
}

func TestAdminService_HandpickPanel(t *testing.T) {
	catalog := NewMockCatalogClient()
	catalog.adminProducts = []domain.Product{{ID: "a", IsHandpicked: true}, {ID: "b"}, {ID: "c", IsHandpicked: true}}
	service := NewAdminService(catalog, nil, testImageBase)

	panel, err := service.HandpickPanel(context.Background())

	require.NoError(t, err)
	assert.Len(t, panel.Products, 3)
	assert.Equal(t, []string{"a", "c"}, panel.Selected)
	assert.Equal(t, MaxHandpicked, panel.Max)
}

func TestMatchesTerm(t *testing.T) {
	p := domain.Product{Name: "Kani Shawl", Category: "Shawl", Color: "Ivory"}

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"kani", true},
		{"SHAWL", true},
		{" ivo ", true},
		{"scarf", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesTerm(p, tt.term))
		})
	}
}

func TestAdminService_ProductList(t *testing.T) {
	catalog := NewMockCatalogClient()
	catalog.pages[2] = &domain.Feed{
		Items: []domain.Product{
			{ID: "a", Name: "Kani Shawl", Category: "Shawl", Price: []domain.PriceTier{{MinQuantity: 12, MaxQuantity: 50, Price: 900}}},
			{ID: "b", Name: "Silk Scarf", Category: "Scarf", Color: "Rose"},
			{ID: "c", Name: "Wool Blanket", Category: "Blanket", Color: "rose grey"},
		},
		Pagination: domain.Pagination{CurrentPage: 2, TotalPages: 3, TotalProducts: 40, HasNext: true, HasPrev: true},
	}
	service := NewAdminService(catalog, nil, testImageBase)
	ctx := context.Background()

	list, err := service.ProductList(ctx, " ROSE ", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"list page=2 limit=18"}, catalog.Calls())
	require.Len(t, list.Items, 2)
	assert.Equal(t, "b", list.Items[0].ID)
	assert.Equal(t, "c", list.Items[1].ID)
	assert.Equal(t, "ROSE", list.Term)
	assert.Equal(t, 2, list.Pagination.CurrentPage)

	list, err = service.ProductList(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	require.NotNil(t, list.Items[0].StartingPrice)
	assert.Equal(t, 900.0, *list.Items[0].StartingPrice)
}

func TestAdminService_ProductList_Failure(t *testing.T) {
	catalog := NewMockCatalogClient()
	catalog.listError = &domain.APIError{StatusCode: 503}
	service := NewAdminService(catalog, nil, testImageBase)

	_, err := service.ProductList(context.Background(), "", 0)

	assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	assert.Equal(t, []string{"list page=1 limit=18"}, catalog.Calls())
}
