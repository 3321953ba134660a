package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/usecase"
)

// Services bundles the usecases the handler serves
type Services struct {
	Feed     *usecase.FeedService
	Home     *usecase.HomeService
	Products *usecase.ProductService
	Suggest  *usecase.SuggestService
	History  *usecase.HistoryService
	Admin    *usecase.AdminService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	feed     *usecase.FeedService
	home     *usecase.HomeService
	products *usecase.ProductService
	suggest  *usecase.SuggestService
	history  *usecase.HistoryService
	admin    *usecase.AdminService
}

// NewHandler creates a new HTTP handler
func NewHandler(s Services) *Handler {
	return &Handler{
		feed:     s.Feed,
		home:     s.Home,
		products: s.Products,
		suggest:  s.Suggest,
		history:  s.History,
		admin:    s.Admin,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "loomhouse-storefront",
		"version": "1.0.0",
	})
}

// feedPayload is the product listing page payload
type feedPayload struct {
	Items       []domain.ProductView `json:"items"`
	Pagination  domain.Pagination    `json:"pagination"`
	PageNumbers []int                `json:"pageNumbers"`
	Search      string               `json:"search,omitempty"`
	Filters     []string             `json:"filters"`
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidRequest, key)
	}
	return n, nil
}

// GetHome renders the recently added carousel and the handpicked slider
func (h *Handler) GetHome(c *gin.Context) {
	width, err := intQuery(c, "width", 1280)
	if err != nil {
		respondError(c, err)
		return
	}
	start, err := intQuery(c, "start", 0)
	if err != nil {
		respondError(c, err)
		return
	}
	recentStart, err := intQuery(c, "recentStart", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.home.Page(c.Request.Context(), usecase.HomeParams{
		Width:       width,
		Start:       start,
		RecentStart: recentStart,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, http.StatusOK, "Home page loaded", page)
}

// ListProducts resolves the product feed for search, filter and page.
// It never touches recent searches; submissions are recorded through AddRecentSearch.
func (h *Handler) ListProducts(c *gin.Context) {
	q := domain.ParseFeedQuery(c.Query("search"), c.Query("filter"), c.Query("page"))

	feed, err := h.feed.Resolve(c.Request.Context(), q)

	payload := feedPayload{
		Items:       h.feed.Views(feed.Items),
		Pagination:  feed.Pagination,
		PageNumbers: usecase.PageNumbers(feed.Pagination.CurrentPage, feed.Pagination.TotalPages),
		Search:      q.Search,
		Filters:     q.Filters,
	}
	if payload.Filters == nil {
		payload.Filters = []string{}
	}

	if err != nil {
		respondErrorWithData(c, err, payload)
		return
	}

	success(c, http.StatusOK, "Products loaded", payload)
}

// GetProduct returns a product with the "more products" strip
func (h *Handler) GetProduct(c *gin.Context) {
	detail, err := h.products.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Product loaded", detail)
}

// GetSuggestions returns debounced search suggestions. A request replaced by a newer
// one from the same session gets 204 No Content.
func (h *Handler) GetSuggestions(c *gin.Context) {
	suggestions, err := h.suggest.Suggest(c.Request.Context(), sessionID(c), c.Query("q"))
	switch {
	case errors.Is(err, domain.ErrSuperseded), errors.Is(err, context.Canceled):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Suggestions loaded", suggestions)
}

// ListRecentSearches returns the session's recent searches
func (h *Handler) ListRecentSearches(c *gin.Context) {
	recent, err := h.history.List(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Recent searches loaded", recent)
}

type recentSearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// AddRecentSearch records a submitted search
func (h *Handler) AddRecentSearch(c *gin.Context) {
	var req recentSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "INVALID_REQUEST", "query is required", nil)
		return
	}

	recent, err := h.history.Add(c.Request.Context(), sessionID(c), req.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Recent search saved", recent)
}

// ClearRecentSearches forgets the session's recent searches
func (h *Handler) ClearRecentSearches(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context(), sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Recent searches cleared", []string{})
}

// ListCategories returns the category and fringe style vocabularies
func (h *Handler) ListCategories(c *gin.Context) {
	success(c, http.StatusOK, "Categories loaded", gin.H{
		"categories":   domain.Categories,
		"fringeStyles": domain.FringeStyles,
	})
}

// ListAdminProducts returns a listing page for the admin product table filtered by q
func (h *Handler) ListAdminProducts(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.admin.ProductList(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Products loaded", list)
}

// GetHandpickPanel returns every product with the current handpicked selection
func (h *Handler) GetHandpickPanel(c *gin.Context) {
	panel, err := h.admin.HandpickPanel(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Products loaded", panel)
}

type handpickRequest struct {
	ProductIDs []string `json:"productIds"`
}

// SaveHandpicked replaces the handpicked set
func (h *Handler) SaveHandpicked(c *gin.Context) {
	var req handpickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "INVALID_REQUEST", "productIds must be a list of product ids", nil)
		return
	}

	if err := h.admin.SaveHandpicked(c.Request.Context(), req.ProductIDs); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Handpicked products updated successfully", gin.H{"productIds": req.ProductIDs})
}

// ToggleHandpicked flips one product's handpicked flag
func (h *Handler) ToggleHandpicked(c *gin.Context) {
	product, err := h.admin.ToggleHandpicked(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Handpicked status updated", product)
}

// CreateProduct accepts the product form as multipart data and forwards it to the catalog
func (h *Handler) CreateProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		failure(c, http.StatusBadRequest, "INVALID_REQUEST", "expected multipart form data", nil)
		return
	}

	draft, err := draftFromForm(form)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.admin.CreateProduct(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Product added successfully!", product)
}

// DeleteProduct removes a product
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.admin.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Product deleted successfully", nil)
}

// draftFromForm reads scalar fields, the "price" JSON array and the "images" files
func draftFromForm(form *multipart.Form) (*domain.NewDraft, error) {
	draft := &domain.NewDraft{Fields: make(map[string]string)}

	for key, values := range form.Value {
		if key == "price" || len(values) == 0 {
			continue
		}
		draft.Fields[key] = values[0]
	}

	if raw := form.Value["price"]; len(raw) > 0 && raw[0] != "" {
		if err := json.Unmarshal([]byte(raw[0]), &draft.Tiers); err != nil {
			return nil, fmt.Errorf("%w: price must be a JSON array of tiers", domain.ErrInvalidRequest)
		}
	}

	for _, fh := range form.File["images"] {
		img, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		draft.Images = append(draft.Images, img)
	}

	return draft, nil
}

func readUpload(fh *multipart.FileHeader) (domain.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.ImageUpload{}, fmt.Errorf("%w: cannot open %s", domain.ErrInvalidRequest, fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageUpload{}, fmt.Errorf("%w: cannot read %s", domain.ErrInvalidRequest, fh.Filename)
	}
	return domain.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
