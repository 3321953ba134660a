package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/metrics"
)

// DefaultBaseURL is the catalog API address used when none is configured
const DefaultBaseURL = "http://localhost:5000"

// Config holds the catalog client settings
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// MaxAttempts bounds attempts for idempotent reads. 1 disables retries.
	MaxAttempts int
}

// Client handles communication with the remote catalog API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	debug       bool
}

// NewClient creates a new catalog API client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxAttempts: cfg.MaxAttempts,
	}
}

// SetDebug toggles logging of every request and response status
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// BaseURL returns the catalog API address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// exponentialBackoff returns the wait before the given retry attempt: 500ms, 1s, 2s, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// doRequest executes a single HTTP request and returns the status and body
func (c *Client) doRequest(ctx context.Context, op, method, reqURL string, body io.Reader, contentType string) (int, []byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Loomhouse-Storefront/1.0")
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveCatalogRequest(op, "error", time.Since(start))
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	metrics.ObserveCatalogRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %v", domain.ErrCatalogAPIFailure, err)
	}

	if c.debug {
		log.Debug().Str("op", op).Str("method", method).Str("url", reqURL).
			Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("catalog request")
	}

	return resp.StatusCode, respBody, nil
}

// get performs a GET with bounded retries on transport errors and 5xx responses
func (c *Client) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ctx.Err(), lastErr)
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		status, body, err := c.doRequest(ctx, op, http.MethodGet, reqURL, nil, "")
		if err != nil {
			log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("catalog request error")
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}

		if status >= http.StatusInternalServerError {
			lastErr = newAPIError(status, body)
			log.Warn().Str("op", op).Int("attempt", attempt).Int("status", status).Msg("catalog API error")
			continue
		}
		if status != http.StatusOK {
			return nil, newAPIError(status, body)
		}

		return body, nil
	}

	return nil, lastErr
}

// send performs a single non-idempotent request; writes are never retried
func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	status, respBody, err := c.doRequest(ctx, op, method, c.baseURL+path, body, contentType)
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("catalog request error")
		return nil, err
	}
	if status < 200 || status >= 300 {
		apiErr := newAPIError(status, respBody)
		log.Error().Err(apiErr).Str("op", op).Msg("catalog API rejected request")
		return nil, apiErr
	}
	return respBody, nil
}

// newAPIError extracts the server message from an error body when there is one
func newAPIError(status int, body []byte) *domain.APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	apiErr := &domain.APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

// ListProducts fetches one page of the paginated listing
func (c *Client) ListProducts(ctx context.Context, page, limit int) (*domain.Feed, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "list_products", "/api/products", params)
	if err != nil {
		return nil, err
	}
	return DecodeFeed(body)
}

// AllProducts fetches the unpaginated listing used by the home page
func (c *Client) AllProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "all_products", "/api/products/all", nil)
	if err != nil {
		return nil, err
	}
	return DecodeProducts(body)
}

// LatestProducts fetches the most recently added products
func (c *Client) LatestProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "latest_products", "/api/products/latest", nil)
	if err != nil {
		return nil, err
	}
	return DecodeProducts(body)
}

// HandpickedProducts fetches the curated subset
func (c *Client) HandpickedProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "handpicked_products", "/api/products/handpicked", nil)
	if err != nil {
		return nil, err
	}
	return DecodeProducts(body)
}

// Search runs a free-text search. The query is sent as typed.
func (c *Client) Search(ctx context.Context, query string) (*domain.Feed, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := c.get(ctx, "search", "/api/products/search", params)
	if err != nil {
		return nil, err
	}
	return DecodeFeed(body)
}

// SearchSuggestions fetches the lightweight suggestion list for a partial query
func (c *Client) SearchSuggestions(ctx context.Context, query string) ([]domain.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := c.get(ctx, "search_suggestions", "/api/products/search-suggestions", params)
	if err != nil {
		return nil, err
	}
	return DecodeSuggestions(body)
}

// ProductsByCategory fetches the single-category listing
func (c *Client) ProductsByCategory(ctx context.Context, category string) (*domain.Feed, error) {
	body, err := c.get(ctx, "products_by_category", "/api/products/category/"+url.PathEscape(category), nil)
	if err != nil {
		return nil, err
	}
	return DecodeFeed(body)
}

// FilterByCategory uses the alternate query-string category filter
func (c *Client) FilterByCategory(ctx context.Context, category string) (*domain.Feed, error) {
	params := url.Values{}
	params.Set("category", category)

	body, err := c.get(ctx, "filter_by_category", "/api/products/filter", params)
	if err != nil {
		return nil, err
	}
	return DecodeFeed(body)
}

// GetProduct retrieves a single product by id
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.get(ctx, "get_product", "/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		if domain.StatusOf(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
		}
		return nil, err
	}
	return DecodeProduct(body)
}

// CreateProduct submits a product draft as multipart form data
func (c *Client) CreateProduct(ctx context.Context, draft *domain.NewDraft) (*domain.Product, error) {
	form, contentType, err := EncodeDraft(draft)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, "create_product", http.MethodPost, "/api/products", form, contentType)
	if err != nil {
		return nil, err
	}
	return DecodeProduct(body)
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.send(ctx, "delete_product", http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, "")
	if domain.StatusOf(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %v", domain.ErrProductNotFound, err)
	}
	return err
}

// ToggleHandpicked flips the curation flag of one product
func (c *Client) ToggleHandpicked(ctx context.Context, id string) (*domain.Product, error) {
	body, err := c.send(ctx, "toggle_handpicked", http.MethodPatch,
		"/api/products/"+url.PathEscape(id)+"/toggle-handpicked", nil, "")
	if err != nil {
		if domain.StatusOf(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %v", domain.ErrProductNotFound, err)
		}
		return nil, err
	}
	return DecodeProduct(body)
}

// SetHandpicked replaces the curated set with ids
func (c *Client) SetHandpicked(ctx context.Context, ids []string) error {
	payload, err := json.Marshal(struct {
		ProductIDs []string `json:"productIds"`
	}{ProductIDs: ids})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	_, err = c.send(ctx, "set_handpicked", http.MethodPost, "/api/products/set-handpicked",
		bytes.NewReader(payload), "application/json")
	return err
}

// AdminProducts fetches the listing including handpicked status
func (c *Client) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.get(ctx, "admin_products", "/api/admin/products", nil)
	if err != nil {
		return nil, err
	}
	return DecodeProducts(body)
}
