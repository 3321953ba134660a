package catalog

import (
	"regexp"
	"strings"

	"github.com/loomhouse/storefront/internal/domain"
)

var uploadsPrefixRegex = regexp.MustCompile(`^/?uploads/`)

// ResolveImageURL turns a stored image reference into a URL the browser can load.
// Absolute URLs pass through; anything else is served from the catalog's /uploads/ directory.
func ResolveImageURL(baseURL, imagePath string) string {
	if imagePath == "" {
		return ""
	}
	if strings.HasPrefix(imagePath, "http") {
		return imagePath
	}
	cleanPath := uploadsPrefixRegex.ReplaceAllString(imagePath, "")
	return strings.TrimRight(baseURL, "/") + "/uploads/" + cleanPath
}

// ResolveImageURLs resolves every image of a product, preserving order
func ResolveImageURLs(baseURL string, images []string) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if u := ResolveImageURL(baseURL, img); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// NewView prepares a product for display
func NewView(baseURL string, p domain.Product) domain.ProductView {
	view := domain.ProductView{
		Product:   p,
		ImageURLs: ResolveImageURLs(baseURL, p.Images),
		MinOrder:  p.EffectiveMinOrder(),
	}
	if price, ok := domain.StartingPrice(p.Price); ok {
		view.StartingPrice = &price
	}
	return view
}

// NewViews prepares a list of products for display
func NewViews(baseURL string, products []domain.Product) []domain.ProductView {
	views := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewView(baseURL, p))
	}
	return views
}
