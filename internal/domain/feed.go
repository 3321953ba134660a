package domain

import (
	"strconv"
	"strings"
)

// Feed page sizes used against the paginated listing endpoint
const (
	FeedPageSize        = 18
	MultiFilterPageSize = 100
)

// Pagination mirrors the pagination object embedded in catalog listing responses
type Pagination struct {
	CurrentPage   int  `json:"currentPage"`
	TotalPages    int  `json:"totalPages"`
	TotalProducts int  `json:"totalProducts"`
	HasNext       bool `json:"hasNext"`
	HasPrev       bool `json:"hasPrev"`
}

// SinglePage is the pagination synthesized for unpaginated results
func SinglePage(total int) Pagination {
	return Pagination{CurrentPage: 1, TotalPages: 1, TotalProducts: total}
}

// FeedQuery is the tuple (search text, category filters, page) that selects a catalog view
type FeedQuery struct {
	Search  string
	Filters []string
	Page    int
}

// ParseFeedQuery builds a FeedQuery from the raw search, filter and page query parameters.
// Filters are comma separated; blanks are dropped and duplicates keep their first position.
func ParseFeedQuery(search, filter, page string) FeedQuery {
	q := FeedQuery{Search: search, Page: 1}

	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		q.Page = n
	}

	seen := make(map[string]bool)
	for _, f := range strings.Split(filter, ",") {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		q.Filters = append(q.Filters, f)
	}

	return q
}

// HasSearch reports whether the query carries search text
func (q FeedQuery) HasSearch() bool {
	return strings.TrimSpace(q.Search) != ""
}

// Feed is the resolved product list for a FeedQuery
type Feed struct {
	Items      []Product  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Suggestion is one entry of the search-suggestions endpoint
type Suggestion struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}
