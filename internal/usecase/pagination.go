package usecase

// MaxVisiblePages is the width of the page-number strip under a feed
const MaxVisiblePages = 5

// PageNumbers returns the page numbers to render for a pagination control:
// up to MaxVisiblePages pages centred on current, shifted to stay inside [1, total].
// Nothing is rendered for a single page.
func PageNumbers(current, total int) []int {
	if total <= 1 {
		return []int{}
	}

	start := max(1, current-MaxVisiblePages/2)
	end := min(total, start+MaxVisiblePages-1)
	if end-start+1 < MaxVisiblePages {
		start = max(1, end-MaxVisiblePages+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
