package domain

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortRelevance, SortTitleAsc, SortTitleDesc, SortPriceAsc, SortPriceDesc, SortNewest}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// SearchQuery holds all parameters for a faceted document query. Facets maps a
// facet field name (static or dynamic) to the required value; for the
// multi-valued category facet a document matches when any of its values equals
// the filter.
type SearchQuery struct {
	Query   string            `json:"query"`
	Facets  map[string]string `json:"facets,omitempty"`
	SortBy  string            `json:"sort_by"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// SearchResult holds a paginated page of documents plus per-facet value counts
// computed over the full (unpaginated) match set.
type SearchResult struct {
	Documents   []ProductDocument         `json:"documents"`
	Total       int                       `json:"total"`
	Page        int                       `json:"page"`
	PerPage     int                       `json:"per_page"`
	FacetCounts map[string]map[string]int `json:"facet_counts,omitempty"`
	TookMs      int64                     `json:"took_ms"`
}
