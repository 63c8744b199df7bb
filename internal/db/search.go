package db

import "github.com/kailas-cloud/agenda/internal/domain/search/filter"

// SearchQuery is the input for a filtered listing.
// Filters are a pre-filter; an empty expression matches every document.
type SearchQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       string
	SortDesc     bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
