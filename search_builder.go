package agenda

import (
	"context"
)

// SearchBuilder is a fluent builder for public contact searches.
//
//	res, err := client.Search().Near(-23.55, -46.63).Km(5).Limit(20).Do(ctx)
type SearchBuilder struct {
	client *Client
	params SearchParams
	nearby bool
}

// Search starts a public contact search.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Category restricts results to one category.
func (b *SearchBuilder) Category(id string) *SearchBuilder {
	b.params.CategoryID = id
	return b
}

// Query matches contacts by a normalized keyword: full name, a name token,
// slug, e-mail, phone or category.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.params.Search = q
	return b
}

// Near sets the center point for a radius search.
func (b *SearchBuilder) Near(lat, lon float64) *SearchBuilder {
	b.params.Lat = &lat
	b.params.Lon = &lon
	return b
}

// Km sets the search radius in kilometers.
func (b *SearchBuilder) Km(radius float64) *SearchBuilder {
	b.params.RadiusKm = &radius
	return b
}

// ByDistance orders each page by distance instead of creation time.
// It requires Near and Km.
func (b *SearchBuilder) ByDistance() *SearchBuilder {
	b.nearby = true
	return b
}

// After resumes from the NextCursor of a previous page.
func (b *SearchBuilder) After(cursor string) *SearchBuilder {
	b.params.Cursor = cursor
	return b
}

// Limit sets the page size. Without it the client's default page size applies.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.params.Limit = n
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) (SearchResult, error) {
	p := b.params
	if p.Limit == 0 {
		p.Limit = b.client.search.DefaultPageSize()
	}
	if b.nearby {
		return b.client.NearbyContacts(ctx, p)
	}
	return b.client.SearchPublicContacts(ctx, p)
}
