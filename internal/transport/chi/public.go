package chi

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/agenda/internal/domain"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

// SearchQuery holds the query parameters shared by the listing routes.
type SearchQuery struct {
	Limit      *int
	Cursor     *string
	CategoryID *string
	Search     *string
	Lat        *float64
	Lon        *float64
	RadiusKm   *float64
	Favorite   *bool
}

// bindSearchQuery reads SearchQuery from form-style query parameters.
func bindSearchQuery(q url.Values) (SearchQuery, error) {
	var sq SearchQuery
	bindings := []struct {
		name string
		dest any
	}{
		{"limit", &sq.Limit},
		{"cursor", &sq.Cursor},
		{"category_id", &sq.CategoryID},
		{"search", &sq.Search},
		{"lat", &sq.Lat},
		{"lon", &sq.Lon},
		{"radius_km", &sq.RadiusKm},
		{"favorite", &sq.Favorite},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return SearchQuery{}, domain.NewInvalidArgument(b.name, "malformed value")
		}
	}
	return sq, nil
}

// params converts the query to search parameters; an absent limit becomes defaultLimit.
func (sq SearchQuery) params(defaultLimit int) searchuc.Params {
	p := searchuc.Params{
		Limit:    defaultLimit,
		Lat:      sq.Lat,
		Lon:      sq.Lon,
		RadiusKm: sq.RadiusKm,
	}
	if sq.Limit != nil {
		p.Limit = *sq.Limit
	}
	if sq.Cursor != nil {
		p.Cursor = *sq.Cursor
	}
	if sq.CategoryID != nil {
		p.CategoryID = *sq.CategoryID
	}
	if sq.Search != nil {
		p.Search = *sq.Search
	}
	if sq.Favorite != nil {
		p.FavoritesOnly = *sq.Favorite
	}
	return p
}

func (s *Server) searchParams(r *http.Request) (searchuc.Params, error) {
	sq, err := bindSearchQuery(r.URL.Query())
	if err != nil {
		return searchuc.Params{}, err
	}
	return sq.params(s.search.DefaultPageSize()), nil
}

// SearchPublicContacts handles GET /public/contacts.
func (s *Server) SearchPublicContacts(w http.ResponseWriter, r *http.Request) {
	p, err := s.searchParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, err := s.search.SearchPublic(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicContactPage(page))
}

// NearbyContacts handles GET /public/contacts/nearby.
func (s *Server) NearbyContacts(w http.ResponseWriter, r *http.Request) {
	p, err := s.searchParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, err := s.search.Nearby(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicContactPage(page))
}

// GetPublicContact handles GET /public/contacts/{slug}.
func (s *Server) GetPublicContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.GetPublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPublicContactResponse(c, nil))
}
