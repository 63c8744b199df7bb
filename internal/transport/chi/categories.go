package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		resp = append(resp, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": resp})
}

// CreateCategory handles POST /categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	c, err := s.categories.Create(r.Context(), OwnerFromContext(r.Context()), req.input())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// UpdateCategory handles PATCH /categories/{id}.
func (s *Server) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	c, err := s.categories.Update(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

// DeleteCategory handles DELETE /categories/{id}.
func (s *Server) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
