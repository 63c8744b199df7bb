package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/agenda/internal/domain"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

const photoFormField = "photo"

// ListContacts handles GET /contacts.
func (s *Server) ListContacts(w http.ResponseWriter, r *http.Request) {
	p, err := s.searchParams(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, err := s.search.ListOwned(r.Context(), OwnerFromContext(r.Context()), p)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactPage(page))
}

// CreateContact handles POST /contacts.
func (s *Server) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	c, err := s.contacts.Create(r.Context(), OwnerFromContext(r.Context()), req.input())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/contacts/"+c.ID())
	writeJSON(w, http.StatusCreated, toContactResponse(c, nil))
}

// GetContact handles GET /contacts/{id}.
func (s *Server) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.Get(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c, nil))
}

// UpdateContact handles PATCH /contacts/{id}.
func (s *Server) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var req UpdateContactRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	c, err := s.contacts.Update(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c, nil))
}

// DeleteContact handles DELETE /contacts/{id}.
func (s *Server) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadContactPhoto handles PUT /contacts/{id}/photo with a multipart "photo" file.
func (s *Server) UploadContactPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, _, err := r.FormFile(photoFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeInvalid, "photo is too large")
			return
		}
		s.handleDomainError(w, r, domain.NewInvalidArgument(photoFormField, "multipart file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	c, err := s.contacts.UploadPhoto(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"), file)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c, nil))
}

// RemoveContactPhoto handles DELETE /contacts/{id}/photo.
func (s *Server) RemoveContactPhoto(w http.ResponseWriter, r *http.Request) {
	c, err := s.contacts.RemovePhoto(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c, nil))
}

// ContactProximity handles GET /contacts/proximity?lat=&lon=.
func (s *Server) ContactProximity(w http.ResponseWriter, r *http.Request) {
	var lat, lon float64
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "lat", q, &lat); err != nil {
		s.handleDomainError(w, r, domain.NewInvalidArgument("lat", "required number"))
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "lon", q, &lon); err != nil {
		s.handleDomainError(w, r, domain.NewInvalidArgument("lon", "required number"))
		return
	}

	groups, err := s.contacts.Proximity(r.Context(), OwnerFromContext(r.Context()), lat, lon)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	center := geo.ReconstructLocation(lat, lon)
	resp := make(map[geo.ProximityBucket][]ContactResponse, len(groups))
	for bucket, contacts := range groups {
		items := make([]ContactResponse, 0, len(contacts))
		for _, c := range contacts {
			var dist *float64
			if loc, ok := c.Location(); ok {
				d := loc.DistanceTo(center)
				dist = &d
			}
			items = append(items, toContactResponse(c, dist))
		}
		resp[bucket] = items
	}
	writeJSON(w, http.StatusOK, resp)
}
