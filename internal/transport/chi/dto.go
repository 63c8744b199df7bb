package chi

import (
	"time"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
	categoryuc "github.com/kailas-cloud/agenda/internal/usecase/category"
	contactuc "github.com/kailas-cloud/agenda/internal/usecase/contact"
	healthuc "github.com/kailas-cloud/agenda/internal/usecase/health"
	searchuc "github.com/kailas-cloud/agenda/internal/usecase/search"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// LocationDTO is a WGS84 coordinate pair.
type LocationDTO struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// AddressDTO is a postal address.
type AddressDTO struct {
	Street       string       `json:"street,omitempty" validate:"max=200"`
	Number       string       `json:"number,omitempty" validate:"max=20"`
	Complement   string       `json:"complement,omitempty" validate:"max=100"`
	Neighborhood string       `json:"neighborhood,omitempty" validate:"max=100"`
	City         string       `json:"city,omitempty" validate:"max=100"`
	State        string       `json:"state,omitempty" validate:"max=100"`
	ZipCode      string       `json:"zip_code,omitempty" validate:"max=20"`
	Country      string       `json:"country,omitempty" validate:"max=100"`
	Location     *LocationDTO `json:"location,omitempty"`
}

func (a *AddressDTO) params() *domcontact.AddressParams {
	if a == nil {
		return nil
	}
	p := &domcontact.AddressParams{
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		ZipCode:      a.ZipCode,
		Country:      a.Country,
	}
	if a.Location != nil {
		loc := geo.ReconstructLocation(*a.Location.Lat, *a.Location.Lon)
		p.Location = &loc
	}
	return p
}

// CreateContactRequest is the body of POST /contacts.
type CreateContactRequest struct {
	Name       string       `json:"name" validate:"required,max=200"`
	Email      string       `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone      string       `json:"phone,omitempty" validate:"max=30"`
	Address    *AddressDTO  `json:"address,omitempty"`
	Location   *LocationDTO `json:"location,omitempty"`
	CategoryID string       `json:"category_id,omitempty" validate:"max=64"`
	Notes      string       `json:"notes,omitempty" validate:"max=5000"`
	Favorite   bool         `json:"favorite,omitempty"`
	Public     bool         `json:"public,omitempty"`
	Slug       string       `json:"slug,omitempty" validate:"max=100"`
}

func (req *CreateContactRequest) input() contactuc.CreateInput {
	in := contactuc.CreateInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address.params(),
		CategoryID: req.CategoryID,
		Notes:      req.Notes,
		Favorite:   req.Favorite,
		Public:     req.Public,
		Slug:       req.Slug,
	}
	if req.Location != nil {
		in.Lat, in.Lon = req.Location.Lat, req.Location.Lon
	}
	return in
}

// UpdateContactRequest is the body of PATCH /contacts/{id}. Absent fields are left unchanged.
type UpdateContactRequest struct {
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email         *string      `json:"email,omitempty" validate:"omitempty,max=255"`
	Phone         *string      `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address       *AddressDTO  `json:"address,omitempty"`
	ClearAddress  bool         `json:"clear_address,omitempty"`
	Location      *LocationDTO `json:"location,omitempty"`
	ClearLocation bool         `json:"clear_location,omitempty"`
	CategoryID    *string      `json:"category_id,omitempty" validate:"omitempty,max=64"`
	Notes         *string      `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Favorite      *bool        `json:"favorite,omitempty"`
	Public        *bool        `json:"public,omitempty"`
	Slug          *string      `json:"slug,omitempty" validate:"omitempty,max=100"`
}

func (req *UpdateContactRequest) input() contactuc.UpdateInput {
	in := contactuc.UpdateInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address.params(),
		ClearAddress:  req.ClearAddress,
		ClearLocation: req.ClearLocation,
		CategoryID:    req.CategoryID,
		Notes:         req.Notes,
		Favorite:      req.Favorite,
		Public:        req.Public,
		Slug:          req.Slug,
	}
	if req.Location != nil {
		in.Lat, in.Lon = req.Location.Lat, req.Location.Lon
	}
	return in
}

// ContactResponse is a contact as seen by its owner.
type ContactResponse struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Address    *AddressDTO  `json:"address,omitempty"`
	Location   *LocationDTO `json:"location,omitempty"`
	CategoryID string       `json:"category_id,omitempty"`
	Slug       string       `json:"slug,omitempty"`
	Notes      string       `json:"notes,omitempty"`
	Favorite   bool         `json:"favorite"`
	Public     bool         `json:"public"`
	PhotoURL   string       `json:"photo_url,omitempty"`
	DistanceKm *float64     `json:"distance_km,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// PublicContactResponse is a contact as listed in the public directory.
type PublicContactResponse struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Phone      string       `json:"phone,omitempty"`
	Address    *AddressDTO  `json:"address,omitempty"`
	Location   *LocationDTO `json:"location,omitempty"`
	CategoryID string       `json:"category_id,omitempty"`
	Slug       string       `json:"slug"`
	PhotoURL   string       `json:"photo_url,omitempty"`
	DistanceKm *float64     `json:"distance_km,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ContactPage is one page of owner contacts.
type ContactPage struct {
	Contacts   []ContactResponse `json:"contacts"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// PublicContactPage is one page of public contacts.
type PublicContactPage struct {
	Contacts   []PublicContactResponse `json:"contacts"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// CategoryRequest is the body of POST /categories.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug,omitempty" validate:"max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (req *CategoryRequest) input() categoryuc.CreateInput {
	return categoryuc.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
	}
}

// UpdateCategoryRequest is the body of PATCH /categories/{id}.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (req *UpdateCategoryRequest) input() categoryuc.UpdateInput {
	return categoryuc.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
}

// CategoryResponse is a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLocationDTO(loc geo.Location) *LocationDTO {
	lat, lon := loc.Latitude(), loc.Longitude()
	return &LocationDTO{Lat: &lat, Lon: &lon}
}

func toAddressDTO(a *domcontact.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	p := a.Params()
	dto := &AddressDTO{
		Street:       p.Street,
		Number:       p.Number,
		Complement:   p.Complement,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
		ZipCode:      p.ZipCode,
		Country:      p.Country,
	}
	if p.Location != nil {
		dto.Location = toLocationDTO(*p.Location)
	}
	return dto
}

func toContactResponse(c domcontact.Contact, distanceKm *float64) ContactResponse {
	resp := ContactResponse{
		ID:         c.ID(),
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Address:    toAddressDTO(c.Address()),
		CategoryID: c.CategoryID(),
		Slug:       c.Slug(),
		Notes:      c.Notes(),
		Favorite:   c.IsFavorite(),
		Public:     c.IsPublic(),
		PhotoURL:   c.PhotoURL(),
		DistanceKm: distanceKm,
		CreatedAt:  c.CreatedAt(),
		UpdatedAt:  c.UpdatedAt(),
	}
	if loc, ok := c.Location(); ok {
		resp.Location = toLocationDTO(loc)
	}
	return resp
}

func toPublicContactResponse(c domcontact.Contact, distanceKm *float64) PublicContactResponse {
	resp := PublicContactResponse{
		ID:         c.ID(),
		Name:       c.Name(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Address:    toAddressDTO(c.Address()),
		CategoryID: c.CategoryID(),
		Slug:       c.Slug(),
		PhotoURL:   c.PhotoURL(),
		DistanceKm: distanceKm,
		CreatedAt:  c.CreatedAt(),
	}
	if loc, ok := c.Location(); ok {
		resp.Location = toLocationDTO(loc)
	}
	return resp
}

func toContactPage(p searchuc.Page) ContactPage {
	out := ContactPage{Contacts: make([]ContactResponse, 0, len(p.Contacts)), NextCursor: p.NextCursor}
	for _, h := range p.Contacts {
		out.Contacts = append(out.Contacts, toContactResponse(h.Contact, h.DistanceKm))
	}
	return out
}

func toPublicContactPage(p searchuc.Page) PublicContactPage {
	out := PublicContactPage{Contacts: make([]PublicContactResponse, 0, len(p.Contacts)), NextCursor: p.NextCursor}
	for _, h := range p.Contacts {
		out.Contacts = append(out.Contacts, toPublicContactResponse(h.Contact, h.DistanceKm))
	}
	return out
}

func toCategoryResponse(c domcat.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID(),
		Name:        c.Name(),
		Slug:        c.Slug(),
		Description: c.Description(),
		Color:       c.Color(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}
