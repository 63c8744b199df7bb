package contact

import domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"

// CreateInput is the data for a new contact. An empty Slug on a public
// contact is derived from the name and id.
type CreateInput struct {
	Name       string
	Email      string
	Phone      string
	Address    *domcontact.AddressParams
	Lat        *float64
	Lon        *float64
	CategoryID string
	Notes      string
	Favorite   bool
	Public     bool
	Slug       string
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *domcontact.AddressParams
	ClearAddress  bool
	Lat           *float64
	Lon           *float64
	ClearLocation bool
	CategoryID    *string // empty string unassigns
	Notes         *string
	Favorite      *bool
	Public        *bool
	Slug          *string
}
