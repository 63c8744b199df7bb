package contact

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/agenda/internal/domain"
	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

// DefaultCountry is assumed when an address omits the country.
const DefaultCountry = "Brasil"

// AddressParams holds raw address input.
type AddressParams struct {
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	ZipCode      string
	Country      string
	Location     *geo.Location
}

// Address is a postal address with optional coordinates.
type Address struct {
	street       string
	number       string
	complement   string
	neighborhood string
	city         string
	state        string
	zipCode      string
	country      string
	location     *geo.Location
}

// NewAddress trims, normalizes and validates an address.
// Brazilian zip codes must have exactly eight digits.
func NewAddress(p AddressParams) (Address, error) {
	a := Address{
		street:       strings.TrimSpace(p.Street),
		number:       strings.TrimSpace(p.Number),
		complement:   strings.TrimSpace(p.Complement),
		neighborhood: strings.TrimSpace(p.Neighborhood),
		city:         strings.TrimSpace(p.City),
		state:        strings.TrimSpace(p.State),
		zipCode:      digitsOnly(p.ZipCode),
		country:      strings.TrimSpace(p.Country),
		location:     p.Location,
	}
	if a.country == "" {
		a.country = DefaultCountry
	}

	required := []struct{ name, value string }{
		{"street", a.street},
		{"number", a.number},
		{"city", a.city},
		{"state", a.state},
		{"zip code", a.zipCode},
	}
	for _, r := range required {
		if r.value == "" {
			return Address{}, fmt.Errorf("address %s is required: %w", r.name, domain.ErrInvalidArgument)
		}
	}
	if a.country == DefaultCountry && len(a.zipCode) != 8 {
		return Address{}, fmt.Errorf("brazilian zip code must have 8 digits: %w", domain.ErrInvalidArgument)
	}
	return a, nil
}

// ReconstructAddress hydrates an address without validation.
func ReconstructAddress(p AddressParams) Address {
	return Address{
		street: p.Street, number: p.Number, complement: p.Complement,
		neighborhood: p.Neighborhood, city: p.City, state: p.State,
		zipCode: p.ZipCode, country: p.Country, location: p.Location,
	}
}

// Params returns the address as raw values.
func (a Address) Params() AddressParams {
	return AddressParams{
		Street: a.street, Number: a.number, Complement: a.complement,
		Neighborhood: a.neighborhood, City: a.city, State: a.state,
		ZipCode: a.zipCode, Country: a.country, Location: a.location,
	}
}

// Location returns the address coordinates, nil when unknown.
func (a Address) Location() *geo.Location { return a.location }

// FormattedZipCode renders Brazilian zip codes as 00000-000.
func (a Address) FormattedZipCode() string {
	if a.country == DefaultCountry && len(a.zipCode) == 8 {
		return a.zipCode[:5] + "-" + a.zipCode[5:]
	}
	return a.zipCode
}

// String returns the full single-line address.
func (a Address) String() string {
	parts := []string{a.street + ", " + a.number}
	if a.complement != "" {
		parts = append(parts, a.complement)
	}
	if a.neighborhood != "" {
		parts = append(parts, a.neighborhood)
	}
	parts = append(parts, a.city+" - "+a.state, a.FormattedZipCode(), a.country)
	return strings.Join(parts, ", ")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
