package contact

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/agenda/internal/domain/geo"
)

// Persisted field names. Stores index the search fields under these names.
const (
	FieldOwnerID    = "userId"
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldCategoryID = "categoryId"
	FieldSlug       = "slug"
	FieldLatitude   = "latitude"
	FieldLongitude  = "longitude"
	FieldNotes      = "notes"
	FieldFavorite   = "isFavorite"
	FieldPublic     = "isPublic"
	FieldPhotoURL   = "photoUrl"
	FieldKeywords   = "searchKeywords"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"

	addressPrefix = "address."
)

var addressFields = []string{
	"street", "number", "complement", "neighborhood", "city", "state", "zipCode", "country",
	"latitude", "longitude",
}

// ToFields encodes c into the flat persisted record. Optional values that are
// unset are omitted. Timestamps are unix microseconds.
func ToFields(c *Contact) map[string]string {
	m := map[string]string{
		FieldOwnerID:   c.ownerID,
		FieldName:      c.name,
		FieldEmail:     c.email,
		FieldNotes:     c.notes,
		FieldFavorite:  strconv.FormatBool(c.favorite),
		FieldPublic:    strconv.FormatBool(c.public),
		FieldKeywords:  strings.Join(Keywords(c), KeywordSeparator),
		FieldCreatedAt: FormatTime(c.createdAt),
		FieldUpdatedAt: FormatTime(c.updatedAt),
	}
	setIf(m, FieldPhone, c.phone)
	setIf(m, FieldCategoryID, c.categoryID)
	setIf(m, FieldSlug, c.slug)
	setIf(m, FieldPhotoURL, c.photoURL)

	if c.location != nil {
		m[FieldLatitude] = formatFloat(c.location.Latitude())
		m[FieldLongitude] = formatFloat(c.location.Longitude())
	}
	if c.address != nil {
		p := c.address.Params()
		vals := []string{p.Street, p.Number, p.Complement, p.Neighborhood, p.City, p.State, p.ZipCode, p.Country}
		for i, v := range vals {
			setIf(m, addressPrefix+addressFields[i], v)
		}
		if p.Location != nil {
			m[addressPrefix+"latitude"] = formatFloat(p.Location.Latitude())
			m[addressPrefix+"longitude"] = formatFloat(p.Location.Longitude())
		}
	}
	return m
}

// FromFields decodes a persisted record.
func FromFields(id string, m map[string]string) (Contact, error) {
	createdAt, err := ParseTime(m[FieldCreatedAt])
	if err != nil {
		return Contact{}, fmt.Errorf("contact %s: %s: %w", id, FieldCreatedAt, err)
	}
	updatedAt, err := ParseTime(m[FieldUpdatedAt])
	if err != nil {
		return Contact{}, fmt.Errorf("contact %s: %s: %w", id, FieldUpdatedAt, err)
	}
	loc, _, err := LocationFromFields(m)
	if err != nil {
		return Contact{}, fmt.Errorf("contact %s: %w", id, err)
	}
	addr, err := addressFromFields(m)
	if err != nil {
		return Contact{}, fmt.Errorf("contact %s: %w", id, err)
	}

	return Reconstruct(State{
		ID:         id,
		OwnerID:    m[FieldOwnerID],
		Name:       m[FieldName],
		Email:      m[FieldEmail],
		Phone:      m[FieldPhone],
		Address:    addr,
		CategoryID: m[FieldCategoryID],
		Slug:       m[FieldSlug],
		Location:   loc,
		Notes:      m[FieldNotes],
		Favorite:   m[FieldFavorite] == "true",
		Public:     m[FieldPublic] == "true",
		PhotoURL:   m[FieldPhotoURL],
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}), nil
}

// LocationFromFields decodes only the coordinates of a record.
// Returns ok=false when the record has no location.
func LocationFromFields(m map[string]string) (*geo.Location, bool, error) {
	return parseLocation(m, FieldLatitude, FieldLongitude)
}

// KeywordsFromFields splits the encoded keyword list.
func KeywordsFromFields(m map[string]string) []string {
	raw := m[FieldKeywords]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, KeywordSeparator)
}

// FormatTime encodes t as unix microseconds.
func FormatTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

// ParseTime decodes unix microseconds. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	us, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return time.UnixMicro(us).UTC(), nil
}

func parseLocation(m map[string]string, latKey, lonKey string) (*geo.Location, bool, error) {
	latStr, hasLat := m[latKey]
	lonStr, hasLon := m[lonKey]
	if !hasLat || !hasLon || latStr == "" || lonStr == "" {
		return nil, false, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", latKey, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", lonKey, err)
	}
	l := geo.ReconstructLocation(lat, lon)
	return &l, true, nil
}

func addressFromFields(m map[string]string) (*Address, error) {
	get := func(k string) string { return m[addressPrefix+k] }
	if get("street") == "" && get("city") == "" {
		return nil, nil
	}
	loc, _, err := parseLocation(m, addressPrefix+"latitude", addressPrefix+"longitude")
	if err != nil {
		return nil, err
	}
	a := ReconstructAddress(AddressParams{
		Street: get("street"), Number: get("number"), Complement: get("complement"),
		Neighborhood: get("neighborhood"), City: get("city"), State: get("state"),
		ZipCode: get("zipCode"), Country: get("country"), Location: loc,
	})
	return &a, nil
}

func setIf(m map[string]string, k, v string) {
	if v != "" {
		m[k] = v
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
