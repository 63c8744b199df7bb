package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/agenda/internal/domain"
)

// MaxSlugLength is the maximum slug length in bytes.
const MaxSlugLength = 100

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts free text into URL-safe form.
// "São Paulo Café" -> "sao-paulo-cafe".
func Slugify(s string) string {
	// Decompose accents, then drop everything outside ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// NewSlug slugifies s and validates the result.
func NewSlug(s string) (string, error) {
	slug := Slugify(s)
	if err := ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}

// ValidateSlug checks an already normalized slug.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is empty: %w", domain.ErrInvalidArgument)
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug too long (max %d): %w", MaxSlugLength, domain.ErrInvalidArgument)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q has invalid format: %w", slug, domain.ErrInvalidArgument)
	}
	return nil
}

// DefaultSlug builds the slug assigned to a public contact created without one:
// the slugified name followed by the last six characters of its id.
func DefaultSlug(name, id string) (string, error) {
	suffix := Slugify(id)
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	base := Slugify(name)
	if room := MaxSlugLength - len(suffix) - 1; len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return NewSlug(strings.Trim(base+"-"+suffix, "-"))
}
