package contact

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/agenda/internal/domain"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
)

// Slug collision strategy: numbered suffixes first, then random ones.
const (
	maxNumberedSuffix = 99
	randomSlugTries   = 5
	randomSuffixLen   = 6
)

// UniqueSlug returns base, or base with a suffix, such that no contact other
// than excludeID holds it. Tries base, base-2 .. base-99, then base-<random>.
func (s *Service) UniqueSlug(ctx context.Context, base, excludeID string) (string, error) {
	candidates := []string{base}
	for n := 2; n <= maxNumberedSuffix; n++ {
		candidates = append(candidates, withSuffix(base, strconv.Itoa(n)))
	}
	for _, c := range candidates {
		taken, err := s.repo.ExistsSlug(ctx, c, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %s: %w", c, err)
		}
		if !taken {
			return c, nil
		}
	}

	for range randomSlugTries {
		c := withSuffix(base, s.randomSuffix())
		taken, err := s.repo.ExistsSlug(ctx, c, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %s: %w", c, err)
		}
		if !taken {
			return c, nil
		}
	}
	return "", fmt.Errorf("slug %s: %w", base, domain.ErrAlreadyExists)
}

// withSuffix appends -suffix, trimming base so the result fits the slug limit.
func withSuffix(base, suffix string) string {
	if room := domcontact.MaxSlugLength - len(suffix) - 1; len(base) > room {
		base = strings.TrimRight(base[:room], "-")
	}
	return base + "-" + suffix
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSuffixLen]
}
