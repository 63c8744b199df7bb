package category

import (
	"fmt"

	domcat "github.com/kailas-cloud/agenda/internal/domain/category"
	domcontact "github.com/kailas-cloud/agenda/internal/domain/contact"
)

// categoryToHash converts a domain Category to a map for HSET.
func categoryToHash(c *domcat.Category) map[string]string {
	return map[string]string{
		"id":          c.ID(),
		"userId":      c.OwnerID(),
		"name":        c.Name(),
		"slug":        c.Slug(),
		"description": c.Description(),
		"color":       c.Color(),
		"createdAt":   domcontact.FormatTime(c.CreatedAt()),
		"updatedAt":   domcontact.FormatTime(c.UpdatedAt()),
	}
}

// categoryFromHash hydrates a domain Category from an HGETALL result map.
func categoryFromHash(m map[string]string) (domcat.Category, error) {
	createdAt, err := domcontact.ParseTime(m["createdAt"])
	if err != nil {
		return domcat.Category{}, fmt.Errorf("invalid createdAt: %w", err)
	}
	updatedAt, err := domcontact.ParseTime(m["updatedAt"])
	if err != nil {
		return domcat.Category{}, fmt.Errorf("invalid updatedAt: %w", err)
	}
	return domcat.Reconstruct(
		m["id"], m["userId"], m["name"], m["slug"], m["description"], m["color"],
		createdAt, updatedAt,
	), nil
}
