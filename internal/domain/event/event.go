// Package event defines domain events emitted after contact writes.
package event

import "time"

// Type names a domain event. It doubles as the message subject suffix.
type Type string

// Contact lifecycle events.
const (
	ContactCreated Type = "contact.created"
	ContactUpdated Type = "contact.updated"
	ContactDeleted Type = "contact.deleted"
)

// Event is a contact lifecycle notification.
type Event struct {
	ID         string    `json:"event_id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ContactID  string    `json:"contact_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Public     bool      `json:"is_public"`
}
