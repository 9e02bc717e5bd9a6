// Package audit defines the business audit trail contract. Closing and
// configuration mutations record who did what and when; the storage layer
// decides how entries are persisted.
package audit

import (
	"context"
	"time"

	"fueldesk/internal/core/id"
)

// Actions recorded by the domain services.
const (
	ActionClosingExecuted = "closing.executed"
	ActionClosingDeleted  = "closing.deleted"
	ActionConfigCreated   = "lossrate.created"
	ActionConfigUpdated   = "lossrate.updated"
	ActionConfigDeleted   = "lossrate.deleted"
)

// Entry is one audit record. Payload holds the action-specific snapshot and
// is serialized by the store.
type Entry struct {
	ID         id.ID     `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Payload    any       `json:"payload,omitempty"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(actor, action, entityType, entityID string, payload any) Entry {
	return Entry{
		ID:         id.New(),
		OccurredAt: time.Now().UTC(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
	}
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries. Used in tests and when auditing is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
