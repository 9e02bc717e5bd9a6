package ledger

import (
	"context"

	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
)

// Repository defines the interface for movement ledger persistence.
type Repository interface {
	// Create appends a movement row.
	Create(ctx context.Context, m *Movement) error

	// GetByID retrieves a movement by ID.
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)

	// List retrieves movements with filtering, newest first.
	List(ctx context.Context, filter ListFilter) ([]Movement, int64, error)

	// SumRange aggregates import/export quantities of a tank over
	// [from, to], both bounds inclusive.
	SumRange(ctx context.Context, tankID id.ID, from, to types.Date) (Totals, error)
}
