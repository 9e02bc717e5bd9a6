package closing

import (
	"context"

	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
)

// Repository defines the interface for closing period persistence.
type Repository interface {
	// Latest returns the chronologically last period of a tank, or nil when
	// the tank has no closed periods.
	Latest(ctx context.Context, tankID id.ID) (*Period, error)

	// LatestForUpdate is Latest with a FOR UPDATE row lock. Called inside the
	// execute transaction so concurrent closings of the same tank serialize
	// on its chain head.
	LatestForUpdate(ctx context.Context, tankID id.ID) (*Period, error)

	// InsertBatch persists the rows of one closing batch.
	InsertBatch(ctx context.Context, periods []Period) error

	// GetByID retrieves a period by ID.
	GetByID(ctx context.Context, periodID id.ID) (*Period, error)

	// ListBatch returns the rows closed together as (store, from, to),
	// ordered by tank.
	ListBatch(ctx context.Context, storeID id.ID, from, to types.Date) ([]Period, error)

	// ListIntersecting returns a store's periods that overlap [from, to],
	// ordered by tank then period_from. The range report reads closed slices
	// through this.
	ListIntersecting(ctx context.Context, storeID id.ID, from, to types.Date) ([]Period, error)

	// ExistsAfter reports whether the tank has any period starting after the
	// given day. Guards terminal-only deletion.
	ExistsAfter(ctx context.Context, tankID id.ID, day types.Date) (bool, error)

	// DeleteBatch removes the rows of one closing batch and returns how many
	// rows went away.
	DeleteBatch(ctx context.Context, storeID id.ID, from, to types.Date) (int64, error)

	// ConfigReferenced reports whether any period references the loss-rate
	// config. Implements lossrate.ReferenceChecker.
	ConfigReferenced(ctx context.Context, configID id.ID) (bool, error)
}
