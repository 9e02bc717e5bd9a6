package tank

import (
	"context"

	"fueldesk/internal/core/id"
	"fueldesk/internal/domain"
)

// Repository defines the interface for Tank persistence.
type Repository interface {
	domain.CatalogRepository[*Tank]

	// GetForUpdate retrieves a tank with a row lock. Used by the closing
	// engine as the chain anchor for tanks that have no closed periods yet.
	GetForUpdate(ctx context.Context, id id.ID) (*Tank, error)

	// ListByStore returns active tanks of a store joined with their product
	// category, ordered by code.
	ListByStore(ctx context.Context, storeID id.ID) ([]StoreTank, error)
}
