package lossrate

import (
	"context"

	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

// Repository defines the interface for loss rate config persistence.
type Repository interface {
	// Create inserts a config row.
	Create(ctx context.Context, c *Config) error

	// GetByID retrieves a config by ID.
	GetByID(ctx context.Context, configID id.ID) (*Config, error)

	// Update saves mutable fields with an optimistic version check.
	Update(ctx context.Context, c *Config) error

	// Delete removes a config row.
	Delete(ctx context.Context, configID id.ID) error

	// List retrieves configs with filtering, newest window first.
	List(ctx context.Context, filter ListFilter) ([]Config, error)

	// FindOpenForUpdate returns the open window of (store, category) with a
	// row lock, or nil when none exists. Called inside the create transaction
	// so concurrent creates for the same pair serialize.
	FindOpenForUpdate(ctx context.Context, storeID id.ID, category product.Category) (*Config, error)

	// LatestEnd returns the greatest effective_to among closed windows of
	// (store, category), or nil when the pair has no closed windows.
	LatestEnd(ctx context.Context, storeID id.ID, category product.Category) (*types.Date, error)

	// ResolveAt returns the window of (store, category) covering the given
	// day, or nil when no window covers it.
	ResolveAt(ctx context.Context, storeID id.ID, category product.Category, day types.Date) (*Config, error)
}
