// Package store provides the fuel-station catalog.
// A store is one physical station: it owns tanks, cash ledgers and closings.
package store

import (
	"context"

	"fueldesk/internal/core/entity"
)

// Store represents a single fuel station.
type Store struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is the contact phone number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// IsActive indicates if the station is operational
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewStore creates a new Store with required fields.
func NewStore(code, name string) *Store {
	return &Store{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (s *Store) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}
