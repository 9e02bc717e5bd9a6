package entity

import (
	"context"

	"fueldesk/internal/core/apperror"
)

// Catalog is the base type for reference data: stores, products, tanks.
// Fuel-station catalogs are flat; there is no folder hierarchy.
type Catalog struct {
	Audited

	// Code is a human-readable identifier (unique across the database)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		Audited: NewAudited(),
		Code:    code,
		Name:    name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
