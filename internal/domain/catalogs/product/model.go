// Package product provides the fuel product catalog.
package product

import (
	"context"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/entity"
)

// Category classifies a fuel product for loss-rate resolution.
// Evaporation behaves differently for gasoline and diesel, so loss-rate
// configs are scoped by (store, category).
type Category string

const (
	CategoryGasoline Category = "gasoline"
	CategoryDiesel   Category = "diesel"
)

// Categories lists known categories in reporting order.
var Categories = []Category{CategoryGasoline, CategoryDiesel}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", apperror.NewValidation("invalid product category").
			WithDetail("field", "category").
			WithDetail("value", s)
	}
	return c, nil
}

// Valid reports whether the category is a known value.
func (c Category) Valid() bool {
	switch c {
	case CategoryGasoline, CategoryDiesel:
		return true
	}
	return false
}

// Product represents a fuel grade sold at the stations (e.g. A-95, Diesel).
type Product struct {
	entity.Catalog

	// Category drives loss-rate resolution
	Category Category `db:"category" json:"category"`

	// Unit is the measurement unit, litres unless stated otherwise
	Unit string `db:"unit" json:"unit"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, category Category) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(code, name),
		Category: category,
		Unit:     "L",
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !p.Category.Valid() {
		return apperror.NewValidation("invalid product category").
			WithDetail("field", "category").
			WithDetail("value", string(p.Category))
	}

	return nil
}
