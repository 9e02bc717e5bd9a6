// Package tank provides the storage-tank catalog.
// A tank belongs to exactly one store and holds exactly one product; its
// identity is immutable once movements exist against it.
package tank

import (
	"context"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/entity"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

// Tank represents a physical storage tank.
type Tank struct {
	entity.Catalog

	// StoreID is the owning station
	StoreID id.ID `db:"store_id" json:"storeId"`

	// ProductID is the fuel grade held by this tank
	ProductID id.ID `db:"product_id" json:"productId"`

	// Capacity is the nominal volume in litres
	Capacity types.Quantity `db:"capacity" json:"capacity"`

	// InitialStock is the externally supplied opening quantity used for the
	// very first closing period. Zero when the tank started empty.
	InitialStock types.Quantity `db:"initial_stock" json:"initialStock"`

	// InitialStockDate anchors the first closing period: when set, the first
	// period must start on this day. Nil means the first period is
	// unconstrained.
	InitialStockDate *types.Date `db:"initial_stock_date" json:"initialStockDate,omitempty"`

	// IsActive indicates if the tank is in service
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewTank creates a new Tank with required fields.
func NewTank(code, name string, storeID, productID id.ID) *Tank {
	return &Tank{
		Catalog:   entity.NewCatalog(code, name),
		StoreID:   storeID,
		ProductID: productID,
		IsActive:  true,
	}
}

// Validate implements entity.Validatable interface.
func (t *Tank) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(t.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}

	if id.IsNil(t.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if t.Capacity.IsNegative() {
		return apperror.NewValidation("capacity must not be negative").
			WithDetail("field", "capacity")
	}

	if t.InitialStock.IsNegative() {
		return apperror.NewValidation("initial stock must not be negative").
			WithDetail("field", "initialStock")
	}

	return nil
}

// StoreTank is a tank joined with its product, the shape the closing engine
// and the period report consume.
type StoreTank struct {
	Tank

	ProductName string           `db:"product_name" json:"productName"`
	Category    product.Category `db:"product_category" json:"productCategory"`
}
