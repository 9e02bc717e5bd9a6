// Package ledger provides the fuel movement ledger: an append-only record of
// import/export quantities per tank. The closing engine only reads aggregated
// sums over date ranges; it never mutates these rows.
package ledger

import (
	"context"
	"time"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
)

// Direction marks a movement as an import (delivery into the tank) or an
// export (dispensed/sold fuel).
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// Valid reports whether the direction is a known value.
func (d Direction) Valid() bool {
	return d == DirectionImport || d == DirectionExport
}

// Movement is one ledger row: a resolved quantity moved in or out of a tank
// on a given day, referencing the source document.
type Movement struct {
	ID        id.ID          `db:"id" json:"id"`
	TankID    id.ID          `db:"tank_id" json:"tankId"`
	StoreID   id.ID          `db:"store_id" json:"storeId"`
	Direction Direction      `db:"direction" json:"direction"`
	DocumentNo string        `db:"document_no" json:"documentNo,omitempty"`
	Date      types.Date     `db:"movement_date" json:"date"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Notes     *string        `db:"notes" json:"notes,omitempty"`
	CreatedBy string         `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// NewMovement creates a ledger row with a generated ID.
func NewMovement(tankID, storeID id.ID, direction Direction, date types.Date, quantity types.Quantity) *Movement {
	return &Movement{
		ID:        id.New(),
		TankID:    tankID,
		StoreID:   storeID,
		Direction: direction,
		Date:      date,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks movement invariants.
func (m *Movement) Validate(ctx context.Context) error {
	if id.IsNil(m.TankID) {
		return apperror.NewValidation("tank is required").
			WithDetail("field", "tankId")
	}

	if !m.Direction.Valid() {
		return apperror.NewValidation("direction must be import or export").
			WithDetail("field", "direction").
			WithDetail("value", string(m.Direction))
	}

	if m.Date.IsZero() {
		return apperror.NewValidation("movement date is required").
			WithDetail("field", "date")
	}

	if !m.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	return nil
}

// Totals holds the aggregated import/export volumes of a tank over a date
// range. This is the only shape the closing engine reads from the ledger.
type Totals struct {
	ImportQuantity types.Quantity `db:"import_quantity" json:"importQuantity"`
	ExportQuantity types.Quantity `db:"export_quantity" json:"exportQuantity"`
}

// ListFilter narrows movement listings.
type ListFilter struct {
	TankID    *id.ID
	StoreID   *id.ID
	Direction *Direction
	FromDate  *types.Date
	ToDate    *types.Date
	Limit     int
	Offset    int
}
