// Package closing implements the inventory period-closing engine. A closing
// period freezes the reconciled balance of one tank over a date window;
// per-tank periods chain without gaps or overlaps and are immutable once
// written, except that the terminal period of a tank may be deleted.
package closing

import (
	"context"
	"time"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

// Period is one persisted closing row. All quantities are litres with four
// decimal places; the figures are denormalized at close time and never
// recomputed afterwards.
type Period struct {
	ID      id.ID `db:"id" json:"id"`
	BatchID id.ID `db:"batch_id" json:"batchId"`
	StoreID id.ID `db:"store_id" json:"storeId"`
	TankID  id.ID `db:"tank_id" json:"tankId"`

	PeriodFrom types.Date `db:"period_from" json:"periodFrom"`
	PeriodTo   types.Date `db:"period_to" json:"periodTo"`

	OpeningBalance types.Quantity `db:"opening_balance" json:"openingBalance"`
	ImportQuantity types.Quantity `db:"import_quantity" json:"importQuantity"`
	ExportQuantity types.Quantity `db:"export_quantity" json:"exportQuantity"`
	LossRate       types.Rate     `db:"loss_rate" json:"lossRate"`
	LossAmount     types.Quantity `db:"loss_amount" json:"lossAmount"`
	ClosingBalance types.Quantity `db:"closing_balance" json:"closingBalance"`

	// LossConfigID records which rate window supplied LossRate. Nil when no
	// window covered the period and the rate defaulted to zero.
	LossConfigID *id.ID `db:"loss_config_id" json:"lossConfigId,omitempty"`

	ClosedAt time.Time `db:"closed_at" json:"closedAt"`
	ClosedBy string    `db:"closed_by" json:"closedBy,omitempty"`
	Notes    *string   `db:"notes" json:"notes,omitempty"`
}

// Succeeds reports whether the period starts on the day right after prev
// ends, which is the only legal continuation of a tank's chain.
func (p *Period) Succeeds(prev *Period) bool {
	return p.PeriodFrom.Equal(prev.PeriodTo.NextDay())
}

// CloseRequest identifies the window to close for every active tank of a
// store. Notes, when present, are stamped on every row of the batch.
type CloseRequest struct {
	StoreID    id.ID      `json:"storeId"`
	PeriodFrom types.Date `json:"periodFrom"`
	PeriodTo   types.Date `json:"periodTo"`
	Notes      *string    `json:"notes,omitempty"`
}

// Validate checks the request bounds.
func (r *CloseRequest) Validate(ctx context.Context) error {
	if id.IsNil(r.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}
	if r.PeriodFrom.IsZero() || r.PeriodTo.IsZero() {
		return apperror.NewValidation("periodFrom and periodTo are required")
	}
	if r.PeriodTo.Before(r.PeriodFrom) {
		return apperror.NewValidation("periodTo must not precede periodFrom").
			WithDetail("period_from", r.PeriodFrom.String()).
			WithDetail("period_to", r.PeriodTo.String())
	}
	return nil
}

// TankFigures is the computed closing line of one tank, shared by preview,
// execute and the period report.
type TankFigures struct {
	TankID      id.ID            `json:"tankId"`
	TankCode    string           `json:"tankCode"`
	TankName    string           `json:"tankName"`
	ProductName string           `json:"productName"`
	Category    product.Category `json:"productCategory"`

	OpeningBalance types.Quantity `json:"openingBalance"`
	ImportQuantity types.Quantity `json:"importQuantity"`
	ExportQuantity types.Quantity `json:"exportQuantity"`
	LossRate       types.Rate     `json:"lossRate"`
	LossAmount     types.Quantity `json:"lossAmount"`
	ClosingBalance types.Quantity `json:"closingBalance"`

	LossConfigID *id.ID `json:"lossConfigId,omitempty"`
}

// CategoryTotals aggregates figures across the tanks of one product category.
type CategoryTotals struct {
	Category       product.Category `json:"productCategory"`
	OpeningBalance types.Quantity   `json:"openingBalance"`
	ImportQuantity types.Quantity   `json:"importQuantity"`
	ExportQuantity types.Quantity   `json:"exportQuantity"`
	LossAmount     types.Quantity   `json:"lossAmount"`
	ClosingBalance types.Quantity   `json:"closingBalance"`
}

// PreviewResult is the dry-run outcome of a close: the exact figures execute
// would persist, without touching the database.
type PreviewResult struct {
	StoreID    id.ID            `json:"storeId"`
	PeriodFrom types.Date       `json:"periodFrom"`
	PeriodTo   types.Date       `json:"periodTo"`
	Lines      []TankFigures    `json:"lines"`
	Totals     []CategoryTotals `json:"totals"`
}

// ExecuteResult reports a committed close.
type ExecuteResult struct {
	BatchID    id.ID            `json:"batchId"`
	StoreID    id.ID            `json:"storeId"`
	PeriodFrom types.Date       `json:"periodFrom"`
	PeriodTo   types.Date       `json:"periodTo"`
	Lines      []TankFigures    `json:"lines"`
	Totals     []CategoryTotals `json:"totals"`
	ClosedAt   time.Time        `json:"closedAt"`
}
