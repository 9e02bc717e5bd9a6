// Package reports assembles the inventory period report: the closed periods
// of a store over a date range, reported verbatim, plus one live slice for
// the still-open tail of each tank.
package reports

import (
	"context"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/closing"
)

// SliceStatus tells whether a report slice is backed by a persisted closing
// row or computed on the fly.
type SliceStatus string

const (
	SliceClosed SliceStatus = "closed"
	SliceOpen   SliceStatus = "open"
)

// Slice is one reported window of a tank. Closed slices repeat persisted
// figures exactly; the open slice is recomputed from the ledger on every
// request and carries the rate in force at the end of the range.
type Slice struct {
	PeriodFrom types.Date  `json:"periodFrom"`
	PeriodTo   types.Date  `json:"periodTo"`
	Status     SliceStatus `json:"status"`

	OpeningBalance types.Quantity `json:"openingBalance"`
	ImportQuantity types.Quantity `json:"importQuantity"`
	ExportQuantity types.Quantity `json:"exportQuantity"`
	LossRate       types.Rate     `json:"lossRate"`
	LossAmount     types.Quantity `json:"lossAmount"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}

// TankReport groups the slices of one tank.
type TankReport struct {
	TankID      id.ID            `json:"tankId"`
	TankCode    string           `json:"tankCode"`
	TankName    string           `json:"tankName"`
	ProductName string           `json:"productName"`
	Category    product.Category `json:"productCategory"`
	Slices      []Slice          `json:"slices"`
}

// Report is the period report of one store over a date range.
type Report struct {
	StoreID   id.ID                    `json:"storeId"`
	StoreName string                   `json:"storeName"`
	RangeFrom types.Date               `json:"rangeFrom"`
	RangeTo   types.Date               `json:"rangeTo"`
	Tanks     []TankReport             `json:"tanks"`
	Totals    []closing.CategoryTotals `json:"totals"`
}

// Request identifies the store and range to report on.
type Request struct {
	StoreID   id.ID      `json:"storeId"`
	RangeFrom types.Date `json:"rangeFrom"`
	RangeTo   types.Date `json:"rangeTo"`
}

// Validate checks the request bounds.
func (r *Request) Validate(ctx context.Context) error {
	if id.IsNil(r.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}
	if r.RangeFrom.IsZero() || r.RangeTo.IsZero() {
		return apperror.NewValidation("rangeFrom and rangeTo are required")
	}
	if r.RangeTo.Before(r.RangeFrom) {
		return apperror.NewValidation("rangeTo must not precede rangeFrom").
			WithDetail("range_from", r.RangeFrom.String()).
			WithDetail("range_to", r.RangeTo.String())
	}
	return nil
}
