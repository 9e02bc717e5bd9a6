package dto

import (
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/lossrate"
)

// CreateLossRateRequest opens a new effective-dated rate window. An omitted
// effectiveTo opens the window; a set one bounds it up front.
type CreateLossRateRequest struct {
	StoreID       string      `json:"storeId" binding:"required,uuid"`
	Category      string      `json:"productCategory" binding:"required"`
	Rate          types.Rate  `json:"rate" binding:"required"`
	EffectiveFrom types.Date  `json:"effectiveFrom" binding:"required"`
	EffectiveTo   *types.Date `json:"effectiveTo,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// ToConfig maps the request onto a new Config.
func (r *CreateLossRateRequest) ToConfig() *lossrate.Config {
	storeID, _ := id.Parse(r.StoreID)
	c := lossrate.NewConfig(storeID, product.Category(r.Category), r.Rate, r.EffectiveFrom)
	c.EffectiveTo = r.EffectiveTo
	c.Notes = r.Notes
	return c
}

// UpdateLossRateRequest patches an unreferenced window. Omitted fields keep
// their current value.
type UpdateLossRateRequest struct {
	Rate          *types.Rate `json:"rate,omitempty"`
	EffectiveFrom *types.Date `json:"effectiveFrom,omitempty"`
	EffectiveTo   *types.Date `json:"effectiveTo,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// ToPatch maps the request onto the domain patch.
func (r *UpdateLossRateRequest) ToPatch() lossrate.UpdatePatch {
	return lossrate.UpdatePatch{
		Rate:          r.Rate,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		Notes:         r.Notes,
	}
}

// ResolveLossRateResponse reports the rate in force on a day.
type ResolveLossRateResponse struct {
	Rate   types.Rate       `json:"rate"`
	Config *lossrate.Config `json:"config,omitempty"`
}
