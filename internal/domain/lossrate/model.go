// Package lossrate manages effective-dated natural-loss rate configurations.
// Each store carries at most one open window per product category; windows of
// the same (store, category) pair never overlap.
package lossrate

import (
	"context"
	"time"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

// Config is one effective-dated loss rate window. EffectiveTo is nil while
// the window is open; closing a window sets it to the day before the
// successor's EffectiveFrom.
type Config struct {
	ID            id.ID            `db:"id" json:"id"`
	StoreID       id.ID            `db:"store_id" json:"storeId"`
	Category      product.Category `db:"product_category" json:"productCategory"`
	Rate          types.Rate       `db:"rate" json:"rate"`
	EffectiveFrom types.Date       `db:"effective_from" json:"effectiveFrom"`
	EffectiveTo   *types.Date      `db:"effective_to" json:"effectiveTo,omitempty"`
	Notes         *string          `db:"notes" json:"notes,omitempty"`
	Version       int              `db:"version" json:"version"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
	CreatedBy     string           `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy     string           `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewConfig creates an open window starting at effectiveFrom.
func NewConfig(storeID id.ID, category product.Category, rate types.Rate, effectiveFrom types.Date) *Config {
	now := time.Now().UTC()
	return &Config{
		ID:            id.New(),
		StoreID:       storeID,
		Category:      category,
		Rate:          rate,
		EffectiveFrom: effectiveFrom,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsOpen reports whether the window has no end date yet.
func (c *Config) IsOpen() bool {
	return c.EffectiveTo == nil
}

// Covers reports whether the window contains the given day.
func (c *Config) Covers(day types.Date) bool {
	if day.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveTo != nil && day.After(*c.EffectiveTo) {
		return false
	}
	return true
}

// Validate checks config invariants.
func (c *Config) Validate(ctx context.Context) error {
	if id.IsNil(c.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}

	if !c.Category.Valid() {
		return apperror.NewValidation("unknown product category").
			WithDetail("field", "productCategory").
			WithDetail("value", string(c.Category))
	}

	if !types.ValidLossRate(c.Rate) {
		return apperror.NewValidation("rate must be between 0 and 0.10").
			WithDetail("field", "rate").
			WithDetail("value", c.Rate.String())
	}

	if c.EffectiveFrom.IsZero() {
		return apperror.NewValidation("effectiveFrom is required").
			WithDetail("field", "effectiveFrom")
	}

	if c.EffectiveTo != nil && c.EffectiveTo.Before(c.EffectiveFrom) {
		return apperror.NewValidation("effectiveTo must not precede effectiveFrom").
			WithDetail("field", "effectiveTo")
	}

	return nil
}

// Resolution is the outcome of an effective-rate lookup. Config is nil when
// no window covers the requested day; the rate is then zero.
type Resolution struct {
	Config *Config    `json:"config,omitempty"`
	Rate   types.Rate `json:"rate"`
}

// UpdatePatch carries the mutable fields of a window. Nil fields keep their
// current value; store and category are immutable.
type UpdatePatch struct {
	Rate          *types.Rate `json:"rate,omitempty"`
	EffectiveFrom *types.Date `json:"effectiveFrom,omitempty"`
	EffectiveTo   *types.Date `json:"effectiveTo,omitempty"`
	Notes         *string     `json:"notes,omitempty"`
}

// ListFilter narrows config listings.
type ListFilter struct {
	StoreID  *id.ID
	Category *product.Category
	OpenOnly bool
	AsOf     *types.Date
}
