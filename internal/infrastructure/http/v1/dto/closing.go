package dto

import (
	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/closing"
)

// CloseRequest identifies one closing window of a store. Used by preview,
// execute, delete and batch listing alike.
type CloseRequest struct {
	StoreID    string     `json:"storeId" binding:"required,uuid"`
	PeriodFrom types.Date `json:"periodFrom" binding:"required"`
	PeriodTo   types.Date `json:"periodTo" binding:"required"`
	Notes      *string    `json:"notes,omitempty"`
}

// ToCloseRequest maps the request onto the domain request.
func (r *CloseRequest) ToCloseRequest() closing.CloseRequest {
	storeID, _ := id.Parse(r.StoreID)
	return closing.CloseRequest{
		StoreID:    storeID,
		PeriodFrom: r.PeriodFrom,
		PeriodTo:   r.PeriodTo,
		Notes:      r.Notes,
	}
}

// CloseRequestFromQuery builds a domain CloseRequest from query parameters.
func CloseRequestFromQuery(storeID, from, to string) (closing.CloseRequest, error) {
	sid, err := id.Parse(storeID)
	if err != nil {
		return closing.CloseRequest{}, apperror.NewValidation("invalid storeId format")
	}

	periodFrom, err := types.ParseDate(from)
	if err != nil {
		return closing.CloseRequest{}, apperror.NewValidation("invalid periodFrom date").
			WithDetail("value", from)
	}

	periodTo, err := types.ParseDate(to)
	if err != nil {
		return closing.CloseRequest{}, apperror.NewValidation("invalid periodTo date").
			WithDetail("value", to)
	}

	return closing.CloseRequest{StoreID: sid, PeriodFrom: periodFrom, PeriodTo: periodTo}, nil
}
