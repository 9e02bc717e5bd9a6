package dto

import (
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/ledger"
)

// RecordMovementRequest for appending a fuel movement.
type RecordMovementRequest struct {
	TankID     string         `json:"tankId" binding:"required,uuid"`
	Direction  string         `json:"direction" binding:"required,oneof=import export"`
	Date       types.Date     `json:"date" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	DocumentNo string         `json:"documentNo"`
	Notes      *string        `json:"notes"`
}

// ToMovement maps the request onto a new Movement. StoreID is derived from
// the tank by the ledger service.
func (r *RecordMovementRequest) ToMovement() *ledger.Movement {
	tankID, _ := id.Parse(r.TankID)
	m := ledger.NewMovement(tankID, id.Nil(), ledger.Direction(r.Direction), r.Date, r.Quantity)
	m.DocumentNo = r.DocumentNo
	m.Notes = r.Notes
	return m
}
