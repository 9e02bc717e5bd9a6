package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles fuel movement ledger endpoints.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Record handles POST /movements - append a movement to the ledger.
func (h *MovementHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.service.Record(ctx, req.ToMovement())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, movement)
}

// Get handles GET /movements/:id
func (h *MovementHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	movementID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movement, err := h.service.GetByID(ctx, movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, movement)
}

// List handles GET /movements with filtering.
func (h *MovementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if tankStr := c.Query("tankId"); tankStr != "" {
		tankID, err := id.Parse(tankStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid tankId format"))
			return
		}
		filter.TankID = &tankID
	}

	if storeStr := c.Query("storeId"); storeStr != "" {
		storeID, err := id.Parse(storeStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid storeId format"))
			return
		}
		filter.StoreID = &storeID
	}

	if dirStr := c.Query("direction"); dirStr != "" {
		dir := ledger.Direction(dirStr)
		filter.Direction = &dir
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := types.ParseDate(fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date").WithDetail("value", fromStr))
			return
		}
		filter.FromDate = &from
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := types.ParseDate(toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date").WithDetail("value", toStr))
			return
		}
		filter.ToDate = &to
	}

	movements, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      movements,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}
