package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// ClosingHandler handles period-closing endpoints.
type ClosingHandler struct {
	*BaseHandler
	service *closing.Service
}

// NewClosingHandler creates a new closing handler.
func NewClosingHandler(base *BaseHandler, service *closing.Service) *ClosingHandler {
	return &ClosingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Preview handles POST /closings/preview - dry-run the close without
// persisting anything.
func (h *ClosingHandler) Preview(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CloseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Preview(ctx, req.ToCloseRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Execute handles POST /closings - close the window for every active tank of
// the store.
func (h *ClosingHandler) Execute(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CloseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Execute(ctx, req.ToCloseRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Delete handles DELETE /closings - remove one closing batch. Refused unless
// every row in the batch is the last period of its tank.
func (h *ClosingHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := dto.CloseRequestFromQuery(c.Query("storeId"), c.Query("periodFrom"), c.Query("periodTo"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(ctx, req); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get handles GET /closings/:id - one persisted period row.
func (h *ClosingHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	periodID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	period, err := h.service.GetByID(ctx, periodID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

// ListBatch handles GET /closings - the rows closed together as one batch.
func (h *ClosingHandler) ListBatch(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := dto.CloseRequestFromQuery(c.Query("storeId"), c.Query("periodFrom"), c.Query("periodTo"))
	if err != nil {
		h.Error(c, err)
		return
	}

	periods, err := h.service.ListBatch(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": periods})
}
