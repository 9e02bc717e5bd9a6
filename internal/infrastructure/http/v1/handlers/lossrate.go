package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// LossRateHandler handles loss-rate config endpoints.
type LossRateHandler struct {
	*BaseHandler
	service *lossrate.Service
}

// NewLossRateHandler creates a new loss rate handler.
func NewLossRateHandler(base *BaseHandler, service *lossrate.Service) *LossRateHandler {
	return &LossRateHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /loss-rates - open a new effective-dated window.
func (h *LossRateHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateLossRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	config, err := h.service.Create(ctx, req.ToConfig())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, config)
}

// Get handles GET /loss-rates/:id
func (h *LossRateHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	config, err := h.service.GetByID(ctx, configID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, config)
}

// List handles GET /loss-rates with filtering.
func (h *LossRateHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var filter lossrate.ListFilter

	if storeStr := c.Query("storeId"); storeStr != "" {
		storeID, err := id.Parse(storeStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid storeId format"))
			return
		}
		filter.StoreID = &storeID
	}

	if catStr := c.Query("category"); catStr != "" {
		cat, err := product.ParseCategory(catStr)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Category = &cat
	}

	filter.OpenOnly = c.Query("openOnly") == "true"

	if asOfStr := c.Query("asOf"); asOfStr != "" {
		asOf, err := types.ParseDate(asOfStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOf date").WithDetail("value", asOfStr))
			return
		}
		filter.AsOf = &asOf
	}

	configs, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": configs})
}

// Update handles PUT /loss-rates/:id - patch an unreferenced window.
func (h *LossRateHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateLossRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	config, err := h.service.Update(ctx, configID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, config)
}

// Delete handles DELETE /loss-rates/:id
func (h *LossRateHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	configID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, configID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Resolve handles GET /loss-rates/resolve - the rate in force for
// (store, category) on a day. Uncovered days resolve to rate zero.
func (h *LossRateHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, err := id.Parse(c.Query("storeId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid storeId format"))
		return
	}

	category, err := product.ParseCategory(c.Query("category"))
	if err != nil {
		h.Error(c, err)
		return
	}

	asOf, err := types.ParseDate(c.Query("asOf"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid asOf date"))
		return
	}

	resolution, err := h.service.ResolveEffective(ctx, storeID, category, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResolveLossRateResponse{
		Rate:   resolution.Rate,
		Config: resolution.Config,
	})
}
