package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// TankHandler handles storage tank endpoints.
type TankHandler struct {
	*CatalogHandler[*tank.Tank, dto.CreateTankRequest, dto.UpdateTankRequest]
	service *tank.Service
}

// NewTankHandler creates a new tank handler.
func NewTankHandler(base *BaseHandler, service *tank.Service) *TankHandler {
	return &TankHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*tank.Tank, dto.CreateTankRequest, dto.UpdateTankRequest]{
			Service:    service.CatalogService,
			EntityName: "tank",
			MapCreateDTO: func(req dto.CreateTankRequest) *tank.Tank {
				return req.ToTank()
			},
			MapUpdateDTO: func(req dto.UpdateTankRequest, existing *tank.Tank) *tank.Tank {
				return req.Apply(existing)
			},
		}),
		service: service,
	}
}

// ListByStore handles GET /catalog/tanks/by-store/:storeId - the active tanks
// of a store joined with their products.
func (h *TankHandler) ListByStore(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, err := id.Parse(c.Param("storeId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid storeId format"))
		return
	}

	tanks, err := h.service.ListByStore(ctx, storeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": tanks})
}
