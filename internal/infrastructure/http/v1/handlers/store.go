package handlers

import (
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// StoreHandler handles fuel station endpoints.
type StoreHandler struct {
	*CatalogHandler[*store.Store, dto.CreateStoreRequest, dto.UpdateStoreRequest]
}

// NewStoreHandler creates a new store handler.
func NewStoreHandler(base *BaseHandler, service *store.Service) *StoreHandler {
	return &StoreHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*store.Store, dto.CreateStoreRequest, dto.UpdateStoreRequest]{
			Service:    service.CatalogService,
			EntityName: "store",
			MapCreateDTO: func(req dto.CreateStoreRequest) *store.Store {
				return req.ToStore()
			},
			MapUpdateDTO: func(req dto.UpdateStoreRequest, existing *store.Store) *store.Store {
				return req.Apply(existing)
			},
		}),
	}
}
