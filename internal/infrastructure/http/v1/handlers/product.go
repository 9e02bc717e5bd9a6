package handlers

import (
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles fuel product endpoints.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:    service.CatalogService,
			EntityName: "product",
			MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
				return req.ToProduct()
			},
			MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
				return req.Apply(existing)
			},
		}),
	}
}
