package catalog_repo

import (
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/infrastructure/storage/postgres"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var productColumns = postgres.ExtractDBColumns[product.Product]()

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_product",
			productColumns,
			func() *product.Product { return &product.Product{} },
		),
	}
}
