package catalog_repo

import (
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/infrastructure/storage/postgres"
)

// StoreRepo implements store.Repository.
type StoreRepo struct {
	*BaseCatalogRepo[*store.Store]
}

var storeColumns = postgres.ExtractDBColumns[store.Store]()

// NewStoreRepo creates a store repository.
func NewStoreRepo(txManager *postgres.TxManager) *StoreRepo {
	return &StoreRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_store",
			storeColumns,
			func() *store.Store { return &store.Store{} },
		),
	}
}
