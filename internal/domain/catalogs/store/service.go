package store

import (
	"fueldesk/internal/core/tx"
	"fueldesk/internal/domain"
)

// Service provides business logic for the Store catalog.
type Service struct {
	*domain.CatalogService[*Store]
	repo Repository
}

// NewService creates a new Store service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Store]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "store",
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}
