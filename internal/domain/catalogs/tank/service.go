package tank

import (
	"context"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/tx"
	"fueldesk/internal/domain"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
)

// Service provides business logic for the Tank catalog.
type Service struct {
	*domain.CatalogService[*Tank]
	repo     Repository
	stores   store.Repository
	products product.Repository
}

// NewService creates a new Tank service.
func NewService(repo Repository, stores store.Repository, products product.Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Tank]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "tank",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		stores:         stores,
		products:       products,
	}

	base.Hooks().OnBeforeCreate(svc.checkReferences)
	base.Hooks().OnBeforeUpdate(svc.checkReferences)

	return svc
}

// checkReferences verifies the referenced store and product exist.
func (s *Service) checkReferences(ctx context.Context, t *Tank) error {
	if ok, err := s.stores.Exists(ctx, t.StoreID); err != nil {
		return err
	} else if !ok {
		return apperror.NewNotFound("store", t.StoreID.String())
	}

	if ok, err := s.products.Exists(ctx, t.ProductID); err != nil {
		return err
	} else if !ok {
		return apperror.NewNotFound("product", t.ProductID.String())
	}

	return nil
}

// ListByStore returns the active tanks of a store with product categories.
func (s *Service) ListByStore(ctx context.Context, storeID id.ID) ([]StoreTank, error) {
	if ok, err := s.stores.Exists(ctx, storeID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperror.NewNotFound("store", storeID.String())
	}
	return s.repo.ListByStore(ctx, storeID)
}
