package ledger

import (
	"context"

	"fueldesk/internal/core/apperror"
	corecontext "fueldesk/internal/core/context"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/tx"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/pkg/logger"
)

// Service provides business logic for the movement ledger.
type Service struct {
	repo      Repository
	tanks     tank.Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(repo Repository, tanks tank.Repository, txManager tx.Manager) *Service {
	if txManager == nil {
		panic("ledger: txManager is required")
	}
	return &Service{
		repo:      repo,
		tanks:     tanks,
		txManager: txManager,
	}
}

// Record appends a movement. The store is derived from the tank, not taken
// from the caller, so a movement can never point at a foreign store.
func (s *Service) Record(ctx context.Context, m *Movement) (*Movement, error) {
	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	t, err := s.tanks.GetByID(ctx, m.TankID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.DeletionMark {
		return nil, apperror.NewNotFound("tank", m.TankID.String())
	}
	if !t.IsActive {
		return nil, apperror.NewValidation("tank is not in service").
			WithDetail("tankId", m.TankID.String())
	}

	if id.IsNil(m.ID) {
		m.ID = id.New()
	}
	m.StoreID = t.StoreID
	m.Quantity = types.RoundQuantity(m.Quantity)
	m.CreatedBy = corecontext.GetActor(ctx)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movement recorded",
		"movement_id", m.ID,
		"tank_id", m.TankID,
		"direction", m.Direction,
		"quantity", m.Quantity)

	return m, nil
}

// GetByID retrieves a movement by ID.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	m, err := s.repo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperror.NewNotFound("movement", movementID.String())
	}
	return m, nil
}

// List retrieves movements with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Movement, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, 0, apperror.NewValidation("toDate must not precede fromDate")
	}
	return s.repo.List(ctx, filter)
}

// SumRange aggregates import/export volumes of a tank over [from, to].
func (s *Service) SumRange(ctx context.Context, tankID id.ID, from, to types.Date) (Totals, error) {
	if to.Before(from) {
		return Totals{}, apperror.NewValidation("range end must not precede range start")
	}
	return s.repo.SumRange(ctx, tankID, from, to)
}
