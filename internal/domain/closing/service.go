package closing

import (
	"context"
	"time"

	"fueldesk/internal/core/apperror"
	corecontext "fueldesk/internal/core/context"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/tx"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/audit"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/pkg/logger"
)

// RateResolver resolves the loss rate in force for (store, category) on a
// day. Satisfied by *lossrate.Service.
type RateResolver interface {
	ResolveEffective(ctx context.Context, storeID id.ID, category product.Category, asOf types.Date) (lossrate.Resolution, error)
}

// Service runs the period-closing engine.
type Service struct {
	repo      Repository
	stores    store.Repository
	tanks     tank.Repository
	movements ledger.Repository
	rates     RateResolver
	audit     audit.Recorder
	txManager tx.Manager
}

// NewService creates a new closing service.
func NewService(
	repo Repository,
	stores store.Repository,
	tanks tank.Repository,
	movements ledger.Repository,
	rates RateResolver,
	auditor audit.Recorder,
	txManager tx.Manager,
) *Service {
	if txManager == nil {
		panic("closing: txManager is required")
	}
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		stores:    stores,
		tanks:     tanks,
		movements: movements,
		rates:     rates,
		audit:     auditor,
		txManager: txManager,
	}
}

// Preview computes the figures a close would persist without writing
// anything. It runs the same validation and the same arithmetic as Execute,
// so an accepted preview fails on execute only if a concurrent close slips
// in between.
func (s *Service) Preview(ctx context.Context, req CloseRequest) (*PreviewResult, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	var lines []TankFigures
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.buildLines(ctx, req, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PreviewResult{
		StoreID:    req.StoreID,
		PeriodFrom: req.PeriodFrom,
		PeriodTo:   req.PeriodTo,
		Lines:      lines,
		Totals:     SumByCategory(lines),
	}, nil
}

// Execute closes the requested window for every active tank of the store in
// one transaction. The chain head of each tank is locked before figures are
// computed, so two concurrent closes of the same store serialize and the
// loser fails its chain check instead of writing a duplicate.
func (s *Service) Execute(ctx context.Context, req CloseRequest) (*ExecuteResult, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	actor := corecontext.GetActor(ctx)
	batchID := id.New()
	closedAt := time.Now().UTC()

	var lines []TankFigures
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.buildLines(ctx, req, true)
		if err != nil {
			return err
		}

		rows := make([]Period, len(lines))
		for i, l := range lines {
			rows[i] = Period{
				ID:             id.New(),
				BatchID:        batchID,
				StoreID:        req.StoreID,
				TankID:         l.TankID,
				PeriodFrom:     req.PeriodFrom,
				PeriodTo:       req.PeriodTo,
				OpeningBalance: l.OpeningBalance,
				ImportQuantity: l.ImportQuantity,
				ExportQuantity: l.ExportQuantity,
				LossRate:       l.LossRate,
				LossAmount:     l.LossAmount,
				ClosingBalance: l.ClosingBalance,
				LossConfigID:   l.LossConfigID,
				ClosedAt:       closedAt,
				ClosedBy:       actor,
				Notes:          req.Notes,
			}
		}
		return s.repo.InsertBatch(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	result := &ExecuteResult{
		BatchID:    batchID,
		StoreID:    req.StoreID,
		PeriodFrom: req.PeriodFrom,
		PeriodTo:   req.PeriodTo,
		Lines:      lines,
		Totals:     SumByCategory(lines),
		ClosedAt:   closedAt,
	}

	if err := s.audit.Record(ctx, audit.NewEntry(actor, audit.ActionClosingExecuted,
		"closing_batch", batchID.String(), result)); err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionClosingExecuted, "error", err)
	}

	logger.Info(ctx, "period closed",
		"batch_id", batchID,
		"store_id", req.StoreID,
		"period_from", req.PeriodFrom,
		"period_to", req.PeriodTo,
		"tanks", len(lines))

	return result, nil
}

// Delete removes the batch closed as (store, from, to). Every row must be the
// terminal period of its tank; otherwise the whole delete is refused, so a
// tank chain never loses a middle link.
func (s *Service) Delete(ctx context.Context, req CloseRequest) error {
	if err := req.Validate(ctx); err != nil {
		return err
	}

	actor := corecontext.GetActor(ctx)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rows, err := s.repo.ListBatch(ctx, req.StoreID, req.PeriodFrom, req.PeriodTo)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return apperror.NewNotFound("closing period", req.PeriodFrom.String()+".."+req.PeriodTo.String())
		}

		for i := range rows {
			later, err := s.repo.ExistsAfter(ctx, rows[i].TankID, rows[i].PeriodTo)
			if err != nil {
				return err
			}
			if later {
				return apperror.NewPeriodNotLast(rows[i].TankID)
			}
		}

		_, err = s.repo.DeleteBatch(ctx, req.StoreID, req.PeriodFrom, req.PeriodTo)
		return err
	})
	if err != nil {
		return err
	}

	if err := s.audit.Record(ctx, audit.NewEntry(actor, audit.ActionClosingDeleted,
		"closing_batch", req.StoreID.String(), req)); err != nil {
		logger.Warn(ctx, "audit record failed", "action", audit.ActionClosingDeleted, "error", err)
	}

	logger.Info(ctx, "closing batch deleted",
		"store_id", req.StoreID,
		"period_from", req.PeriodFrom,
		"period_to", req.PeriodTo)

	return nil
}

// GetByID retrieves one closed period row.
func (s *Service) GetByID(ctx context.Context, periodID id.ID) (*Period, error) {
	p, err := s.repo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("closing period", periodID.String())
	}
	return p, nil
}

// ListBatch returns the rows closed together as (store, from, to).
func (s *Service) ListBatch(ctx context.Context, req CloseRequest) ([]Period, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListBatch(ctx, req.StoreID, req.PeriodFrom, req.PeriodTo)
}

// buildLines computes the per-tank figures of a close. With forUpdate set it
// locks each tank's chain head (or, for a virgin tank, the tank row itself)
// before reading, which is what makes Execute race-safe.
func (s *Service) buildLines(ctx context.Context, req CloseRequest, forUpdate bool) ([]TankFigures, error) {
	if ok, err := s.stores.Exists(ctx, req.StoreID); err != nil {
		return nil, err
	} else if !ok {
		return nil, apperror.NewNotFound("store", req.StoreID.String())
	}

	tanks, err := s.tanks.ListByStore(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if len(tanks) == 0 {
		return nil, apperror.NewValidation("store has no active tanks").
			WithDetail("storeId", req.StoreID.String())
	}

	lines := make([]TankFigures, 0, len(tanks))
	for i := range tanks {
		t := &tanks[i]

		opening, err := s.openingBalance(ctx, t, req.PeriodFrom, forUpdate)
		if err != nil {
			return nil, err
		}

		totals, err := s.movements.SumRange(ctx, t.ID, req.PeriodFrom, req.PeriodTo)
		if err != nil {
			return nil, err
		}

		res, err := s.rates.ResolveEffective(ctx, req.StoreID, t.Category, req.PeriodTo)
		if err != nil {
			return nil, err
		}

		line := TankFigures{
			TankID:         t.ID,
			TankCode:       t.Code,
			TankName:       t.Name,
			ProductName:    t.ProductName,
			Category:       t.Category,
			OpeningBalance: opening,
			ImportQuantity: totals.ImportQuantity,
			ExportQuantity: totals.ExportQuantity,
			LossRate:       res.Rate,
		}
		if res.Config != nil {
			cfgID := res.Config.ID
			line.LossConfigID = &cfgID
		}
		Compute(&line)
		lines = append(lines, line)
	}

	return lines, nil
}

// openingBalance resolves the carry-forward opening of a tank for a period
// starting at from, enforcing the chain invariants:
//
//   - with a prior period, from must be exactly the next day after it ends;
//     starting earlier is an overlap, starting later leaves a gap
//   - without prior periods, a tank with a dated initial stock must start on
//     that date; an undated tank starts anywhere and opens at its recorded
//     initial stock
func (s *Service) openingBalance(ctx context.Context, t *tank.StoreTank, from types.Date, forUpdate bool) (types.Quantity, error) {
	var (
		last *Period
		err  error
	)
	if forUpdate {
		last, err = s.repo.LatestForUpdate(ctx, t.ID)
	} else {
		last, err = s.repo.Latest(ctx, t.ID)
	}
	if err != nil {
		return types.Quantity{}, err
	}

	if last != nil {
		if !from.After(last.PeriodTo) {
			return types.Quantity{}, apperror.NewPeriodOverlap(t.ID, from.String(), last.PeriodTo.String())
		}
		if !from.Equal(last.PeriodTo.NextDay()) {
			return types.Quantity{}, apperror.NewValidation("closing period leaves a gap after the previous period").
				WithDetail("tank_id", t.ID.String()).
				WithDetail("previous_period_to", last.PeriodTo.String()).
				WithDetail("period_from", from.String())
		}
		return last.ClosingBalance, nil
	}

	if forUpdate {
		// No chain head to lock yet; the tank row serializes first closes.
		if _, err := s.tanks.GetForUpdate(ctx, t.ID); err != nil {
			return types.Quantity{}, err
		}
	}

	if t.InitialStockDate != nil && !from.Equal(*t.InitialStockDate) {
		return types.Quantity{}, apperror.NewValidation("first closing period must start at the initial stock date").
			WithDetail("tank_id", t.ID.String()).
			WithDetail("initial_stock_date", t.InitialStockDate.String()).
			WithDetail("period_from", from.String())
	}

	return t.InitialStock, nil
}
