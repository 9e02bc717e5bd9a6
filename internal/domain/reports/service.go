package reports

import (
	"context"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/tx"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/domain/ledger"
)

// Service assembles period reports.
type Service struct {
	periods   closing.Repository
	stores    store.Repository
	tanks     tank.Repository
	movements ledger.Repository
	rates     closing.RateResolver
	txManager tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(
	periods closing.Repository,
	stores store.Repository,
	tanks tank.Repository,
	movements ledger.Repository,
	rates closing.RateResolver,
	txManager tx.ReadOnlyManager,
) *Service {
	if txManager == nil {
		panic("reports: txManager is required")
	}
	return &Service{
		periods:   periods,
		stores:    stores,
		tanks:     tanks,
		movements: movements,
		rates:     rates,
		txManager: txManager,
	}
}

// PeriodReport returns the closed periods of a store intersecting the range,
// verbatim, plus one open slice per tank covering the unclosed tail. The
// open slice starts the day after the tank's last closed period (not clipped
// to rangeFrom, its opening balance is only meaningful there) and uses the
// loss rate in force at rangeTo. The whole assembly runs in a read-only
// transaction so every tank is read from one snapshot.
func (s *Service) PeriodReport(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	var report *Report
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.assemble(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) assemble(ctx context.Context, req Request) (*Report, error) {
	st, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if st == nil || st.DeletionMark {
		return nil, apperror.NewNotFound("store", req.StoreID.String())
	}

	tanks, err := s.tanks.ListByStore(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}

	closed, err := s.periods.ListIntersecting(ctx, req.StoreID, req.RangeFrom, req.RangeTo)
	if err != nil {
		return nil, err
	}
	closedByTank := make(map[id.ID][]closing.Period, len(tanks))
	for _, p := range closed {
		closedByTank[p.TankID] = append(closedByTank[p.TankID], p)
	}

	report := &Report{
		StoreID:   req.StoreID,
		StoreName: st.Name,
		RangeFrom: req.RangeFrom,
		RangeTo:   req.RangeTo,
		Tanks:     make([]TankReport, 0, len(tanks)),
	}

	var totalLines []closing.TankFigures
	for i := range tanks {
		t := &tanks[i]

		tr := TankReport{
			TankID:      t.ID,
			TankCode:    t.Code,
			TankName:    t.Name,
			ProductName: t.ProductName,
			Category:    t.Category,
		}

		for _, p := range closedByTank[t.ID] {
			tr.Slices = append(tr.Slices, Slice{
				PeriodFrom:     p.PeriodFrom,
				PeriodTo:       p.PeriodTo,
				Status:         SliceClosed,
				OpeningBalance: p.OpeningBalance,
				ImportQuantity: p.ImportQuantity,
				ExportQuantity: p.ExportQuantity,
				LossRate:       p.LossRate,
				LossAmount:     p.LossAmount,
				ClosingBalance: p.ClosingBalance,
			})
		}

		open, err := s.openSlice(ctx, t, req)
		if err != nil {
			return nil, err
		}
		if open != nil {
			tr.Slices = append(tr.Slices, *open)
		}

		if len(tr.Slices) > 0 {
			totalLines = append(totalLines, tankTotals(t, tr.Slices))
		}
		report.Tanks = append(report.Tanks, tr)
	}

	report.Totals = closing.SumByCategory(totalLines)
	return report, nil
}

// openSlice builds the live slice of a tank, or nil when the chain already
// reaches rangeTo or the tank has nothing to report yet.
func (s *Service) openSlice(ctx context.Context, t *tank.StoreTank, req Request) (*Slice, error) {
	last, err := s.periods.Latest(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	var (
		from    types.Date
		opening types.Quantity
	)
	switch {
	case last != nil:
		if !last.PeriodTo.Before(req.RangeTo) {
			return nil, nil
		}
		from = last.PeriodTo.NextDay()
		opening = last.ClosingBalance
	case t.InitialStockDate != nil:
		if t.InitialStockDate.After(req.RangeTo) {
			return nil, nil
		}
		from = *t.InitialStockDate
		opening = t.InitialStock
	default:
		from = req.RangeFrom
		opening = t.InitialStock
	}

	totals, err := s.movements.SumRange(ctx, t.ID, from, req.RangeTo)
	if err != nil {
		return nil, err
	}

	res, err := s.rates.ResolveEffective(ctx, req.StoreID, t.Category, req.RangeTo)
	if err != nil {
		return nil, err
	}

	loss := closing.LossAmount(totals.ExportQuantity, res.Rate)
	return &Slice{
		PeriodFrom:     from,
		PeriodTo:       req.RangeTo,
		Status:         SliceOpen,
		OpeningBalance: opening,
		ImportQuantity: totals.ImportQuantity,
		ExportQuantity: totals.ExportQuantity,
		LossRate:       res.Rate,
		LossAmount:     loss,
		ClosingBalance: closing.ClosingBalance(opening, totals.ImportQuantity, totals.ExportQuantity, loss),
	}, nil
}

// tankTotals collapses a tank's slices into one figures line: the opening of
// the first slice, the closing of the last, and summed flows in between.
func tankTotals(t *tank.StoreTank, slices []Slice) closing.TankFigures {
	line := closing.TankFigures{
		TankID:         t.ID,
		TankCode:       t.Code,
		TankName:       t.Name,
		ProductName:    t.ProductName,
		Category:       t.Category,
		OpeningBalance: slices[0].OpeningBalance,
		ClosingBalance: slices[len(slices)-1].ClosingBalance,
	}
	for i := range slices {
		line.ImportQuantity = line.ImportQuantity.Add(slices[i].ImportQuantity)
		line.ExportQuantity = line.ExportQuantity.Add(slices[i].ExportQuantity)
		line.LossAmount = line.LossAmount.Add(slices[i].LossAmount)
	}
	return line
}
