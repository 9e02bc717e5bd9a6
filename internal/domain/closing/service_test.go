package closing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/domain/lossrate"
)

// --- in-memory fakes ---

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakePeriodRepo struct {
	rows []Period
}

func (r *fakePeriodRepo) latest(tankID id.ID) *Period {
	var last *Period
	for i := range r.rows {
		p := &r.rows[i]
		if p.TankID != tankID {
			continue
		}
		if last == nil || p.PeriodTo.After(last.PeriodTo) {
			last = p
		}
	}
	return last
}

func (r *fakePeriodRepo) Latest(_ context.Context, tankID id.ID) (*Period, error) {
	if last := r.latest(tankID); last != nil {
		cp := *last
		return &cp, nil
	}
	return nil, nil
}

func (r *fakePeriodRepo) LatestForUpdate(ctx context.Context, tankID id.ID) (*Period, error) {
	return r.Latest(ctx, tankID)
}

func (r *fakePeriodRepo) InsertBatch(_ context.Context, periods []Period) error {
	for _, p := range periods {
		for _, existing := range r.rows {
			if existing.TankID == p.TankID &&
				existing.PeriodFrom.Equal(p.PeriodFrom) && existing.PeriodTo.Equal(p.PeriodTo) {
				return apperror.NewClosingRaceLost(p.StoreID)
			}
		}
	}
	r.rows = append(r.rows, periods...)
	return nil
}

func (r *fakePeriodRepo) GetByID(_ context.Context, periodID id.ID) (*Period, error) {
	for i := range r.rows {
		if r.rows[i].ID == periodID {
			cp := r.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePeriodRepo) ListBatch(_ context.Context, storeID id.ID, from, to types.Date) ([]Period, error) {
	var out []Period
	for _, p := range r.rows {
		if p.StoreID == storeID && p.PeriodFrom.Equal(from) && p.PeriodTo.Equal(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) ListIntersecting(_ context.Context, storeID id.ID, from, to types.Date) ([]Period, error) {
	var out []Period
	for _, p := range r.rows {
		if p.StoreID == storeID && !p.PeriodFrom.After(to) && !p.PeriodTo.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePeriodRepo) ExistsAfter(_ context.Context, tankID id.ID, day types.Date) (bool, error) {
	for _, p := range r.rows {
		if p.TankID == tankID && p.PeriodFrom.After(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePeriodRepo) DeleteBatch(_ context.Context, storeID id.ID, from, to types.Date) (int64, error) {
	var kept []Period
	var deleted int64
	for _, p := range r.rows {
		if p.StoreID == storeID && p.PeriodFrom.Equal(from) && p.PeriodTo.Equal(to) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.rows = kept
	return deleted, nil
}

func (r *fakePeriodRepo) ConfigReferenced(_ context.Context, configID id.ID) (bool, error) {
	for _, p := range r.rows {
		if p.LossConfigID != nil && *p.LossConfigID == configID {
			return true, nil
		}
	}
	return false, nil
}

type fakeStoreRepo struct {
	store.Repository
	known map[id.ID]bool
}

func (r *fakeStoreRepo) Exists(_ context.Context, storeID id.ID) (bool, error) {
	return r.known[storeID], nil
}

type fakeTankRepo struct {
	tank.Repository
	tanks  []tank.StoreTank
	locked []id.ID
}

func (r *fakeTankRepo) ListByStore(_ context.Context, storeID id.ID) ([]tank.StoreTank, error) {
	var out []tank.StoreTank
	for _, t := range r.tanks {
		if t.StoreID == storeID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTankRepo) GetForUpdate(_ context.Context, tankID id.ID) (*tank.Tank, error) {
	for i := range r.tanks {
		if r.tanks[i].ID == tankID {
			r.locked = append(r.locked, tankID)
			cp := r.tanks[i].Tank
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("tank", tankID.String())
}

type fakeLedgerRepo struct {
	ledger.Repository
	totals map[id.ID]ledger.Totals
}

func (r *fakeLedgerRepo) SumRange(_ context.Context, tankID id.ID, _, _ types.Date) (ledger.Totals, error) {
	return r.totals[tankID], nil
}

type fakeRateResolver struct {
	byCategory map[product.Category]lossrate.Resolution
}

func (r *fakeRateResolver) ResolveEffective(_ context.Context, _ id.ID, category product.Category, _ types.Date) (lossrate.Resolution, error) {
	return r.byCategory[category], nil
}

// --- fixture ---

type closingFixture struct {
	svc     *Service
	periods *fakePeriodRepo
	tanks   *fakeTankRepo
	movs    *fakeLedgerRepo
	rates   *fakeRateResolver
	storeID id.ID
	tankID  id.ID
	config  *lossrate.Config
}

// newFixture wires the service around one gasoline tank with 1000 L of
// initial stock dated 2024-01-01 and a 0.25% loss rate.
func newFixture(t *testing.T) *closingFixture {
	t.Helper()

	storeID := id.New()
	anchor := types.MustDate("2024-01-01")

	tk := tank.NewTank("T-01", "Tank 1", storeID, id.New())
	tk.InitialStock = types.MustQuantity("1000")
	tk.InitialStockDate = &anchor

	cfg := lossrate.NewConfig(storeID, product.CategoryGasoline, types.MustRate("0.0025"), anchor)

	f := &closingFixture{
		periods: &fakePeriodRepo{},
		tanks: &fakeTankRepo{tanks: []tank.StoreTank{{
			Tank:        *tk,
			ProductName: "Gasoline A-95",
			Category:    product.CategoryGasoline,
		}}},
		movs: &fakeLedgerRepo{totals: map[id.ID]ledger.Totals{
			tk.ID: {
				ImportQuantity: types.MustQuantity("500"),
				ExportQuantity: types.MustQuantity("300"),
			},
		}},
		rates: &fakeRateResolver{byCategory: map[product.Category]lossrate.Resolution{
			product.CategoryGasoline: {Config: cfg, Rate: cfg.Rate},
		}},
		storeID: storeID,
		tankID:  tk.ID,
		config:  cfg,
	}

	stores := &fakeStoreRepo{known: map[id.ID]bool{storeID: true}}
	f.svc = NewService(f.periods, stores, f.tanks, f.movs, f.rates, nil, stubTxManager{})
	return f
}

func (f *closingFixture) request(from, to string) CloseRequest {
	return CloseRequest{
		StoreID:    f.storeID,
		PeriodFrom: types.MustDate(from),
		PeriodTo:   types.MustDate(to),
	}
}

// seedPeriod plants a closed period so the chain has a head.
func (f *closingFixture) seedPeriod(from, to, closing string) Period {
	p := Period{
		ID:             id.New(),
		BatchID:        id.New(),
		StoreID:        f.storeID,
		TankID:         f.tankID,
		PeriodFrom:     types.MustDate(from),
		PeriodTo:       types.MustDate(to),
		OpeningBalance: types.MustQuantity("1000"),
		ClosingBalance: types.MustQuantity(closing),
	}
	f.periods.rows = append(f.periods.rows, p)
	return p
}

// --- tests ---

func TestExecuteFirstPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	line := res.Lines[0]
	assert.Equal(t, f.tankID, line.TankID)
	assert.True(t, line.OpeningBalance.Equal(types.MustQuantity("1000")), "opening %s", line.OpeningBalance)
	assert.True(t, line.LossAmount.Equal(types.MustQuantity("0.75")), "loss %s", line.LossAmount)
	assert.True(t, line.ClosingBalance.Equal(types.MustQuantity("1199.25")), "closing %s", line.ClosingBalance)
	require.NotNil(t, line.LossConfigID)
	assert.Equal(t, f.config.ID, *line.LossConfigID)

	require.Len(t, f.periods.rows, 1)
	persisted := f.periods.rows[0]
	assert.Equal(t, res.BatchID, persisted.BatchID)
	assert.True(t, persisted.ClosingBalance.Equal(types.MustQuantity("1199.25")))

	// The virgin tank's row was locked as the chain anchor.
	assert.Contains(t, f.tanks.locked, f.tankID)
}

func TestExecutePersistsNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("2024-01-01", "2024-01-31")
	notes := "January stocktake close"
	req.Notes = &notes

	_, err := f.svc.Execute(ctx, req)
	require.NoError(t, err)

	require.Len(t, f.periods.rows, 1)
	require.NotNil(t, f.periods.rows[0].Notes)
	assert.Equal(t, "January stocktake close", *f.periods.rows[0].Notes)
}

func TestExecuteCarryForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1199.25")

	res, err := f.svc.Execute(ctx, f.request("2024-02-01", "2024-02-29"))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	// Opening of the new period is exactly the closing of the previous one.
	assert.True(t, res.Lines[0].OpeningBalance.Equal(types.MustQuantity("1199.25")),
		"opening %s", res.Lines[0].OpeningBalance)
}

func TestExecuteOverlapRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1199.25")

	_, err := f.svc.Execute(ctx, f.request("2024-01-15", "2024-02-15"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodOverlap, appErr.Code)

	// Re-closing the identical window is also an overlap.
	_, err = f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	require.Error(t, err)
	appErr, _ = apperror.AsAppError(err)
	assert.Equal(t, apperror.CodePeriodOverlap, appErr.Code)

	assert.Len(t, f.periods.rows, 1)
}

func TestExecuteGapRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1199.25")

	_, err := f.svc.Execute(ctx, f.request("2024-02-05", "2024-02-29"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "got %v", err)
	assert.Len(t, f.periods.rows, 1)
}

func TestExecuteFirstPeriodMustStartAtAnchor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.request("2024-01-05", "2024-01-31"))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "got %v", err)
	assert.Empty(t, f.periods.rows)
}

func TestExecuteUnanchoredTankStartsAnywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tanks.tanks[0].InitialStockDate = nil

	res, err := f.svc.Execute(ctx, f.request("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	assert.True(t, res.Lines[0].OpeningBalance.Equal(types.MustQuantity("1000")))
}

func TestExecuteZeroRateWhenUncovered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rates.byCategory = map[product.Category]lossrate.Resolution{}

	res, err := f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)

	line := res.Lines[0]
	assert.True(t, line.LossAmount.IsZero(), "loss %s", line.LossAmount)
	assert.True(t, line.ClosingBalance.Equal(types.MustQuantity("1200")), "closing %s", line.ClosingBalance)
	assert.Nil(t, line.LossConfigID)
}

func TestExecuteStoreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("2024-01-01", "2024-01-31")
	req.StoreID = id.New()

	_, err := f.svc.Execute(ctx, req)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestExecuteNoActiveTanks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tanks.tanks = nil

	_, err := f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestCloseRequestValidate(t *testing.T) {
	ctx := context.Background()

	req := CloseRequest{}
	assert.True(t, apperror.IsValidation(req.Validate(ctx)))

	req = CloseRequest{
		StoreID:    id.New(),
		PeriodFrom: types.MustDate("2024-02-01"),
		PeriodTo:   types.MustDate("2024-01-31"),
	}
	assert.True(t, apperror.IsValidation(req.Validate(ctx)))

	req.PeriodTo = types.MustDate("2024-02-01")
	assert.NoError(t, req.Validate(ctx), "single-day period is legal")
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Preview(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].ClosingBalance.Equal(types.MustQuantity("1199.25")))

	assert.Empty(t, f.periods.rows)
	assert.Empty(t, f.tanks.locked, "preview must not take locks")
}

func TestPreviewMatchesExecute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.request("2024-01-01", "2024-01-31")

	preview, err := f.svc.Preview(ctx, req)
	require.NoError(t, err)

	executed, err := f.svc.Execute(ctx, req)
	require.NoError(t, err)

	require.Len(t, preview.Lines, len(executed.Lines))
	for i := range preview.Lines {
		assert.True(t, preview.Lines[i].ClosingBalance.Equal(executed.Lines[i].ClosingBalance))
		assert.True(t, preview.Lines[i].LossAmount.Equal(executed.Lines[i].LossAmount))
	}
}

func TestDeleteLastBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1199.25")

	err := f.svc.Delete(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.Empty(t, f.periods.rows)
}

func TestDeleteRefusedWhenNotLast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1199.25")
	f.seedPeriod("2024-02-01", "2024-02-29", "1100")

	err := f.svc.Delete(ctx, f.request("2024-01-01", "2024-01-31"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePeriodNotLast, appErr.Code)
	assert.Len(t, f.periods.rows, 2, "nothing may be deleted on refusal")
}

func TestDeleteUnknownBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Delete(ctx, f.request("2024-01-01", "2024-01-31"))
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestDeleteThenReclose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.request("2024-01-01", "2024-01-31")))

	res, err := f.svc.Execute(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	assert.True(t, res.Lines[0].OpeningBalance.Equal(types.MustQuantity("1000")),
		"opening falls back to initial stock after delete")
}

func TestPeriodSucceeds(t *testing.T) {
	prev := &Period{PeriodTo: types.MustDate("2024-01-31")}

	next := &Period{PeriodFrom: types.MustDate("2024-02-01")}
	assert.True(t, next.Succeeds(prev))

	gap := &Period{PeriodFrom: types.MustDate("2024-02-02")}
	assert.False(t, gap.Succeeds(prev))
}
