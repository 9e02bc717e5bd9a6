package reports

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
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/domain/lossrate"
)

// --- in-memory fakes ---

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (stubTxManager) ReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakePeriods struct {
	closing.Repository
	rows []closing.Period
}

func (r *fakePeriods) Latest(_ context.Context, tankID id.ID) (*closing.Period, error) {
	var last *closing.Period
	for i := range r.rows {
		p := &r.rows[i]
		if p.TankID != tankID {
			continue
		}
		if last == nil || p.PeriodTo.After(last.PeriodTo) {
			last = p
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (r *fakePeriods) ListIntersecting(_ context.Context, storeID id.ID, from, to types.Date) ([]closing.Period, error) {
	var out []closing.Period
	for _, p := range r.rows {
		if p.StoreID == storeID && !p.PeriodFrom.After(to) && !p.PeriodTo.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeStores struct {
	store.Repository
	stores map[id.ID]*store.Store
}

func (r *fakeStores) GetByID(_ context.Context, storeID id.ID) (*store.Store, error) {
	return r.stores[storeID], nil
}

type fakeTanks struct {
	tank.Repository
	tanks []tank.StoreTank
}

func (r *fakeTanks) ListByStore(_ context.Context, storeID id.ID) ([]tank.StoreTank, error) {
	var out []tank.StoreTank
	for _, t := range r.tanks {
		if t.StoreID == storeID {
			out = append(out, t)
		}
	}
	return out, nil
}

// fakeMovements records the ranges it was asked about so tests can assert
// where the open slice starts.
type fakeMovements struct {
	ledger.Repository
	totals     map[id.ID]ledger.Totals
	askedFrom  map[id.ID]types.Date
	askedUntil map[id.ID]types.Date
}

func (r *fakeMovements) SumRange(_ context.Context, tankID id.ID, from, to types.Date) (ledger.Totals, error) {
	if r.askedFrom == nil {
		r.askedFrom = map[id.ID]types.Date{}
		r.askedUntil = map[id.ID]types.Date{}
	}
	r.askedFrom[tankID] = from
	r.askedUntil[tankID] = to
	return r.totals[tankID], nil
}

type fakeRates struct {
	rate types.Rate
}

func (r *fakeRates) ResolveEffective(_ context.Context, _ id.ID, _ product.Category, _ types.Date) (lossrate.Resolution, error) {
	if r.rate.IsZero() {
		return lossrate.Resolution{}, nil
	}
	cfg := &lossrate.Config{ID: id.New(), Rate: r.rate}
	return lossrate.Resolution{Config: cfg, Rate: r.rate}, nil
}

// --- fixture ---

type reportFixture struct {
	svc     *Service
	periods *fakePeriods
	tanks   *fakeTanks
	movs    *fakeMovements
	storeID id.ID
	tankID  id.ID
}

func newFixture(t *testing.T) *reportFixture {
	t.Helper()

	st := store.NewStore("ST-001", "Station North")
	anchor := types.MustDate("2024-01-01")

	tk := tank.NewTank("T-01", "Tank 1", st.ID, id.New())
	tk.InitialStock = types.MustQuantity("1000")
	tk.InitialStockDate = &anchor

	f := &reportFixture{
		periods: &fakePeriods{},
		tanks: &fakeTanks{tanks: []tank.StoreTank{{
			Tank:        *tk,
			ProductName: "Gasoline A-95",
			Category:    product.CategoryGasoline,
		}}},
		movs: &fakeMovements{totals: map[id.ID]ledger.Totals{
			tk.ID: {
				ImportQuantity: types.MustQuantity("500"),
				ExportQuantity: types.MustQuantity("300"),
			},
		}},
		storeID: st.ID,
		tankID:  tk.ID,
	}

	stores := &fakeStores{stores: map[id.ID]*store.Store{st.ID: st}}
	f.svc = NewService(f.periods, stores, f.tanks, f.movs, &fakeRates{rate: types.MustRate("0.0025")}, stubTxManager{})
	return f
}

func (f *reportFixture) request(from, to string) Request {
	return Request{
		StoreID:   f.storeID,
		RangeFrom: types.MustDate(from),
		RangeTo:   types.MustDate(to),
	}
}

func (f *reportFixture) seedPeriod(from, to, opening, closingBal string) {
	f.periods.rows = append(f.periods.rows, closing.Period{
		ID:             id.New(),
		BatchID:        id.New(),
		StoreID:        f.storeID,
		TankID:         f.tankID,
		PeriodFrom:     types.MustDate(from),
		PeriodTo:       types.MustDate(to),
		OpeningBalance: types.MustQuantity(opening),
		ImportQuantity: types.MustQuantity("500"),
		ExportQuantity: types.MustQuantity("300"),
		LossRate:       types.MustRate("0.0025"),
		LossAmount:     types.MustQuantity("0.75"),
		ClosingBalance: types.MustQuantity(closingBal),
	})
}

// --- tests ---

func TestPeriodReportClosedPlusOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1000", "1199.25")

	report, err := f.svc.PeriodReport(ctx, f.request("2024-01-01", "2024-02-29"))
	require.NoError(t, err)
	require.Len(t, report.Tanks, 1)
	require.Len(t, report.Tanks[0].Slices, 2)

	closedSlice := report.Tanks[0].Slices[0]
	assert.Equal(t, SliceClosed, closedSlice.Status)
	assert.Equal(t, "2024-01-01", closedSlice.PeriodFrom.String())
	assert.True(t, closedSlice.ClosingBalance.Equal(types.MustQuantity("1199.25")))

	openSlice := report.Tanks[0].Slices[1]
	assert.Equal(t, SliceOpen, openSlice.Status)
	assert.Equal(t, "2024-02-01", openSlice.PeriodFrom.String())
	assert.Equal(t, "2024-02-29", openSlice.PeriodTo.String())
	assert.True(t, openSlice.OpeningBalance.Equal(types.MustQuantity("1199.25")),
		"open slice carries forward from the chain head")
	assert.True(t, openSlice.LossAmount.Equal(types.MustQuantity("0.75")))
	assert.True(t, openSlice.ClosingBalance.Equal(types.MustQuantity("1398.50")),
		"closing %s", openSlice.ClosingBalance)
}

func TestPeriodReportOpenSliceNotClippedToRangeFrom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1000", "1199.25")

	// The range starts in March but the chain stops at the end of January:
	// the open slice still starts on February 1st, because its opening
	// balance is only meaningful there.
	report, err := f.svc.PeriodReport(ctx, f.request("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	require.Len(t, report.Tanks[0].Slices, 1)

	openSlice := report.Tanks[0].Slices[0]
	assert.Equal(t, SliceOpen, openSlice.Status)
	assert.Equal(t, "2024-02-01", openSlice.PeriodFrom.String())
	assert.Equal(t, "2024-02-01", f.movs.askedFrom[f.tankID].String())
	assert.Equal(t, "2024-03-31", f.movs.askedUntil[f.tankID].String())
}

func TestPeriodReportNoOpenSliceWhenChainCoversRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-03-31", "1000", "1199.25")

	report, err := f.svc.PeriodReport(ctx, f.request("2024-01-01", "2024-03-31"))
	require.NoError(t, err)
	require.Len(t, report.Tanks[0].Slices, 1)
	assert.Equal(t, SliceClosed, report.Tanks[0].Slices[0].Status)
}

func TestPeriodReportVirginTank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The open slice of an unclosed tank starts at its initial stock date.
	report, err := f.svc.PeriodReport(ctx, f.request("2024-03-01", "2024-03-31"))
	require.NoError(t, err)
	require.Len(t, report.Tanks[0].Slices, 1)

	openSlice := report.Tanks[0].Slices[0]
	assert.Equal(t, SliceOpen, openSlice.Status)
	assert.Equal(t, "2024-01-01", openSlice.PeriodFrom.String())
	assert.True(t, openSlice.OpeningBalance.Equal(types.MustQuantity("1000")))
}

func TestPeriodReportTankAnchoredAfterRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anchor := types.MustDate("2024-06-01")
	f.tanks.tanks[0].InitialStockDate = &anchor

	report, err := f.svc.PeriodReport(ctx, f.request("2024-01-01", "2024-01-31"))
	require.NoError(t, err)
	require.Len(t, report.Tanks, 1)
	assert.Empty(t, report.Tanks[0].Slices, "the tank does not exist yet inside the range")
	assert.Empty(t, report.Totals)
}

func TestPeriodReportTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedPeriod("2024-01-01", "2024-01-31", "1000", "1199.25")

	report, err := f.svc.PeriodReport(ctx, f.request("2024-01-01", "2024-02-29"))
	require.NoError(t, err)
	require.Len(t, report.Totals, 1)

	total := report.Totals[0]
	assert.Equal(t, product.CategoryGasoline, total.Category)
	// Opening of the first slice, closing of the last, flows summed across
	// both slices.
	assert.True(t, total.OpeningBalance.Equal(types.MustQuantity("1000")), "opening %s", total.OpeningBalance)
	assert.True(t, total.ClosingBalance.Equal(types.MustQuantity("1398.50")), "closing %s", total.ClosingBalance)
	assert.True(t, total.ImportQuantity.Equal(types.MustQuantity("1000")))
	assert.True(t, total.ExportQuantity.Equal(types.MustQuantity("600")))
	assert.True(t, total.LossAmount.Equal(types.MustQuantity("1.50")))
}

func TestPeriodReportStoreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("2024-01-01", "2024-01-31")
	req.StoreID = id.New()

	_, err := f.svc.PeriodReport(ctx, req)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestRequestValidate(t *testing.T) {
	ctx := context.Background()

	req := Request{}
	assert.True(t, apperror.IsValidation(req.Validate(ctx)))

	req = Request{
		StoreID:   id.New(),
		RangeFrom: types.MustDate("2024-02-01"),
		RangeTo:   types.MustDate("2024-01-31"),
	}
	assert.True(t, apperror.IsValidation(req.Validate(ctx)))
}
