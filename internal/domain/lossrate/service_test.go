package lossrate

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
)

// --- in-memory fakes ---

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeConfigRepo struct {
	configs []*Config
}

func (r *fakeConfigRepo) Create(_ context.Context, c *Config) error {
	r.configs = append(r.configs, c)
	return nil
}

func (r *fakeConfigRepo) GetByID(_ context.Context, configID id.ID) (*Config, error) {
	for _, c := range r.configs {
		if c.ID == configID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) Update(ctx context.Context, c *Config) error {
	existing, _ := r.GetByID(ctx, c.ID)
	if existing == nil {
		return apperror.NewNotFound("loss rate config", c.ID.String())
	}
	*existing = *c
	existing.Version++
	return nil
}

func (r *fakeConfigRepo) Delete(_ context.Context, configID id.ID) error {
	for i, c := range r.configs {
		if c.ID == configID {
			r.configs = append(r.configs[:i], r.configs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeConfigRepo) List(_ context.Context, filter ListFilter) ([]Config, error) {
	var out []Config
	for _, c := range r.configs {
		if filter.StoreID != nil && c.StoreID != *filter.StoreID {
			continue
		}
		if filter.Category != nil && c.Category != *filter.Category {
			continue
		}
		if filter.OpenOnly && !c.IsOpen() {
			continue
		}
		if filter.AsOf != nil && !c.Covers(*filter.AsOf) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeConfigRepo) FindOpenForUpdate(_ context.Context, storeID id.ID, category product.Category) (*Config, error) {
	for _, c := range r.configs {
		if c.StoreID == storeID && c.Category == category && c.IsOpen() {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConfigRepo) LatestEnd(_ context.Context, storeID id.ID, category product.Category) (*types.Date, error) {
	var latest *types.Date
	for _, c := range r.configs {
		if c.StoreID != storeID || c.Category != category || c.EffectiveTo == nil {
			continue
		}
		if latest == nil || c.EffectiveTo.After(*latest) {
			end := *c.EffectiveTo
			latest = &end
		}
	}
	return latest, nil
}

func (r *fakeConfigRepo) ResolveAt(_ context.Context, storeID id.ID, category product.Category, day types.Date) (*Config, error) {
	for _, c := range r.configs {
		if c.StoreID == storeID && c.Category == category && c.Covers(day) {
			return c, nil
		}
	}
	return nil, nil
}

type fakeStoreRepo struct {
	store.Repository
	known map[id.ID]bool
}

func (r *fakeStoreRepo) Exists(_ context.Context, storeID id.ID) (bool, error) {
	return r.known[storeID], nil
}

type fakeRefChecker struct {
	referenced map[id.ID]bool
}

func (r *fakeRefChecker) ConfigReferenced(_ context.Context, configID id.ID) (bool, error) {
	return r.referenced[configID], nil
}

// --- fixture ---

type rateFixture struct {
	svc     *Service
	repo    *fakeConfigRepo
	refs    *fakeRefChecker
	storeID id.ID
}

func newFixture(t *testing.T) *rateFixture {
	t.Helper()

	f := &rateFixture{
		repo:    &fakeConfigRepo{},
		refs:    &fakeRefChecker{referenced: map[id.ID]bool{}},
		storeID: id.New(),
	}
	stores := &fakeStoreRepo{known: map[id.ID]bool{f.storeID: true}}
	f.svc = NewService(f.repo, stores, f.refs, nil, stubTxManager{})
	return f
}

func (f *rateFixture) config(rate, from string) *Config {
	return NewConfig(f.storeID, product.CategoryGasoline, types.MustRate(rate), types.MustDate(from))
}

// --- tests ---

func TestCreateFirstWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)
	assert.True(t, created.IsOpen())
	assert.Equal(t, "system", created.CreatedBy)
	assert.Len(t, f.repo.configs, 1)
}

func TestCreateBoundedWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.config("0.0025", "2024-01-01")
	end := types.MustDate("2024-06-30")
	c.EffectiveTo = &end
	notes := "backfilled H1 rate"
	c.Notes = &notes

	created, err := f.svc.Create(ctx, c)
	require.NoError(t, err)
	assert.False(t, created.IsOpen())
	require.NotNil(t, created.Notes)
	assert.Equal(t, "backfilled H1 rate", *created.Notes)

	// Days past the bound resolve to nothing until a successor opens.
	res, err := f.svc.ResolveEffective(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2024-06-30"))
	require.NoError(t, err)
	require.NotNil(t, res.Config)

	res, err = f.svc.ResolveEffective(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2024-07-01"))
	require.NoError(t, err)
	assert.Nil(t, res.Config)
	assert.True(t, res.Rate.IsZero())
}

func TestCreateBoundedWindowAutoClosesOpenOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prior, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	c := f.config("0.0030", "2024-04-01")
	end := types.MustDate("2024-06-30")
	c.EffectiveTo = &end

	_, err = f.svc.Create(ctx, c)
	require.NoError(t, err)

	require.NotNil(t, prior.EffectiveTo)
	assert.Equal(t, "2024-03-31", prior.EffectiveTo.String())
}

func TestCreateAutoClosesPriorWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prior, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	next, err := f.svc.Create(ctx, f.config("0.0030", "2024-03-01"))
	require.NoError(t, err)

	// The prior window now ends the day before the successor starts.
	require.NotNil(t, prior.EffectiveTo)
	assert.Equal(t, "2024-02-29", prior.EffectiveTo.String())
	assert.True(t, next.IsOpen())

	// Exactly one window covers any given day.
	onBoundary, err := f.repo.ResolveAt(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, prior.ID, onBoundary.ID)

	afterBoundary, err := f.repo.ResolveAt(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, next.ID, afterBoundary.ID)
}

func TestCreateMustStartAfterOpenWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.config("0.0025", "2024-03-01"))
	require.NoError(t, err)

	// Same start day as the open window is refused.
	_, err = f.svc.Create(ctx, f.config("0.0030", "2024-03-01"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	// Starting before it would retroactively rewrite history.
	_, err = f.svc.Create(ctx, f.config("0.0030", "2024-01-15"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestCreateOverlapsClosedWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	closed := f.config("0.0025", "2024-01-01")
	end := types.MustDate("2024-06-30")
	closed.EffectiveTo = &end
	f.repo.configs = append(f.repo.configs, closed)

	_, err := f.svc.Create(ctx, f.config("0.0030", "2024-06-15"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	// A gap after the closed window is fine; resolution just yields zero
	// inside the gap.
	_, err = f.svc.Create(ctx, f.config("0.0030", "2024-09-01"))
	assert.NoError(t, err)
}

func TestCreateInvalidRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.config("0.5", "2024-01-01"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	_, err = f.svc.Create(ctx, f.config("-0.001", "2024-01-01"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestCreateStoreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := NewConfig(id.New(), product.CategoryGasoline, types.MustRate("0.0025"), types.MustDate("2024-01-01"))
	_, err := f.svc.Create(ctx, c)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestUpdateRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	rate := types.MustRate("0.0030")
	updated, err := f.svc.Update(ctx, created.ID, UpdatePatch{Rate: &rate})
	require.NoError(t, err)
	assert.True(t, updated.Rate.Equal(rate))
	assert.Equal(t, "2024-01-01", updated.EffectiveFrom.String())
}

func TestUpdateWindowAndNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	from := types.MustDate("2024-02-01")
	to := types.MustDate("2024-08-31")
	notes := "corrected start per audit"
	updated, err := f.svc.Update(ctx, created.ID, UpdatePatch{
		EffectiveFrom: &from,
		EffectiveTo:   &to,
		Notes:         &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", updated.EffectiveFrom.String())
	require.NotNil(t, updated.EffectiveTo)
	assert.Equal(t, "2024-08-31", updated.EffectiveTo.String())
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "corrected start per audit", *updated.Notes)

	// Untouched fields keep their value.
	assert.True(t, updated.Rate.Equal(types.MustRate("0.0025")))
}

func TestUpdateRefusedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)
	f.refs.referenced[created.ID] = true

	rate := types.MustRate("0.0030")
	_, err = f.svc.Update(ctx, created.ID, UpdatePatch{Rate: &rate})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConfigInUse, appErr.Code)

	// The stored rate is untouched.
	stored, _ := f.repo.GetByID(ctx, created.ID)
	assert.True(t, stored.Rate.Equal(types.MustRate("0.0025")))
}

func TestUpdateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := types.MustRate("0.5")
	_, err := f.svc.Update(ctx, id.New(), UpdatePatch{Rate: &bad})
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	ok := types.MustRate("0.0030")
	_, err = f.svc.Update(ctx, id.New(), UpdatePatch{Rate: &ok})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	// An end before the start fails the window invariant.
	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-03-01"))
	require.NoError(t, err)
	to := types.MustDate("2024-01-31")
	_, err = f.svc.Update(ctx, created.ID, UpdatePatch{EffectiveTo: &to})
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	assert.Empty(t, f.repo.configs)

	assert.True(t, apperror.IsNotFound(f.svc.Delete(ctx, created.ID)))
}

func TestDeleteRefusedWhenReferenced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)
	f.refs.referenced[created.ID] = true

	err = f.svc.Delete(ctx, created.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConfigInUse, appErr.Code)
	assert.Len(t, f.repo.configs, 1)
}

func TestResolveEffective(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	res, err := f.svc.ResolveEffective(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2024-05-01"))
	require.NoError(t, err)
	require.NotNil(t, res.Config)
	assert.Equal(t, created.ID, res.Config.ID)
	assert.True(t, res.Rate.Equal(types.MustRate("0.0025")))
}

func TestResolveEffectiveUncovered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.config("0.0025", "2024-01-01"))
	require.NoError(t, err)

	// Before the window starts: zero rate, no config.
	res, err := f.svc.ResolveEffective(ctx, f.storeID, product.CategoryGasoline, types.MustDate("2023-12-31"))
	require.NoError(t, err)
	assert.Nil(t, res.Config)
	assert.True(t, res.Rate.IsZero())

	// Different category is never covered by a gasoline window.
	res, err = f.svc.ResolveEffective(ctx, f.storeID, product.CategoryDiesel, types.MustDate("2024-05-01"))
	require.NoError(t, err)
	assert.Nil(t, res.Config)
}

func TestResolveEffectiveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ResolveEffective(ctx, f.storeID, product.Category("kerosene"), types.MustDate("2024-05-01"))
	assert.True(t, apperror.IsValidation(err), "got %v", err)

	_, err = f.svc.ResolveEffective(ctx, f.storeID, product.CategoryGasoline, types.Date{})
	assert.True(t, apperror.IsValidation(err), "got %v", err)
}

func TestConfigCovers(t *testing.T) {
	c := NewConfig(id.New(), product.CategoryGasoline, types.MustRate("0.0025"), types.MustDate("2024-01-01"))
	end := types.MustDate("2024-06-30")
	c.EffectiveTo = &end

	assert.False(t, c.Covers(types.MustDate("2023-12-31")))
	assert.True(t, c.Covers(types.MustDate("2024-01-01")))
	assert.True(t, c.Covers(types.MustDate("2024-06-30")))
	assert.False(t, c.Covers(types.MustDate("2024-07-01")))
}
