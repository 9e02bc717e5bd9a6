// Package lossrate_repo provides the PostgreSQL implementation of loss rate
// config persistence.
package lossrate_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fueldesk/internal/core/apperror"
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/internal/infrastructure/storage/postgres"
)

const configTable = "loss_rate_config"

// ConfigRepo implements lossrate.Repository.
type ConfigRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ lossrate.Repository = (*ConfigRepo)(nil)

var configColumns = postgres.ExtractDBColumns[lossrate.Config]()

// NewConfigRepo creates a new loss rate config repository.
func NewConfigRepo(txManager *postgres.TxManager) *ConfigRepo {
	return &ConfigRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a config row. The partial unique index on open windows maps
// a concurrent duplicate to a conflict error.
func (r *ConfigRepo) Create(ctx context.Context, c *lossrate.Config) error {
	data := postgres.StructToMap(c)

	q := r.builder.Insert(configTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("an open rate window already exists for this store and category").
				WithDetail("store_id", c.StoreID.String()).
				WithDetail("category", string(c.Category)).
				WithCause(err)
		}
		return fmt.Errorf("insert loss rate config: %w", err)
	}

	return nil
}

// GetByID retrieves a config by ID.
func (r *ConfigRepo) GetByID(ctx context.Context, configID id.ID) (*lossrate.Config, error) {
	q := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(squirrel.Eq{"id": configID}).
		Limit(1)

	return r.findOne(ctx, q)
}

// Update saves mutable fields with an optimistic version check.
func (r *ConfigRepo) Update(ctx context.Context, c *lossrate.Config) error {
	q := r.builder.
		Update(configTable).
		Set("rate", c.Rate).
		Set("effective_from", c.EffectiveFrom).
		Set("effective_to", c.EffectiveTo).
		Set("notes", c.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Set("updated_by", c.UpdatedBy).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID}).
		Where(squirrel.Eq{"version": c.Version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update loss rate config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(configTable, c.ID.String())
	}

	c.Version++
	return nil
}

// Delete removes a config row.
func (r *ConfigRepo) Delete(ctx context.Context, configID id.ID) error {
	q := r.builder.Delete(configTable).Where(squirrel.Eq{"id": configID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConfigInUse(configID.String()).WithCause(err)
		}
		return fmt.Errorf("delete loss rate config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(configTable, configID.String())
	}

	return nil
}

// List retrieves configs with filtering, newest window first.
func (r *ConfigRepo) List(ctx context.Context, filter lossrate.ListFilter) ([]lossrate.Config, error) {
	q := r.builder.
		Select(configColumns...).
		From(configTable)

	if filter.StoreID != nil {
		q = q.Where(squirrel.Eq{"store_id": *filter.StoreID})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"product_category": *filter.Category})
	}
	if filter.OpenOnly {
		q = q.Where(squirrel.Eq{"effective_to": nil})
	}
	if filter.AsOf != nil {
		q = q.Where(squirrel.LtOrEq{"effective_from": *filter.AsOf}).
			Where(squirrel.Or{
				squirrel.Eq{"effective_to": nil},
				squirrel.GtOrEq{"effective_to": *filter.AsOf},
			})
	}

	q = q.OrderBy("store_id", "product_category", "effective_from DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var configs []lossrate.Config
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &configs, sql, args...); err != nil {
		return nil, fmt.Errorf("list loss rate configs: %w", err)
	}

	return configs, nil
}

// FindOpenForUpdate returns the open window of (store, category) with a row
// lock, or nil when none exists.
func (r *ConfigRepo) FindOpenForUpdate(ctx context.Context, storeID id.ID, category product.Category) (*lossrate.Config, error) {
	q := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"product_category": category}).
		Where(squirrel.Eq{"effective_to": nil}).
		Suffix("FOR UPDATE")

	return r.findOne(ctx, q)
}

// LatestEnd returns the greatest effective_to among closed windows of
// (store, category), or nil when the pair has no closed windows.
func (r *ConfigRepo) LatestEnd(ctx context.Context, storeID id.ID, category product.Category) (*types.Date, error) {
	sql := `
		SELECT MAX(effective_to)
		FROM loss_rate_config
		WHERE store_id = $1 AND product_category = $2 AND effective_to IS NOT NULL
	`

	var latest *types.Date
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, storeID, category).Scan(&latest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest window end: %w", err)
	}

	return latest, nil
}

// ResolveAt returns the window of (store, category) covering the given day,
// or nil when no window covers it.
func (r *ConfigRepo) ResolveAt(ctx context.Context, storeID id.ID, category product.Category, day types.Date) (*lossrate.Config, error) {
	q := r.builder.
		Select(configColumns...).
		From(configTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"product_category": category}).
		Where(squirrel.LtOrEq{"effective_from": day}).
		Where(squirrel.Or{
			squirrel.Eq{"effective_to": nil},
			squirrel.GtOrEq{"effective_to": day},
		}).
		Limit(1)

	return r.findOne(ctx, q)
}

func (r *ConfigRepo) findOne(ctx context.Context, q squirrel.SelectBuilder) (*lossrate.Config, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c lossrate.Config
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loss rate config: %w", err)
	}

	return &c, nil
}
