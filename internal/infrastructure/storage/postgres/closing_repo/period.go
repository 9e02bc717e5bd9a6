// Package closing_repo provides the PostgreSQL implementation of closing
// period persistence.
package closing_repo

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
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/infrastructure/storage/postgres"
)

const periodsTable = "closing_period"

// PeriodRepo implements closing.Repository.
type PeriodRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ closing.Repository = (*PeriodRepo)(nil)

var periodColumns = postgres.ExtractDBColumns[closing.Period]()

// NewPeriodRepo creates a new closing period repository.
func NewPeriodRepo(txManager *postgres.TxManager) *PeriodRepo {
	return &PeriodRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Latest returns the chronologically last period of a tank, or nil.
func (r *PeriodRepo) Latest(ctx context.Context, tankID id.ID) (*closing.Period, error) {
	return r.latest(ctx, tankID, false)
}

// LatestForUpdate is Latest with a FOR UPDATE row lock.
func (r *PeriodRepo) LatestForUpdate(ctx context.Context, tankID id.ID) (*closing.Period, error) {
	return r.latest(ctx, tankID, true)
}

func (r *PeriodRepo) latest(ctx context.Context, tankID id.ID, forUpdate bool) (*closing.Period, error) {
	q := r.builder.
		Select(periodColumns...).
		From(periodsTable).
		Where(squirrel.Eq{"tank_id": tankID}).
		OrderBy("period_to DESC").
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	return r.findOne(ctx, q)
}

// InsertBatch persists the rows of one closing batch using the COPY protocol
// when inside a transaction. The unique key on (tank_id, period_from,
// period_to) turns a lost closing race into a conflict instead of duplicate
// rows.
func (r *PeriodRepo) InsertBatch(ctx context.Context, periods []closing.Period) error {
	if len(periods) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(periods))
		for i := range periods {
			p := &periods[i]
			rows = append(rows, []any{
				p.ID, p.BatchID, p.StoreID, p.TankID,
				p.PeriodFrom, p.PeriodTo,
				p.OpeningBalance, p.ImportQuantity, p.ExportQuantity,
				p.LossRate, p.LossAmount, p.ClosingBalance,
				p.LossConfigID, p.ClosedAt, p.ClosedBy, p.Notes,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, periodsTable, periodColumns, rows); err != nil {
			return r.mapInsertErr(err, periods[0].StoreID)
		}
		return nil
	}

	q := r.builder.Insert(periodsTable).Columns(periodColumns...)
	for i := range periods {
		p := &periods[i]
		q = q.Values(
			p.ID, p.BatchID, p.StoreID, p.TankID,
			p.PeriodFrom, p.PeriodTo,
			p.OpeningBalance, p.ImportQuantity, p.ExportQuantity,
			p.LossRate, p.LossAmount, p.ClosingBalance,
			p.LossConfigID, p.ClosedAt, p.ClosedBy, p.Notes,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapInsertErr(err, periods[0].StoreID)
	}

	return nil
}

func (r *PeriodRepo) mapInsertErr(err error, storeID id.ID) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.NewClosingRaceLost(storeID.String()).WithCause(err)
	}
	return fmt.Errorf("insert closing batch: %w", err)
}

// GetByID retrieves a period by ID.
func (r *PeriodRepo) GetByID(ctx context.Context, periodID id.ID) (*closing.Period, error) {
	q := r.builder.
		Select(periodColumns...).
		From(periodsTable).
		Where(squirrel.Eq{"id": periodID}).
		Limit(1)

	return r.findOne(ctx, q)
}

// ListBatch returns the rows closed together as (store, from, to), ordered
// by tank.
func (r *PeriodRepo) ListBatch(ctx context.Context, storeID id.ID, from, to types.Date) ([]closing.Period, error) {
	q := r.builder.
		Select(periodColumns...).
		From(periodsTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"period_from": from}).
		Where(squirrel.Eq{"period_to": to}).
		OrderBy("tank_id")

	return r.findMany(ctx, q)
}

// ListIntersecting returns a store's periods that overlap [from, to],
// ordered by tank then period_from.
func (r *PeriodRepo) ListIntersecting(ctx context.Context, storeID id.ID, from, to types.Date) ([]closing.Period, error) {
	q := r.builder.
		Select(periodColumns...).
		From(periodsTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.LtOrEq{"period_from": to}).
		Where(squirrel.GtOrEq{"period_to": from}).
		OrderBy("tank_id", "period_from")

	return r.findMany(ctx, q)
}

// ExistsAfter reports whether the tank has any period starting after the
// given day.
func (r *PeriodRepo) ExistsAfter(ctx context.Context, tankID id.ID, day types.Date) (bool, error) {
	q := r.builder.
		Select("1").
		From(periodsTable).
		Where(squirrel.Eq{"tank_id": tankID}).
		Where(squirrel.Gt{"period_from": day}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists after: %w", err)
	}

	return true, nil
}

// DeleteBatch removes the rows of one closing batch.
func (r *PeriodRepo) DeleteBatch(ctx context.Context, storeID id.ID, from, to types.Date) (int64, error) {
	q := r.builder.
		Delete(periodsTable).
		Where(squirrel.Eq{"store_id": storeID}).
		Where(squirrel.Eq{"period_from": from}).
		Where(squirrel.Eq{"period_to": to})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete closing batch: %w", err)
	}

	return result.RowsAffected(), nil
}

// ConfigReferenced reports whether any period references the loss-rate
// config. Implements lossrate.ReferenceChecker.
func (r *PeriodRepo) ConfigReferenced(ctx context.Context, configID id.ID) (bool, error) {
	q := r.builder.
		Select("1").
		From(periodsTable).
		Where(squirrel.Eq{"loss_config_id": configID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("config referenced: %w", err)
	}

	return true, nil
}

func (r *PeriodRepo) findOne(ctx context.Context, q squirrel.SelectBuilder) (*closing.Period, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p closing.Period
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get closing period: %w", err)
	}

	return &p, nil
}

func (r *PeriodRepo) findMany(ctx context.Context, q squirrel.SelectBuilder) ([]closing.Period, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var periods []closing.Period
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &periods, sql, args...); err != nil {
		return nil, fmt.Errorf("list closing periods: %w", err)
	}

	return periods, nil
}
