// Package ledger_repo provides the PostgreSQL implementation of the fuel
// movement ledger.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/infrastructure/storage/postgres"
)

const movementsTable = "reg_fuel_movements"

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.Repository = (*MovementRepo)(nil)

var movementColumns = postgres.ExtractDBColumns[ledger.Movement]()

// NewMovementRepo creates a new movement ledger repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create appends a movement row.
func (r *MovementRepo) Create(ctx context.Context, m *ledger.Movement) error {
	data := postgres.StructToMap(m)

	q := r.builder.Insert(movementsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*ledger.Movement, error) {
	q := r.builder.
		Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m ledger.Movement
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}

	return &m, nil
}

// List retrieves movements with filtering, newest first.
func (r *MovementRepo) List(ctx context.Context, filter ledger.ListFilter) ([]ledger.Movement, int64, error) {
	q := r.builder.
		Select(movementColumns...).
		From(movementsTable)

	if filter.TankID != nil {
		q = q.Where(squirrel.Eq{"tank_id": *filter.TankID})
	}
	if filter.StoreID != nil {
		q = q.Where(squirrel.Eq{"store_id": *filter.StoreID})
	}
	if filter.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"movement_date": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	q = q.OrderBy("movement_date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}

	return movements, total, nil
}

// SumRange aggregates import/export quantities of a tank over [from, to].
func (r *MovementRepo) SumRange(ctx context.Context, tankID id.ID, from, to types.Date) (ledger.Totals, error) {
	sql := `
		SELECT
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'import'), 0) AS import_quantity,
			COALESCE(SUM(quantity) FILTER (WHERE direction = 'export'), 0) AS export_quantity
		FROM reg_fuel_movements
		WHERE tank_id = $1
		  AND movement_date BETWEEN $2 AND $3
	`

	var totals ledger.Totals
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &totals, sql, tankID, from, to); err != nil {
		return ledger.Totals{}, fmt.Errorf("sum movements: %w", err)
	}

	return totals, nil
}
