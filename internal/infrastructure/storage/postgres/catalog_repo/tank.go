package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fueldesk/internal/core/id"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/infrastructure/storage/postgres"
)

// TankRepo implements tank.Repository.
type TankRepo struct {
	*BaseCatalogRepo[*tank.Tank]
}

var tankColumns = postgres.ExtractDBColumns[tank.Tank]()

// NewTankRepo creates a tank repository.
func NewTankRepo(txManager *postgres.TxManager) *TankRepo {
	return &TankRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_tank",
			tankColumns,
			func() *tank.Tank { return &tank.Tank{} },
		),
	}
}

// ListByStore returns active tanks of a store joined with their product name
// and category, ordered by code.
func (r *TankRepo) ListByStore(ctx context.Context, storeID id.ID) ([]tank.StoreTank, error) {
	cols := make([]string, 0, len(tankColumns)+2)
	for _, c := range tankColumns {
		cols = append(cols, "t."+c)
	}
	cols = append(cols, "p.name AS product_name", "p.category AS product_category")

	q := r.Builder().
		Select(strings.Join(cols, ", ")).
		From("cat_tank t").
		Join("cat_product p ON p.id = t.product_id").
		Where(squirrel.Eq{"t.store_id": storeID}).
		Where(squirrel.Eq{"t.deletion_mark": false}).
		Where(squirrel.Eq{"t.is_active": true}).
		OrderBy("t.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var tanks []tank.StoreTank
	if err := pgxscan.Select(ctx, r.Querier(ctx), &tanks, sql, args...); err != nil {
		return nil, fmt.Errorf("list tanks by store: %w", err)
	}

	return tanks, nil
}
