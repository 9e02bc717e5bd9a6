package closing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

func TestLossAmount(t *testing.T) {
	tests := []struct {
		name      string
		exportQty string
		rate      string
		want      string
	}{
		{"quarter percent of 300", "300", "0.0025", "0.75"},
		{"rounds to four places", "1234.5678", "0.0025", "3.0864"},
		{"half rounds up", "0.02", "0.0025", "0.0001"},
		{"zero rate books nothing", "300", "0", "0"},
		{"zero export books nothing", "0", "0.0025", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LossAmount(types.MustQuantity(tt.exportQty), types.MustRate(tt.rate))
			assert.True(t, got.Equal(types.MustQuantity(tt.want)),
				"LossAmount(%s, %s) = %s, want %s", tt.exportQty, tt.rate, got, tt.want)
		})
	}
}

func TestClosingBalance(t *testing.T) {
	got := ClosingBalance(
		types.MustQuantity("1000"),
		types.MustQuantity("500"),
		types.MustQuantity("300"),
		types.MustQuantity("0.75"),
	)
	assert.True(t, got.Equal(types.MustQuantity("1199.25")), "got %s", got)
}

func TestCompute(t *testing.T) {
	line := TankFigures{
		OpeningBalance: types.MustQuantity("1000"),
		ImportQuantity: types.MustQuantity("500"),
		ExportQuantity: types.MustQuantity("300"),
		LossRate:       types.MustRate("0.0025"),
	}
	Compute(&line)

	assert.True(t, line.LossAmount.Equal(types.MustQuantity("0.75")), "loss %s", line.LossAmount)
	assert.True(t, line.ClosingBalance.Equal(types.MustQuantity("1199.25")), "closing %s", line.ClosingBalance)
}

func TestComputeNegativeClosingAllowed(t *testing.T) {
	// Book exports may exceed book stock; the engine reports the deficit
	// instead of blocking the close.
	line := TankFigures{
		OpeningBalance: types.MustQuantity("100"),
		ExportQuantity: types.MustQuantity("150"),
		LossRate:       types.MustRate("0.0025"),
	}
	Compute(&line)

	assert.True(t, line.ClosingBalance.IsNegative(), "closing %s", line.ClosingBalance)
}

func TestSumByCategory(t *testing.T) {
	lines := []TankFigures{
		{
			Category:       product.CategoryDiesel,
			OpeningBalance: types.MustQuantity("2000"),
			ImportQuantity: types.MustQuantity("100"),
			ExportQuantity: types.MustQuantity("400"),
			LossAmount:     types.MustQuantity("1"),
			ClosingBalance: types.MustQuantity("1699"),
		},
		{
			Category:       product.CategoryGasoline,
			OpeningBalance: types.MustQuantity("1000"),
			ImportQuantity: types.MustQuantity("500"),
			ExportQuantity: types.MustQuantity("300"),
			LossAmount:     types.MustQuantity("0.75"),
			ClosingBalance: types.MustQuantity("1199.25"),
		},
		{
			Category:       product.CategoryGasoline,
			OpeningBalance: types.MustQuantity("500"),
			ImportQuantity: types.MustQuantity("0"),
			ExportQuantity: types.MustQuantity("200"),
			LossAmount:     types.MustQuantity("0.5"),
			ClosingBalance: types.MustQuantity("299.5"),
		},
	}

	totals := SumByCategory(lines)
	assert.Len(t, totals, 2)

	// Canonical order: gasoline first regardless of input order.
	assert.Equal(t, product.CategoryGasoline, totals[0].Category)
	assert.True(t, totals[0].OpeningBalance.Equal(types.MustQuantity("1500")))
	assert.True(t, totals[0].ExportQuantity.Equal(types.MustQuantity("500")))
	assert.True(t, totals[0].LossAmount.Equal(types.MustQuantity("1.25")))
	assert.True(t, totals[0].ClosingBalance.Equal(types.MustQuantity("1498.75")))

	assert.Equal(t, product.CategoryDiesel, totals[1].Category)
	assert.True(t, totals[1].ClosingBalance.Equal(types.MustQuantity("1699")))
}

func TestSumByCategoryEmpty(t *testing.T) {
	assert.Empty(t, SumByCategory(nil))
}
