package closing

import (
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
)

// LossAmount books natural loss as a share of the exported volume, rounded
// half-up to four decimal places. This is the only place the loss formula
// lives; preview, execute and the open-period report all call it so their
// figures can never drift apart.
func LossAmount(exportQty types.Quantity, rate types.Rate) types.Quantity {
	return types.RoundQuantity(exportQty.Mul(rate))
}

// ClosingBalance applies the balance identity:
//
//	closing = opening + import - export - loss
func ClosingBalance(opening, importQty, exportQty, loss types.Quantity) types.Quantity {
	return opening.Add(importQty).Sub(exportQty).Sub(loss)
}

// Compute fills the derived fields of a figures line from its inputs.
func Compute(f *TankFigures) {
	f.LossAmount = LossAmount(f.ExportQuantity, f.LossRate)
	f.ClosingBalance = ClosingBalance(f.OpeningBalance, f.ImportQuantity, f.ExportQuantity, f.LossAmount)
}

// SumByCategory rolls figures lines up into per-category totals, emitted in
// the canonical category order. Categories with no tanks are omitted.
func SumByCategory(lines []TankFigures) []CategoryTotals {
	byCat := make(map[product.Category]*CategoryTotals, len(product.Categories))
	for i := range lines {
		l := &lines[i]
		t, ok := byCat[l.Category]
		if !ok {
			t = &CategoryTotals{Category: l.Category}
			byCat[l.Category] = t
		}
		t.OpeningBalance = t.OpeningBalance.Add(l.OpeningBalance)
		t.ImportQuantity = t.ImportQuantity.Add(l.ImportQuantity)
		t.ExportQuantity = t.ExportQuantity.Add(l.ExportQuantity)
		t.LossAmount = t.LossAmount.Add(l.LossAmount)
		t.ClosingBalance = t.ClosingBalance.Add(l.ClosingBalance)
	}

	totals := make([]CategoryTotals, 0, len(byCat))
	for _, c := range product.Categories {
		if t, ok := byCat[c]; ok {
			totals = append(totals, *t)
		}
	}
	return totals
}
