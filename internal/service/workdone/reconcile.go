package workdone

import (
	"github.com/shopspring/decimal"

	"tender-backend/internal/storage"
)

// Reconcile checks every line item against the work order's remaining stock and returns
// the deductions to apply, one per material position. Nothing is returned unless all
// items fit: the first item that asks for more than what is left after the items before
// it fails the whole report with an InsufficientStockError.
//
// Items are matched to the first material whose name equals item_description exactly.
// Items without a match are not stock-tracked.
func Reconcile(materials []storage.Material, items []storage.LineItem) ([]storage.MaterialDeduction, error) {
	if len(materials) == 0 {
		return nil, nil
	}

	positions := make(map[string]int, len(materials))
	remaining := make([]decimal.Decimal, len(materials))
	for i, m := range materials {
		if _, ok := positions[m.MaterialName]; !ok {
			positions[m.MaterialName] = i
		}
		remaining[i] = decimal.NewFromFloat(m.ExQuantity)
	}

	var (
		order  []int
		staged = make(map[int]decimal.Decimal)
	)
	for _, item := range items {
		pos, ok := positions[item.ItemDescription]
		if !ok {
			continue
		}

		requested := decimal.NewFromFloat(item.Quantity)
		if requested.GreaterThan(remaining[pos]) {
			return nil, &storage.InsufficientStockError{
				Material:  item.ItemDescription,
				Requested: requested,
				Available: remaining[pos],
			}
		}

		remaining[pos] = remaining[pos].Sub(requested)
		if _, seen := staged[pos]; !seen {
			order = append(order, pos)
		}
		staged[pos] = staged[pos].Add(requested)
	}

	deductions := make([]storage.MaterialDeduction, 0, len(order))
	for _, pos := range order {
		if staged[pos].IsZero() {
			continue
		}
		deductions = append(deductions, storage.MaterialDeduction{
			Position:     pos,
			MaterialName: materials[pos].MaterialName,
			Quantity:     staged[pos],
		})
	}

	return deductions, nil
}
