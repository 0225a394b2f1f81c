package domain

import "sort"

// StockAdjustment is a signed change to one inventory record's stock.
type StockAdjustment struct {
	InventoryRecordID int64
	Delta             int
}

// StockEffect lists the adjustments implied by moving o from one status to
// another. Stock moves only across the pending/completed boundary: completion
// debits sales and credits purchases, reverting to pending undoes it.
// Adjustments are ordered by record id so row locks are taken consistently.
func StockEffect(o *Order, from, to Status) []StockAdjustment {
	var sign int
	switch {
	case from == StatusPending && to == StatusCompleted:
		sign = o.Kind.StockSign()
	case from == StatusCompleted && to == StatusPending:
		sign = -o.Kind.StockSign()
	default:
		return nil
	}
	perRecord := make(map[int64]int, len(o.Items))
	for _, item := range o.Items {
		perRecord[item.InventoryRecordID] += sign * item.Quantity
	}
	adjustments := make([]StockAdjustment, 0, len(perRecord))
	for id, delta := range perRecord {
		if delta != 0 {
			adjustments = append(adjustments, StockAdjustment{InventoryRecordID: id, Delta: delta})
		}
	}
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].InventoryRecordID < adjustments[j].InventoryRecordID
	})
	return adjustments
}

// RemovalEffect is the stock change needed before o can be deleted.
func RemovalEffect(o *Order) []StockAdjustment {
	if o.Status != StatusCompleted {
		return nil
	}
	return StockEffect(o, StatusCompleted, StatusPending)
}

// QuantityAvailable is the stock a pending sale item may claim: the
// record's stock plus whatever the item already holds, since pending items
// have not been debited.
func QuantityAvailable(stock, heldByItem int) int {
	return stock + heldByItem
}
