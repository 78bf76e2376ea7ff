package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one snapshot line with prices captured at checkout time.
type Line struct {
	ProductID    uuid.UUID
	SupplierID   uuid.UUID
	Title        string
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
	Quantity     int
	LineSubtotal decimal.Decimal
}

// Group is one supplier's slice of the snapshot. SupplierID is uuid.Nil for
// lines whose product carries no supplier attribution; those lines are kept
// under the sentinel group instead of being dropped.
type Group struct {
	SupplierID uuid.UUID
	Lines      []Line
	Subtotal   decimal.Decimal
}

// GroupBySupplier partitions snapshot lines by supplier, preserving the
// original line order within each group. Groups are ordered by first
// appearance of their supplier in the snapshot. Pure function.
func GroupBySupplier(lines []Line) []Group {
	groups := make([]Group, 0)
	index := make(map[uuid.UUID]int)

	for _, line := range lines {
		pos, seen := index[line.SupplierID]
		if !seen {
			pos = len(groups)
			index[line.SupplierID] = pos
			groups = append(groups, Group{SupplierID: line.SupplierID, Subtotal: decimal.Zero})
		}
		groups[pos].Lines = append(groups[pos].Lines, line)
		groups[pos].Subtotal = groups[pos].Subtotal.Add(line.LineSubtotal)
	}
	return groups
}
