package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGroupBySupplier(t *testing.T) {
	t.Parallel()
	supplierA := uuid.New()
	supplierB := uuid.New()
	lines := []Line{
		{ProductID: uuid.New(), SupplierID: supplierA, LineSubtotal: dec("10.00")},
		{ProductID: uuid.New(), SupplierID: supplierB, LineSubtotal: dec("20.00")},
		{ProductID: uuid.New(), SupplierID: supplierA, LineSubtotal: dec("15.00")},
	}

	groups := GroupBySupplier(lines)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].SupplierID != supplierA {
		t.Fatalf("expected first group to belong to the first-seen supplier")
	}
	if len(groups[0].Lines) != 2 {
		t.Fatalf("expected 2 lines for supplierA, got %d", len(groups[0].Lines))
	}
	if !groups[0].Subtotal.Equal(dec("25.00")) {
		t.Fatalf("expected supplierA subtotal 25.00, got %s", groups[0].Subtotal)
	}
	if !groups[1].Subtotal.Equal(dec("20.00")) {
		t.Fatalf("expected supplierB subtotal 20.00, got %s", groups[1].Subtotal)
	}
}

func TestGroupBySupplierPreservesLineOrder(t *testing.T) {
	t.Parallel()
	supplier := uuid.New()
	first := uuid.New()
	second := uuid.New()
	lines := []Line{
		{ProductID: first, SupplierID: supplier, LineSubtotal: dec("1.00")},
		{ProductID: second, SupplierID: supplier, LineSubtotal: dec("2.00")},
	}

	groups := GroupBySupplier(lines)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Lines[0].ProductID != first || groups[0].Lines[1].ProductID != second {
		t.Fatal("expected snapshot line order to be preserved within the group")
	}
}

func TestGroupBySupplierNilSentinel(t *testing.T) {
	t.Parallel()
	lines := []Line{
		{ProductID: uuid.New(), SupplierID: uuid.Nil, LineSubtotal: dec("5.00")},
		{ProductID: uuid.New(), SupplierID: uuid.New(), LineSubtotal: dec("7.00")},
	}

	groups := GroupBySupplier(lines)
	if len(groups) != 2 {
		t.Fatalf("expected unattributed lines to form their own group, got %d groups", len(groups))
	}
	if groups[0].SupplierID != uuid.Nil {
		t.Fatal("expected sentinel group for unattributed lines")
	}
}

func TestGroupBySupplierEmpty(t *testing.T) {
	t.Parallel()
	if groups := GroupBySupplier(nil); len(groups) != 0 {
		t.Fatalf("expected no groups for empty snapshot, got %d", len(groups))
	}
}

func TestSplitSharedProportional(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{SupplierID: uuid.New(), Subtotal: dec("25.00")},
		{SupplierID: uuid.New(), Subtotal: dec("20.00")},
	}
	costs := SharedCosts{
		DeliveryFee:   dec("5.00"),
		Tax:           dec("4.50"),
		PromoDiscount: dec("0.00"),
	}

	shares := SplitShared(groups, costs)
	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}

	// 25/45 and 20/45 of each amount.
	if !shares[0].DeliveryFee.Equal(dec("2.78")) {
		t.Fatalf("expected first fee share 2.78, got %s", shares[0].DeliveryFee)
	}
	if !shares[1].DeliveryFee.Equal(dec("2.22")) {
		t.Fatalf("expected second fee share 2.22, got %s", shares[1].DeliveryFee)
	}
	if !shares[0].Tax.Equal(dec("2.50")) {
		t.Fatalf("expected first tax share 2.50, got %s", shares[0].Tax)
	}
	if !shares[1].Tax.Equal(dec("2.00")) {
		t.Fatalf("expected second tax share 2.00, got %s", shares[1].Tax)
	}
}

func TestSplitSharedConservation(t *testing.T) {
	t.Parallel()
	// Subtotals chosen so naive rounding would drift.
	groups := []Group{
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
	}
	costs := SharedCosts{
		DeliveryFee:   dec("10.00"),
		Tax:           dec("0.10"),
		PromoDiscount: dec("1.00"),
	}

	shares := SplitShared(groups, costs)
	feeSum, taxSum, discountSum := decimal.Zero, decimal.Zero, decimal.Zero
	for _, share := range shares {
		feeSum = feeSum.Add(share.DeliveryFee)
		taxSum = taxSum.Add(share.Tax)
		discountSum = discountSum.Add(share.PromoDiscount)
	}
	if !feeSum.Equal(costs.DeliveryFee) {
		t.Fatalf("delivery fee shares sum to %s, want %s", feeSum, costs.DeliveryFee)
	}
	if !taxSum.Equal(costs.Tax) {
		t.Fatalf("tax shares sum to %s, want %s", taxSum, costs.Tax)
	}
	if !discountSum.Equal(costs.PromoDiscount) {
		t.Fatalf("promo discount shares sum to %s, want %s", discountSum, costs.PromoDiscount)
	}
}

func TestSplitSharedZeroSubtotalEqualSplit(t *testing.T) {
	t.Parallel()
	groups := []Group{
		{SupplierID: uuid.New(), Subtotal: decimal.Zero},
		{SupplierID: uuid.New(), Subtotal: decimal.Zero},
	}
	costs := SharedCosts{DeliveryFee: dec("3.00"), Tax: dec("1.00")}

	shares := SplitShared(groups, costs)
	if !shares[0].DeliveryFee.Equal(dec("1.50")) || !shares[1].DeliveryFee.Equal(dec("1.50")) {
		t.Fatalf("expected equal fee split, got %s / %s", shares[0].DeliveryFee, shares[1].DeliveryFee)
	}
	sum := shares[0].Tax.Add(shares[1].Tax)
	if !sum.Equal(costs.Tax) {
		t.Fatalf("tax shares sum to %s, want %s", sum, costs.Tax)
	}
}

func TestSplitSharedResidueNeverGoesNegative(t *testing.T) {
	t.Parallel()
	// Rounding over-allocates by a cent here; folding the correction into the
	// tiny final group would push its share below zero.
	groups := []Group{
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
		{SupplierID: uuid.New(), Subtotal: dec("10.00")},
		{SupplierID: uuid.New(), Subtotal: dec("0.01")},
	}
	costs := SharedCosts{DeliveryFee: dec("0.05")}

	shares := SplitShared(groups, costs)
	sum := decimal.Zero
	for i, share := range shares {
		if share.DeliveryFee.IsNegative() {
			t.Fatalf("share %d went negative: %s", i, share.DeliveryFee)
		}
		sum = sum.Add(share.DeliveryFee)
	}
	if !sum.Equal(costs.DeliveryFee) {
		t.Fatalf("fee shares sum to %s, want %s", sum, costs.DeliveryFee)
	}
	if !shares[0].DeliveryFee.Equal(dec("0.01")) {
		t.Fatalf("expected the largest group to absorb the residue, got %s", shares[0].DeliveryFee)
	}
	if !shares[3].DeliveryFee.Equal(dec("0.00")) {
		t.Fatalf("expected the tiny group share to stay 0.00, got %s", shares[3].DeliveryFee)
	}
}

func TestSplitSharedSingleGroupTakesAll(t *testing.T) {
	t.Parallel()
	groups := []Group{{SupplierID: uuid.New(), Subtotal: dec("12.34")}}
	costs := SharedCosts{DeliveryFee: dec("2.99"), Tax: dec("1.23"), PromoDiscount: dec("0.45")}

	shares := SplitShared(groups, costs)
	if len(shares) != 1 {
		t.Fatalf("expected 1 share, got %d", len(shares))
	}
	if !shares[0].DeliveryFee.Equal(costs.DeliveryFee) || !shares[0].Tax.Equal(costs.Tax) || !shares[0].PromoDiscount.Equal(costs.PromoDiscount) {
		t.Fatalf("expected the single group to carry all shared costs, got %+v", shares[0])
	}
}

func TestSplitSharedNoGroups(t *testing.T) {
	t.Parallel()
	if shares := SplitShared(nil, SharedCosts{DeliveryFee: dec("1.00")}); shares != nil {
		t.Fatalf("expected nil shares for no groups, got %v", shares)
	}
}
