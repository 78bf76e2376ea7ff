package helpers

import (
	"github.com/shopspring/decimal"
)

// SharedCosts are the cart-level amounts distributed across supplier groups.
type SharedCosts struct {
	DeliveryFee   decimal.Decimal
	Tax           decimal.Decimal
	PromoDiscount decimal.Decimal
}

// Share is one group's slice of the shared costs, rounded to cents.
type Share struct {
	DeliveryFee   decimal.Decimal
	Tax           decimal.Decimal
	PromoDiscount decimal.Decimal
}

// SplitShared distributes shared costs across groups proportionally to each
// group's subtotal. Every share is rounded to two decimals; the rounding
// residue is folded into the share of the largest group (first wins on ties)
// so the shares always sum exactly to the cart-level amount and a cent of
// residue can never drive a small group's share negative. A zero total
// subtotal falls back to an equal split.
func SplitShared(groups []Group, costs SharedCosts) []Share {
	if len(groups) == 0 {
		return nil
	}

	totalSubtotal := decimal.Zero
	anchor := 0
	for i, group := range groups {
		totalSubtotal = totalSubtotal.Add(group.Subtotal)
		if group.Subtotal.GreaterThan(groups[anchor].Subtotal) {
			anchor = i
		}
	}

	shares := make([]Share, len(groups))
	if totalSubtotal.IsZero() {
		count := decimal.NewFromInt(int64(len(groups)))
		for i := range groups {
			shares[i] = Share{
				DeliveryFee:   costs.DeliveryFee.Div(count).Round(2),
				Tax:           costs.Tax.Div(count).Round(2),
				PromoDiscount: costs.PromoDiscount.Div(count).Round(2),
			}
		}
		fixResidue(shares, costs, anchor)
		return shares
	}

	for i, group := range groups {
		ratio := group.Subtotal.Div(totalSubtotal)
		shares[i] = Share{
			DeliveryFee:   costs.DeliveryFee.Mul(ratio).Round(2),
			Tax:           costs.Tax.Mul(ratio).Round(2),
			PromoDiscount: costs.PromoDiscount.Mul(ratio).Round(2),
		}
	}
	fixResidue(shares, costs, anchor)
	return shares
}

// fixResidue folds the rounding residue into the anchor share so the column
// sums match the cart-level amounts to the cent.
func fixResidue(shares []Share, costs SharedCosts, anchor int) {
	feeSum, taxSum, discountSum := decimal.Zero, decimal.Zero, decimal.Zero
	for _, share := range shares {
		feeSum = feeSum.Add(share.DeliveryFee)
		taxSum = taxSum.Add(share.Tax)
		discountSum = discountSum.Add(share.PromoDiscount)
	}
	shares[anchor].DeliveryFee = shares[anchor].DeliveryFee.Add(costs.DeliveryFee.Sub(feeSum))
	shares[anchor].Tax = shares[anchor].Tax.Add(costs.Tax.Sub(taxSum))
	shares[anchor].PromoDiscount = shares[anchor].PromoDiscount.Add(costs.PromoDiscount.Sub(discountSum))
}
