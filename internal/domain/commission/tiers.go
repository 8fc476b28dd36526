package commission

import "github.com/shopspring/decimal"

type TierAllocation struct {
	Total     decimal.Decimal
	Breakdown []TierBreakdown
}

// AllocateTiers splits sales across ascending tier bands and prices each
// band at its own rate. Tiers are expected to be valid and contiguous.
func AllocateTiers(sales decimal.Decimal, tiers []Tier) TierAllocation {
	out := TierAllocation{Total: decimal.Zero, Breakdown: []TierBreakdown{}}
	remaining := sales
	for i, tier := range tiers {
		if !remaining.IsPositive() || sales.LessThanOrEqual(tier.MinAmount) {
			break
		}
		applicable := decimal.Min(
			sales.Sub(tier.MinAmount),
			tier.MaxAmount.Sub(tier.MinAmount),
			remaining,
		)
		amount := applicable.Mul(tier.Rate).Div(hundred)
		out.Breakdown = append(out.Breakdown, TierBreakdown{
			TierLevel:        i + 1,
			MinAmount:        tier.MinAmount,
			MaxAmount:        tier.MaxAmount,
			Rate:             tier.Rate,
			ApplicableAmount: applicable,
			CommissionAmount: amount,
		})
		out.Total = out.Total.Add(amount)
		remaining = remaining.Sub(applicable)
	}
	return out
}
