package commission

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BaseOutcome is the policy-specific part of a calculation, before manual
// bonuses, deductions and adjustments.
type BaseOutcome struct {
	Commission decimal.Decimal
	Rate       decimal.Decimal
	Tiers      []TierBreakdown
}

// ComputeBase dispatches on the structure policy. netProfit is only read by
// profit-sharing structures.
func ComputeBase(structure Structure, metrics PerformanceMetrics, netProfit decimal.Decimal) (BaseOutcome, error) {
	sales := metrics.CurrentPeriodSales
	rate := structure.BaseRate

	switch p := structure.Policy.(type) {
	case FlatRate:
		return BaseOutcome{Commission: percentOf(sales, rate), Rate: rate}, nil
	case Tiered:
		alloc := AllocateTiers(sales, p.Tiers)
		effective := decimal.Zero
		if sales.IsPositive() {
			effective = alloc.Total.Div(sales).Mul(hundred)
		}
		return BaseOutcome{Commission: alloc.Total, Rate: effective, Tiers: alloc.Breakdown}, nil
	case TargetBased:
		return targetCommission(sales, metrics.TargetSales, rate), nil
	case ProfitSharing:
		return BaseOutcome{Commission: decimal.Max(decimal.Zero, percentOf(netProfit, rate)), Rate: rate}, nil
	default:
		return BaseOutcome{}, fmt.Errorf("%w: %T", ErrUnknownPolicy, structure.Policy)
	}
}

// targetCommission pays the base rate up to target and the premium rate on
// the excess; below target the rate shrinks linearly with achievement.
func targetCommission(sales, target, rate decimal.Decimal) BaseOutcome {
	if !target.IsPositive() {
		return BaseOutcome{Commission: decimal.Zero, Rate: decimal.Zero}
	}
	if sales.GreaterThanOrEqual(target) {
		onTarget := percentOf(target, rate)
		excess := percentOf(sales.Sub(target), rate.Mul(ExcessRateMultiplier))
		return BaseOutcome{Commission: onTarget.Add(excess), Rate: rate}
	}
	ratio := sales.Div(target)
	// sales * (rate * sales/target) / 100, divided once to keep precision
	commission := sales.Mul(sales).Mul(rate).Div(target.Mul(hundred))
	return BaseOutcome{Commission: commission, Rate: rate.Mul(ratio)}
}

// FinalCommission never goes below zero, whatever the sign of the inputs.
func FinalCommission(base decimal.Decimal, adj Adjustments) decimal.Decimal {
	total := base.Add(adj.Bonuses).Sub(adj.Deductions).Add(adj.Adjustments)
	return decimal.Max(decimal.Zero, total)
}

func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}
