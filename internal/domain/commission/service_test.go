package commission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFlatRate(t *testing.T) {
	dir := newFakeDirectory(Employee{
		ID:                 "emp-1",
		CommissionEligible: true,
		Structure:          flatStructure("5"),
		Metrics:            metrics("10000", "8000"),
	})
	svc := NewService(dir, &fakePeriods{})

	got := svc.Calculate(context.Background(), "emp-1", "2026-09", Adjustments{})

	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, "2026-09", got.Period)
	assert.Equal(t, TypeFlatRate, got.StructureType)
	assertDecimal(t, "500", got.BaseCommission)
	assertDecimal(t, "500", got.FinalCommission)
	assertDecimal(t, "10000", got.CalculationDetails.SalesAmount)
	assertDecimal(t, "8000", got.CalculationDetails.TargetAmount)
	assertDecimal(t, "125", got.CalculationDetails.AchievementPercentage)
	assertDecimal(t, "5", got.CalculationDetails.CommissionRate)
	assert.Empty(t, got.CalculationDetails.TierBreakdown)
}

func TestCalculateAppliesAdjustments(t *testing.T) {
	dir := newFakeDirectory(Employee{
		ID:                 "emp-1",
		CommissionEligible: true,
		Structure:          flatStructure("5"),
		Metrics:            metrics("10000", "0"),
	})
	svc := NewService(dir, &fakePeriods{})

	got := svc.Calculate(context.Background(), "emp-1", "2026-09", Adjustments{
		Bonuses:     d("200"),
		Deductions:  d("900"),
		Adjustments: d("50"),
	})

	assertDecimal(t, "500", got.BaseCommission)
	assertDecimal(t, "200", got.Bonuses)
	assertDecimal(t, "900", got.Deductions)
	assertDecimal(t, "0", got.FinalCommission)
}

func TestCalculateTieredIncludesBreakdown(t *testing.T) {
	dir := newFakeDirectory(Employee{
		ID:                 "emp-2",
		CommissionEligible: true,
		Structure:          &Structure{Name: "Ladder", IsActive: true, Policy: Tiered{Tiers: standardTiers()}},
		Metrics:            metrics("6000", "0"),
	})
	svc := NewService(dir, &fakePeriods{})

	got := svc.Calculate(context.Background(), "emp-2", "2026-09", Adjustments{})

	assertDecimal(t, "470", got.FinalCommission)
	require.Len(t, got.CalculationDetails.TierBreakdown, 3)
	assertDecimal(t, "320", got.CalculationDetails.TierBreakdown[1].CommissionAmount)
}

func TestCalculateIneligibleYieldsZero(t *testing.T) {
	inactive := flatStructure("5")
	inactive.IsActive = false

	tests := []struct {
		name     string
		employee Employee
	}{
		{"not eligible", Employee{ID: "e", CommissionEligible: false, Structure: flatStructure("5"), Metrics: metrics("10000", "0")}},
		{"no structure", Employee{ID: "e", CommissionEligible: true, Metrics: metrics("10000", "0")}},
		{"inactive structure", Employee{ID: "e", CommissionEligible: true, Structure: inactive, Metrics: metrics("10000", "0")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			svc := NewService(newFakeDirectory(tt.employee), &fakePeriods{}, WithRecorder(rec))

			got, err := svc.Evaluate(context.Background(), "e", "2026-09", Adjustments{Bonuses: d("100")})

			require.NoError(t, err)
			assert.Equal(t, ZeroResult("e", "2026-09"), got)
			assert.Equal(t, 1, rec.outcomes[OutcomeIneligible])
		})
	}
}

func TestCalculateUnknownEmployeeIsZeroWithoutError(t *testing.T) {
	svc := NewService(newFakeDirectory(), &fakePeriods{})

	got, err := svc.Evaluate(context.Background(), "ghost", "2026-09", Adjustments{})

	require.NoError(t, err)
	assert.True(t, got.FinalCommission.IsZero())
	assert.Equal(t, "ghost", got.EmployeeID)
}

func TestEvaluateReportsDirectoryFailure(t *testing.T) {
	dir := newFakeDirectory()
	dir.lookupErr = errBackend
	svc := NewService(dir, &fakePeriods{})

	got, err := svc.Evaluate(context.Background(), "emp-1", "2026-09", Adjustments{})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "employee lookup", perr.Op)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, ZeroResult("emp-1", "2026-09"), got)

	// Calculate hides the failure behind the zero result.
	assert.Equal(t, got, svc.Calculate(context.Background(), "emp-1", "2026-09", Adjustments{}))
}

func TestCalculateProfitSharing(t *testing.T) {
	employee := Employee{
		ID:                 "emp-3",
		CommissionEligible: true,
		Structure:          &Structure{Name: "Share", BaseRate: d("2"), IsActive: true, Policy: ProfitSharing{}},
	}
	periods := &fakePeriods{data: map[string]FinancialData{
		"2026-08": {Period: "2026-08", NetProfit: d("-5000")},
		"2026-09": {Period: "2026-09", NetProfit: d("80000")},
	}}
	svc := NewService(newFakeDirectory(employee), periods)

	assertDecimal(t, "1600", svc.Calculate(context.Background(), "emp-3", "2026-09", Adjustments{}).FinalCommission)
	assertDecimal(t, "0", svc.Calculate(context.Background(), "emp-3", "2026-08", Adjustments{}).FinalCommission)
	assert.Equal(t, []string{"2026-09", "2026-08"}, periods.calls)
}

func TestEvaluateReportsFinancialFailure(t *testing.T) {
	employee := Employee{
		ID:                 "emp-3",
		CommissionEligible: true,
		Structure:          &Structure{Name: "Share", BaseRate: d("2"), IsActive: true, Policy: ProfitSharing{}},
	}
	rec := &countingRecorder{}
	svc := NewService(newFakeDirectory(employee), &fakePeriods{}, WithRecorder(rec))

	got, err := svc.Evaluate(context.Background(), "emp-3", "2030-01", Adjustments{})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "financial period lookup", perr.Op)
	assert.ErrorIs(t, err, ErrFinancialPeriodNotFound)
	assert.True(t, got.FinalCommission.IsZero())
	assert.Equal(t, 1, rec.outcomes[OutcomeFailed])
}

func TestFinancialDataOnlyReadForProfitSharing(t *testing.T) {
	periods := &fakePeriods{err: errBackend}
	dir := newFakeDirectory(Employee{
		ID:                 "emp-1",
		CommissionEligible: true,
		Structure:          flatStructure("5"),
		Metrics:            metrics("100", "0"),
	})
	svc := NewService(dir, periods)

	_, err := svc.Evaluate(context.Background(), "emp-1", "2026-09", Adjustments{})

	require.NoError(t, err)
	assert.Empty(t, periods.calls)
}

func TestCalculateIsRepeatable(t *testing.T) {
	dir := newFakeDirectory(Employee{
		ID:                 "emp-2",
		CommissionEligible: true,
		Structure:          &Structure{Name: "Ladder", IsActive: true, Policy: Tiered{Tiers: standardTiers()}},
		Metrics:            metrics("7300", "0"),
	})
	svc := NewService(dir, &fakePeriods{})
	adj := Adjustments{Bonuses: d("10")}

	first := svc.Calculate(context.Background(), "emp-2", "2026-09", adj)
	second := svc.Calculate(context.Background(), "emp-2", "2026-09", adj)

	assert.Equal(t, first, second)
}

func TestDirectoryReadsUseRequestedPeriod(t *testing.T) {
	dir := newFakeDirectory(Employee{
		ID:                 "emp-1",
		CommissionEligible: true,
		Structure:          flatStructure("5"),
		Metrics:            metrics("10000", "8000"),
	})
	svc := NewService(dir, &fakePeriods{})
	ctx := context.Background()

	svc.Calculate(ctx, "emp-1", "2026-07", Adjustments{})
	svc.CalculateBulk(ctx, "2026-08")
	svc.Project(ctx, "emp-1", "2026-09", d("12000"))

	assert.Equal(t, []string{"2026-07", "2026-08", "2026-09"}, dir.periods)
}
