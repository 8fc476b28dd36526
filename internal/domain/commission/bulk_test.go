package commission

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBulkSummarizes(t *testing.T) {
	dir := newFakeDirectory(
		Employee{ID: "a", CommissionEligible: true, Structure: flatStructure("5"), Metrics: metrics("2000", "0")},
		Employee{ID: "b", CommissionEligible: true, Structure: flatStructure("0"), Metrics: metrics("1000", "0")},
		Employee{ID: "c", CommissionEligible: true, Structure: flatStructure("10"), Metrics: metrics("3000", "0")},
	)
	rec := &countingRecorder{}
	svc := NewService(dir, &fakePeriods{}, WithRecorder(rec), WithBulkWorkers(2))

	bulk := svc.CalculateBulk(context.Background(), "2026-09")

	assert.Equal(t, "2026-09", bulk.Period)
	assert.Equal(t, 3, bulk.TotalEmployees)
	assertDecimal(t, "400", bulk.TotalCommissions)
	assertDecimal(t, "6000", bulk.Summary.TotalSales)
	assertDecimal(t, "6.6667", bulk.Summary.AverageCommissionRate.Round(4))

	require.Len(t, bulk.EmployeeResults, 3)
	assert.Equal(t, "a", bulk.EmployeeResults[0].EmployeeID)
	assert.Equal(t, "b", bulk.EmployeeResults[1].EmployeeID)
	assert.Equal(t, "c", bulk.EmployeeResults[2].EmployeeID)

	require.Len(t, bulk.Summary.TopPerformers, 3)
	assert.Equal(t, "c", bulk.Summary.TopPerformers[0].EmployeeID)
	assertDecimal(t, "300", bulk.Summary.TopPerformers[0].FinalCommission)
	assert.Equal(t, "a", bulk.Summary.TopPerformers[1].EmployeeID)
	assert.Equal(t, []int{3}, rec.bulks)
}

func TestCalculateBulkEnumerationFailure(t *testing.T) {
	dir := newFakeDirectory()
	dir.listErr = errBackend
	svc := NewService(dir, &fakePeriods{})

	bulk := svc.CalculateBulk(context.Background(), "2026-09")

	assert.Equal(t, EmptyBulk("2026-09"), bulk)
	assert.NotNil(t, bulk.EmployeeResults)
	assert.NotNil(t, bulk.Summary.TopPerformers)
}

func TestCalculateBulkContinuesPastFailedEmployee(t *testing.T) {
	share := &Structure{Name: "Share", BaseRate: d("2"), IsActive: true, Policy: ProfitSharing{}}
	dir := newFakeDirectory(
		Employee{ID: "a", CommissionEligible: true, Structure: flatStructure("5"), Metrics: metrics("2000", "0")},
		Employee{ID: "b", CommissionEligible: true, Structure: share, Metrics: metrics("1000", "0")},
	)
	svc := NewService(dir, &fakePeriods{err: errBackend})

	bulk := svc.CalculateBulk(context.Background(), "2026-09")

	require.Len(t, bulk.EmployeeResults, 2)
	assertDecimal(t, "100", bulk.TotalCommissions)
	assert.True(t, bulk.EmployeeResults[1].FinalCommission.IsZero())
}

func TestCalculateBulkEmptyDirectory(t *testing.T) {
	svc := NewService(newFakeDirectory(), &fakePeriods{})

	bulk := svc.CalculateBulk(context.Background(), "2026-09")

	assert.Equal(t, 0, bulk.TotalEmployees)
	assert.True(t, bulk.Summary.AverageCommissionRate.IsZero())
}

func TestSummarizeTopPerformersCappedAndStable(t *testing.T) {
	var results []Result
	for i, amount := range []string{"10", "50", "50", "20", "50", "5", "50", "30"} {
		r := ZeroResult(fmt.Sprintf("e%d", i), "2026-09")
		r.FinalCommission = d(amount)
		results = append(results, r)
	}

	bulk := Summarize("2026-09", results)

	require.Len(t, bulk.Summary.TopPerformers, TopPerformerLimit)
	var ids []string
	for _, r := range bulk.Summary.TopPerformers {
		ids = append(ids, r.EmployeeID)
	}
	assert.Equal(t, []string{"e1", "e2", "e4", "e6", "e7"}, ids)
	// ranking must not reorder the per-employee list
	assert.Equal(t, "e0", bulk.EmployeeResults[0].EmployeeID)
}

func TestSummarizeZeroSalesKeepsAverageZero(t *testing.T) {
	r := ZeroResult("e", "2026-09")
	r.FinalCommission = d("25")

	bulk := Summarize("2026-09", []Result{r})

	assertDecimal(t, "25", bulk.TotalCommissions)
	assert.True(t, bulk.Summary.AverageCommissionRate.IsZero())
}

func TestBulkTotalsDropsPerEmployeeDetail(t *testing.T) {
	a := ZeroResult("a", "2026-09")
	a.FinalCommission = d("120.50")
	b := ZeroResult("b", "2026-09")
	b.FinalCommission = d("79.50")

	totals := Summarize("2026-09", []Result{a, b}).Totals()

	assert.Equal(t, "2026-09", totals.Period)
	assert.Equal(t, 2, totals.TotalEmployees)
	assertDecimal(t, "200", totals.TotalCommissions)
}
