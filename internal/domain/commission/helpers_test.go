package commission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func flatStructure(rate string) *Structure {
	return &Structure{Name: "Flat", BaseRate: d(rate), IsActive: true, Policy: FlatRate{}}
}

func standardTiers() []Tier {
	return []Tier{
		{MinAmount: d("0"), MaxAmount: d("1000"), Rate: d("5")},
		{MinAmount: d("1000"), MaxAmount: d("5000"), Rate: d("8")},
		{MinAmount: d("5000"), MaxAmount: d("10000"), Rate: d("10")},
	}
}

func metrics(sales, target string) PerformanceMetrics {
	return PerformanceMetrics{CurrentPeriodSales: d(sales), TargetSales: d(target)}
}

type fakeDirectory struct {
	employees map[string]Employee
	order     []string
	lookupErr error
	listErr   error

	mu      sync.Mutex
	periods []string
}

func (f *fakeDirectory) sawPeriod(period string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, period)
}

func newFakeDirectory(employees ...Employee) *fakeDirectory {
	f := &fakeDirectory{employees: map[string]Employee{}}
	for _, e := range employees {
		f.employees[e.ID] = e
		f.order = append(f.order, e.ID)
	}
	return f
}

func (f *fakeDirectory) EmployeeByID(_ context.Context, id, period string) (Employee, error) {
	f.sawPeriod(period)
	if f.lookupErr != nil {
		return Employee{}, f.lookupErr
	}
	e, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeDirectory) CommissionEligibleEmployees(_ context.Context, period string) ([]Employee, error) {
	f.sawPeriod(period)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Employee, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.employees[id])
	}
	return out, nil
}

type fakePeriods struct {
	data  map[string]FinancialData
	err   error
	calls []string
	mu    sync.Mutex
}

func (f *fakePeriods) FinancialDataForPeriod(_ context.Context, period string) (FinancialData, error) {
	f.mu.Lock()
	f.calls = append(f.calls, period)
	f.mu.Unlock()
	if f.err != nil {
		return FinancialData{}, f.err
	}
	data, ok := f.data[period]
	if !ok {
		return FinancialData{}, ErrFinancialPeriodNotFound
	}
	return data, nil
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	bulks    []int
}

func (r *countingRecorder) CalculationObserved(_ StructureType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *countingRecorder) BulkObserved(employees int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bulks = append(r.bulks, employees)
}

var errBackend = errors.New("connection refused")
