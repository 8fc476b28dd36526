package commission

import (
	"context"
	"time"
)

// EmployeeDirectory is the read side of the HR directory. Employees carry
// the performance metrics recorded for period; an employee with no metrics
// for period has zero sales and target. EmployeeByID returns
// ErrEmployeeNotFound for unknown ids.
type EmployeeDirectory interface {
	EmployeeByID(ctx context.Context, employeeID, period string) (Employee, error)
	CommissionEligibleEmployees(ctx context.Context, period string) ([]Employee, error)
}

type FinancialPeriods interface {
	FinancialDataForPeriod(ctx context.Context, period string) (FinancialData, error)
}

type Recorder interface {
	CalculationObserved(structureType StructureType, outcome string)
	BulkObserved(employees int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CalculationObserved(StructureType, string) {}
func (nopRecorder) BulkObserved(int, time.Duration)           {}
