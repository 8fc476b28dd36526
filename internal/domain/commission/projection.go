package commission

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Project estimates the base commission employeeID would earn if their sales
// for currentPeriod reached projectedSales. Nothing is persisted.
func (s *Service) Project(ctx context.Context, employeeID, currentPeriod string, projectedSales decimal.Decimal) Result {
	result, err := s.EvaluateProjection(ctx, employeeID, currentPeriod, projectedSales)
	if err != nil {
		s.logFailure(ctx, "commission projection failed", employeeID, currentPeriod, err)
	}
	return result
}

func (s *Service) EvaluateProjection(ctx context.Context, employeeID, currentPeriod string, projectedSales decimal.Decimal) (Result, error) {
	period := currentPeriod + ProjectedPeriodSuffix
	employee, err := s.directory.EmployeeByID(ctx, employeeID, currentPeriod)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			s.recorder.CalculationObserved("", OutcomeIneligible)
			return ZeroResult(employeeID, period), nil
		}
		s.recorder.CalculationObserved("", OutcomeFailed)
		return ZeroResult(employeeID, period), &ProviderError{Op: "employee lookup", Err: err}
	}

	metrics := employee.Metrics
	metrics.CurrentPeriodSales = projectedSales
	return s.evaluateEmployee(ctx, employee, metrics, period, currentPeriod, Adjustments{})
}
