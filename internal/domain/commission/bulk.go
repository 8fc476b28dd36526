package commission

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"printerp/internal/requestctx"
)

// CalculateBulk computes the commission of every eligible employee for
// period. A failed enumeration yields an empty, zeroed Bulk; a failed
// employee contributes a zero result and the run continues.
func (s *Service) CalculateBulk(ctx context.Context, period string) Bulk {
	start := time.Now()
	employees, err := s.directory.CommissionEligibleEmployees(ctx, period)
	if err != nil {
		requestctx.Logger(ctx, s.logger).Warn("commission bulk enumeration failed", "period", period, "err", err)
		return EmptyBulk(period)
	}

	results := make([]Result, len(employees))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, employee := range employees {
		i, employee := i, employee
		g.Go(func() error {
			result, err := s.evaluateEmployee(ctx, employee, employee.Metrics, period, period, Adjustments{})
			if err != nil {
				s.logFailure(ctx, "commission bulk calculation failed", employee.ID, period, err)
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	bulk := Summarize(period, results)
	s.recorder.BulkObserved(bulk.TotalEmployees, time.Since(start))
	return bulk
}

// Summarize aggregates per-employee results in the order given.
func Summarize(period string, results []Result) Bulk {
	bulk := EmptyBulk(period)
	if len(results) == 0 {
		return bulk
	}
	bulk.TotalEmployees = len(results)
	bulk.EmployeeResults = results

	for _, result := range results {
		bulk.TotalCommissions = bulk.TotalCommissions.Add(result.FinalCommission)
		bulk.Summary.TotalSales = bulk.Summary.TotalSales.Add(result.CalculationDetails.SalesAmount)
	}
	if bulk.Summary.TotalSales.IsPositive() {
		bulk.Summary.AverageCommissionRate = bulk.TotalCommissions.Div(bulk.Summary.TotalSales).Mul(hundred)
	}
	bulk.Summary.TopPerformers = topPerformers(results, TopPerformerLimit)
	return bulk
}

func topPerformers(results []Result, limit int) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalCommission.GreaterThan(ranked[j].FinalCommission)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
