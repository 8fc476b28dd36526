package commission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"printerp/internal/requestctx"
)

type Service struct {
	directory EmployeeDirectory
	periods   FinancialPeriods
	recorder  Recorder
	logger    *slog.Logger
	workers   int
}

type Option func(*Service)

func WithRecorder(recorder Recorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithBulkWorkers(workers int) Option {
	return func(s *Service) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

func NewService(directory EmployeeDirectory, periods FinancialPeriods, opts ...Option) *Service {
	s := &Service{
		directory: directory,
		periods:   periods,
		recorder:  nopRecorder{},
		logger:    slog.Default(),
		workers:   DefaultBulkWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate returns the commission owed for period. Ineligible employees and
// provider failures both yield a zero result; failures are logged.
func (s *Service) Calculate(ctx context.Context, employeeID, period string, adj Adjustments) Result {
	result, err := s.Evaluate(ctx, employeeID, period, adj)
	if err != nil {
		s.logFailure(ctx, "commission calculation failed", employeeID, period, err)
	}
	return result
}

// Evaluate is Calculate without the degrade step: err is non-nil when an
// upstream read failed, and the returned result is then zero-valued.
func (s *Service) Evaluate(ctx context.Context, employeeID, period string, adj Adjustments) (Result, error) {
	employee, err := s.directory.EmployeeByID(ctx, employeeID, period)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			s.recorder.CalculationObserved("", OutcomeIneligible)
			return ZeroResult(employeeID, period), nil
		}
		s.recorder.CalculationObserved("", OutcomeFailed)
		return ZeroResult(employeeID, period), &ProviderError{Op: "employee lookup", Err: err}
	}
	return s.evaluateEmployee(ctx, employee, employee.Metrics, period, period, adj)
}

// evaluateEmployee runs the guards and the policy dispatch. financialPeriod
// is the period whose net profit feeds profit-sharing structures.
func (s *Service) evaluateEmployee(ctx context.Context, employee Employee, metrics PerformanceMetrics, period, financialPeriod string, adj Adjustments) (Result, error) {
	if !eligible(employee) {
		s.recorder.CalculationObserved("", OutcomeIneligible)
		return ZeroResult(employee.ID, period), nil
	}
	structure := *employee.Structure

	netProfit := decimal.Zero
	if _, ok := structure.Policy.(ProfitSharing); ok {
		data, err := s.periods.FinancialDataForPeriod(ctx, financialPeriod)
		if err != nil {
			s.recorder.CalculationObserved(structure.Type(), OutcomeFailed)
			return ZeroResult(employee.ID, period), &ProviderError{Op: "financial period lookup", Err: err}
		}
		netProfit = data.NetProfit
	}

	base, err := ComputeBase(structure, metrics, netProfit)
	if err != nil {
		s.recorder.CalculationObserved(structure.Type(), OutcomeFailed)
		return ZeroResult(employee.ID, period), err
	}

	s.recorder.CalculationObserved(structure.Type(), OutcomeCalculated)
	return Result{
		EmployeeID:      employee.ID,
		Period:          period,
		StructureType:   structure.Type(),
		BaseCommission:  base.Commission,
		Bonuses:         adj.Bonuses,
		Deductions:      adj.Deductions,
		Adjustments:     adj.Adjustments,
		FinalCommission: FinalCommission(base.Commission, adj),
		CalculationDetails: CalculationDetails{
			SalesAmount:           metrics.CurrentPeriodSales,
			TargetAmount:          metrics.TargetSales,
			AchievementPercentage: metrics.AchievementPercentage(),
			CommissionRate:        base.Rate,
			TierBreakdown:         base.Tiers,
		},
	}, nil
}

func (s *Service) logFailure(ctx context.Context, msg, employeeID, period string, err error) {
	requestctx.Logger(ctx, s.logger).Warn(msg, "employeeId", employeeID, "period", period, "err", err)
}

func eligible(employee Employee) bool {
	return employee.CommissionEligible && employee.Structure != nil && employee.Structure.IsActive
}
