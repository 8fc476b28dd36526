package commission

import "github.com/shopspring/decimal"

// Structure describes how one employee's commission is computed. The
// variant-specific configuration lives in Policy.
type Structure struct {
	Name     string
	BaseRate decimal.Decimal
	IsActive bool
	Policy   Policy
}

// Type returns the structure tag, or "" when no policy is set.
func (s Structure) Type() StructureType {
	if s.Policy == nil {
		return ""
	}
	return s.Policy.Type()
}

// Policy is implemented only by the variant types in this package.
type Policy interface {
	Type() StructureType
	isPolicy()
}

type FlatRate struct{}

type Tiered struct {
	Tiers []Tier
}

type TargetBased struct {
	TargetAmount decimal.Decimal
}

type ProfitSharing struct{}

func (FlatRate) Type() StructureType      { return TypeFlatRate }
func (Tiered) Type() StructureType        { return TypeTiered }
func (TargetBased) Type() StructureType   { return TypeTargetBased }
func (ProfitSharing) Type() StructureType { return TypeProfitSharing }

func (FlatRate) isPolicy()      {}
func (Tiered) isPolicy()        {}
func (TargetBased) isPolicy()   {}
func (ProfitSharing) isPolicy() {}

type Tier struct {
	MinAmount decimal.Decimal `json:"minAmount" yaml:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount" yaml:"maxAmount"`
	Rate      decimal.Decimal `json:"rate" yaml:"rate"`
}

type PerformanceMetrics struct {
	CurrentPeriodSales decimal.Decimal `json:"currentPeriodSales" yaml:"currentPeriodSales"`
	TargetSales        decimal.Decimal `json:"targetSales" yaml:"targetSales"`
}

func (m PerformanceMetrics) AchievementPercentage() decimal.Decimal {
	if !m.TargetSales.IsPositive() {
		return decimal.Zero
	}
	return m.CurrentPeriodSales.Div(m.TargetSales).Mul(hundred)
}

type Employee struct {
	ID                 string
	Name               string
	CommissionEligible bool
	Structure          *Structure
	Metrics            PerformanceMetrics
}

type FinancialData struct {
	Period    string          `json:"period" yaml:"period"`
	NetProfit decimal.Decimal `json:"netProfit" yaml:"netProfit"`
	Revenue   decimal.Decimal `json:"revenue" yaml:"revenue"`
	Expenses  decimal.Decimal `json:"expenses" yaml:"expenses"`
}

// Adjustments are the manual amounts folded into a final commission.
type Adjustments struct {
	Bonuses     decimal.Decimal
	Deductions  decimal.Decimal
	Adjustments decimal.Decimal
}

type TierBreakdown struct {
	TierLevel        int             `json:"tierLevel"`
	MinAmount        decimal.Decimal `json:"minAmount"`
	MaxAmount        decimal.Decimal `json:"maxAmount"`
	Rate             decimal.Decimal `json:"rate"`
	ApplicableAmount decimal.Decimal `json:"applicableAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
}

type CalculationDetails struct {
	SalesAmount           decimal.Decimal `json:"salesAmount"`
	TargetAmount          decimal.Decimal `json:"targetAmount"`
	AchievementPercentage decimal.Decimal `json:"achievementPercentage"`
	CommissionRate        decimal.Decimal `json:"commissionRate"`
	TierBreakdown         []TierBreakdown `json:"tierBreakdown,omitempty"`
}

type Result struct {
	EmployeeID         string             `json:"employeeId"`
	Period             string             `json:"period"`
	StructureType      StructureType      `json:"structureType,omitempty"`
	BaseCommission     decimal.Decimal    `json:"baseCommission"`
	Bonuses            decimal.Decimal    `json:"bonuses"`
	Deductions         decimal.Decimal    `json:"deductions"`
	Adjustments        decimal.Decimal    `json:"adjustments"`
	FinalCommission    decimal.Decimal    `json:"finalCommission"`
	CalculationDetails CalculationDetails `json:"calculationDetails"`
}

// ZeroResult is the result owed to an employee with no commission this period.
func ZeroResult(employeeID, period string) Result {
	return Result{
		EmployeeID:      employeeID,
		Period:          period,
		BaseCommission:  decimal.Zero,
		Bonuses:         decimal.Zero,
		Deductions:      decimal.Zero,
		Adjustments:     decimal.Zero,
		FinalCommission: decimal.Zero,
		CalculationDetails: CalculationDetails{
			SalesAmount:           decimal.Zero,
			TargetAmount:          decimal.Zero,
			AchievementPercentage: decimal.Zero,
			CommissionRate:        decimal.Zero,
		},
	}
}

type Summary struct {
	TotalSales            decimal.Decimal `json:"totalSales"`
	AverageCommissionRate decimal.Decimal `json:"averageCommissionRate"`
	TopPerformers         []Result        `json:"topPerformers"`
}

type Bulk struct {
	Period           string          `json:"period"`
	TotalEmployees   int             `json:"totalEmployees"`
	TotalCommissions decimal.Decimal `json:"totalCommissions"`
	EmployeeResults  []Result        `json:"employeeResults"`
	Summary          Summary         `json:"summary"`
}

func EmptyBulk(period string) Bulk {
	return Bulk{
		Period:           period,
		TotalCommissions: decimal.Zero,
		EmployeeResults:  []Result{},
		Summary: Summary{
			TotalSales:            decimal.Zero,
			AverageCommissionRate: decimal.Zero,
			TopPerformers:         []Result{},
		},
	}
}

// BulkTotals is the headline of a bulk run, small enough to keep in a job log.
type BulkTotals struct {
	Period           string          `json:"period"`
	TotalEmployees   int             `json:"totalEmployees"`
	TotalCommissions decimal.Decimal `json:"totalCommissions"`
}

func (b Bulk) Totals() BulkTotals {
	return BulkTotals{Period: b.Period, TotalEmployees: b.TotalEmployees, TotalCommissions: b.TotalCommissions}
}
