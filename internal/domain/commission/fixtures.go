package commission

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type fixtureFile struct {
	Structures       []fixtureStructure `yaml:"structures"`
	Employees        []fixtureEmployee  `yaml:"employees"`
	FinancialPeriods []FinancialData    `yaml:"financialPeriods"`
}

type fixtureStructure struct {
	Name         string           `yaml:"name"`
	Type         StructureType    `yaml:"type"`
	BaseRate     decimal.Decimal  `yaml:"baseRate"`
	IsActive     bool             `yaml:"isActive"`
	Tiers        []Tier           `yaml:"tiers"`
	TargetAmount *decimal.Decimal `yaml:"targetAmount"`
}

type fixtureEmployee struct {
	ID                 string             `yaml:"id"`
	Name               string             `yaml:"name"`
	CommissionEligible bool               `yaml:"commissionEligible"`
	Structure          string             `yaml:"structure"`
	Metrics            PerformanceMetrics `yaml:"metrics"`
	// PeriodMetrics overrides Metrics for the listed periods.
	PeriodMetrics map[string]PerformanceMetrics `yaml:"periodMetrics"`
}

// Fixtures is an in-memory directory and financial ledger loaded from YAML.
// It serves deployments without a database and the HTTP tests.
type Fixtures struct {
	employees map[string]Employee
	order     []string
	metrics   map[string]map[string]PerformanceMetrics
	periods   map[string]FinancialData
}

func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes and validates a fixture document. Every structure
// must pass Validate and every employee must reference a known structure.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	structures := make(map[string]Structure, len(file.Structures))
	var errs []error
	for _, fs := range file.Structures {
		structure, err := StructureRecord{
			Name:         fs.Name,
			Type:         fs.Type,
			BaseRate:     fs.BaseRate,
			IsActive:     fs.IsActive,
			Tiers:        fs.Tiers,
			TargetAmount: fs.TargetAmount,
		}.Structure()
		if err != nil {
			errs = append(errs, fmt.Errorf("structure %q: %w", fs.Name, err))
			continue
		}
		if err := Validate(structure).Err(); err != nil {
			errs = append(errs, fmt.Errorf("structure %q: %w", fs.Name, err))
			continue
		}
		if _, dup := structures[fs.Name]; dup {
			errs = append(errs, fmt.Errorf("structure %q: duplicate name", fs.Name))
			continue
		}
		structures[fs.Name] = structure
	}

	out := &Fixtures{
		employees: make(map[string]Employee, len(file.Employees)),
		metrics:   make(map[string]map[string]PerformanceMetrics),
		periods:   make(map[string]FinancialData, len(file.FinancialPeriods)),
	}
	for _, fe := range file.Employees {
		if fe.ID == "" {
			errs = append(errs, errors.New("employee without id"))
			continue
		}
		if _, dup := out.employees[fe.ID]; dup {
			errs = append(errs, fmt.Errorf("employee %q: duplicate id", fe.ID))
			continue
		}
		employee := Employee{
			ID:                 fe.ID,
			Name:               fe.Name,
			CommissionEligible: fe.CommissionEligible,
			Metrics:            fe.Metrics,
		}
		if fe.Structure != "" {
			structure, ok := structures[fe.Structure]
			if !ok {
				errs = append(errs, fmt.Errorf("employee %q: unknown structure %q", fe.ID, fe.Structure))
				continue
			}
			employee.Structure = &structure
		}
		out.employees[fe.ID] = employee
		out.order = append(out.order, fe.ID)
		if len(fe.PeriodMetrics) > 0 {
			out.metrics[fe.ID] = fe.PeriodMetrics
		}
	}
	for _, fp := range file.FinancialPeriods {
		out.periods[fp.Period] = fp
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *Fixtures) EmployeeByID(_ context.Context, employeeID, period string) (Employee, error) {
	if _, ok := f.employees[employeeID]; !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return f.employeeForPeriod(employeeID, period), nil
}

func (f *Fixtures) CommissionEligibleEmployees(_ context.Context, period string) ([]Employee, error) {
	out := make([]Employee, 0, len(f.order))
	for _, id := range f.order {
		if f.employees[id].CommissionEligible {
			out = append(out, f.employeeForPeriod(id, period))
		}
	}
	return out, nil
}

func (f *Fixtures) employeeForPeriod(employeeID, period string) Employee {
	employee := f.employees[employeeID]
	if m, ok := f.metrics[employeeID][period]; ok {
		employee.Metrics = m
	}
	return employee
}

func (f *Fixtures) FinancialDataForPeriod(_ context.Context, period string) (FinancialData, error) {
	data, ok := f.periods[period]
	if !ok {
		return FinancialData{}, fmt.Errorf("%w: %s", ErrFinancialPeriodNotFound, period)
	}
	return data, nil
}
