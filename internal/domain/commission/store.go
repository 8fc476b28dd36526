package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store reads employees, their commission structures and the financial
// period ledger from PostgreSQL. It never writes.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeSelect = `
    SELECT e.id::text,
           TRIM(e.first_name || ' ' || e.last_name),
           e.commission_eligible,
           COALESCE(s.id::text, ''),
           COALESCE(s.name, ''),
           COALESCE(s.structure_type, ''),
           COALESCE(s.base_rate, 0),
           COALESCE(s.is_active, false),
           s.target_amount,
           COALESCE(pm.current_period_sales, 0),
           COALESCE(pm.target_sales, 0)
    FROM employees e
    LEFT JOIN commission_structures s ON e.commission_structure_id = s.id
    LEFT JOIN performance_metrics pm ON pm.employee_id = e.id AND pm.period = $1
`

type employeeRow struct {
	employee    Employee
	structureID string
	record      StructureRecord
}

func scanEmployee(row pgx.Row) (employeeRow, error) {
	var out employeeRow
	var target decimal.NullDecimal
	var structureType string
	err := row.Scan(
		&out.employee.ID,
		&out.employee.Name,
		&out.employee.CommissionEligible,
		&out.structureID,
		&out.record.Name,
		&structureType,
		&out.record.BaseRate,
		&out.record.IsActive,
		&target,
		&out.employee.Metrics.CurrentPeriodSales,
		&out.employee.Metrics.TargetSales,
	)
	if err != nil {
		return employeeRow{}, err
	}
	out.record.Type = StructureType(structureType)
	if target.Valid {
		out.record.TargetAmount = &target.Decimal
	}
	return out, nil
}

// EmployeeByID loads the employee with the performance metrics recorded for
// period.
func (s *Store) EmployeeByID(ctx context.Context, employeeID, period string) (Employee, error) {
	row, err := scanEmployee(s.DB.QueryRow(ctx, employeeSelect+" WHERE e.id::text = $2", period, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	employees, err := s.attachStructures(ctx, []employeeRow{row})
	if err != nil {
		return Employee{}, err
	}
	return employees[0], nil
}

func (s *Store) CommissionEligibleEmployees(ctx context.Context, period string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, employeeSelect+`
    WHERE e.commission_eligible = true AND e.status = 'active'
    ORDER BY e.created_at, e.id
  `, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []employeeRow
	for rows.Next() {
		row, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachStructures(ctx, out)
}

func (s *Store) attachStructures(ctx context.Context, rows []employeeRow) ([]Employee, error) {
	var tieredIDs []string
	for _, row := range rows {
		if row.record.Type == TypeTiered {
			tieredIDs = append(tieredIDs, row.structureID)
		}
	}
	tiers, err := s.tiersByStructure(ctx, tieredIDs)
	if err != nil {
		return nil, err
	}

	out := make([]Employee, 0, len(rows))
	for _, row := range rows {
		employee := row.employee
		if row.structureID != "" {
			row.record.Tiers = tiers[row.structureID]
			structure, err := row.record.Structure()
			if err != nil {
				return nil, fmt.Errorf("employee %s: %w", employee.ID, err)
			}
			employee.Structure = &structure
		}
		out = append(out, employee)
	}
	return out, nil
}

func (s *Store) tiersByStructure(ctx context.Context, structureIDs []string) (map[string][]Tier, error) {
	out := map[string][]Tier{}
	if len(structureIDs) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT structure_id::text, min_amount, max_amount, rate
    FROM commission_tiers
    WHERE structure_id::text = ANY($1)
    ORDER BY structure_id, tier_level
  `, structureIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var structureID string
		var tier Tier
		if err := rows.Scan(&structureID, &tier.MinAmount, &tier.MaxAmount, &tier.Rate); err != nil {
			return nil, err
		}
		out[structureID] = append(out[structureID], tier)
	}
	return out, rows.Err()
}

func (s *Store) FinancialDataForPeriod(ctx context.Context, period string) (FinancialData, error) {
	data := FinancialData{Period: period}
	err := s.DB.QueryRow(ctx, `
    SELECT net_profit, revenue, expenses
    FROM financial_periods
    WHERE period = $1
  `, period).Scan(&data.NetProfit, &data.Revenue, &data.Expenses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FinancialData{}, fmt.Errorf("%w: %s", ErrFinancialPeriodNotFound, period)
		}
		return FinancialData{}, err
	}
	return data, nil
}
