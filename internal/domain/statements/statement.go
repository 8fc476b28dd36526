package statements

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"printerp/internal/domain/commission"
)

// Statement is one employee's commission for one period, ready to print.
type Statement struct {
	CompanyName  string
	EmployeeName string
	Result       commission.Result
	GeneratedAt  time.Time
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func percent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// Render writes s as a single-page A4 PDF.
func Render(w io.Writer, s Statement) error {
	r := s.Result
	details := r.CalculationDetails

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Commission statement %s %s", r.EmployeeID, r.Period), false)
	pdf.SetCreator(s.CompanyName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Commission Statement")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, s.CompanyName)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	name := s.EmployeeName
	if name == "" {
		name = r.EmployeeID
	}
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", name, r.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", r.Period))
	pdf.Ln(7)
	structure := string(r.StructureType)
	if structure == "" {
		structure = "not eligible"
	}
	pdf.Cell(0, 8, fmt.Sprintf("Structure: %s", structure))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Sales: %s", money(details.SalesAmount)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Target: %s (achieved %s)", money(details.TargetAmount), percent(details.AchievementPercentage)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Commission rate: %s", percent(details.CommissionRate)))
	pdf.Ln(10)

	if len(details.TierBreakdown) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		for _, h := range []string{"Tier", "From", "To", "Rate", "Applicable", "Commission"} {
			pdf.CellFormat(30, 7, h, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, t := range details.TierBreakdown {
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", t.TierLevel), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 7, money(t.MinAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, money(t.MaxAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, percent(t.Rate), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, money(t.ApplicableAmount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, money(t.CommissionAmount), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "", 12)
	}

	pdf.Cell(0, 8, fmt.Sprintf("Base commission: %s", money(r.BaseCommission)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Bonuses: %s", money(r.Bonuses)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %s", money(r.Deductions)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Adjustments: %s", money(r.Adjustments)))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Final commission: %s", money(r.FinalCommission)))
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 6, "Generated "+s.GeneratedAt.UTC().Format(time.RFC3339))

	return pdf.Output(w)
}
