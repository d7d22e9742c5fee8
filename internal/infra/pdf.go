package infra

// pdf.go: daily summary report generation using go-pdf/fpdf.
// Produces an A4 one-pager with the day's sales, food sales, and expense
// totals plus payment-method and meal-type breakdowns.

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"stallsync/internal/dto"
)

// GenerateDailySummaryPDF writes the summary to storagePath and returns the
// absolute path of the generated file.
func GenerateDailySummaryPDF(sum *dto.DailySummary, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("daily_summary_%s.pdf", sum.Date)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "StallSync", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Daily Sales Summary", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Date: "+sum.Date, "", 1, "L", false, 0, "")
	if sum.SiteID != "" {
		pdf.SetFont("Helvetica", "", 9)
		scopeLine := "Site: " + sum.SiteID
		if sum.StallID != "" {
			scopeLine += "  Stall: " + sum.StallID
		}
		pdf.CellFormat(contentW, 5, scopeLine, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	rows := []struct {
		label string
		value decimal.Decimal
		count int
	}{
		{"Retail sales", sum.TotalSales, sum.SaleCount},
		{"Food sales", sum.TotalFoodSales, sum.FoodSaleCount},
		{"Expenses", sum.TotalExpenses, sum.ExpenseCount},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(col1, 7, fmt.Sprintf("%s (%d)", row.label, row.count), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 7, row.value.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1, 8, "Net", "T", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 8, sum.NetAmount.StringFixed(2), "T", 1, "R", false, 0, "")
	pdf.Ln(4)

	// ── Breakdowns ───────────────────────────────────────────────────────────
	writeBreakdown(pdf, "By payment method", sum.ByPaymentMethod, col1, col2)
	writeBreakdown(pdf, "By meal type", sum.ByMealType, col1, col2)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

func writeBreakdown(pdf *fpdf.Fpdf, title string, values map[string]decimal.Decimal, col1, col2 float64) {
	if len(values) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2, 7, title, "", 1, "L", false, 0, "")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pdf.SetFont("Helvetica", "", 9)
	for _, k := range keys {
		pdf.CellFormat(col1, 6, k, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, values[k].StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}
