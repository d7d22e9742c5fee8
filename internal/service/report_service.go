package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stallsync/internal/dto"
	"stallsync/internal/infra"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/scope"
)

// ReportService aggregates one day of sales, food sales, and expenses into a
// summary, and can render it to PDF and email it through the job queue.
type ReportService interface {
	DailySummary(ctx context.Context, actor *model.User, filter dto.SummaryFilter) (*dto.DailySummary, error)
	// SummaryPDF renders the summary and returns the path of the written file.
	SummaryPDF(ctx context.Context, actor *model.User, filter dto.SummaryFilter) (string, error)
	EmailSummary(ctx context.Context, actor *model.User, req dto.EmailSummaryRequest) error
}

type reportService struct {
	sales       repository.SaleRepository
	food        repository.FoodSaleRepository
	expenses    repository.ExpenseRepository
	dispatcher  JobDispatcher
	storagePath string
}

func NewReportService(
	sales repository.SaleRepository,
	food repository.FoodSaleRepository,
	expenses repository.ExpenseRepository,
	dispatcher JobDispatcher,
	storagePath string,
) ReportService {
	return &reportService{
		sales:       sales,
		food:        food,
		expenses:    expenses,
		dispatcher:  dispatcher,
		storagePath: storagePath,
	}
}

func (s *reportService) DailySummary(ctx context.Context, actor *model.User, filter dto.SummaryFilter) (*dto.DailySummary, error) {
	sc := scope.Resolve(actor)
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}

	sum := &dto.DailySummary{
		Date:            filter.Date,
		SiteID:          filter.SiteID,
		StallID:         filter.StallID,
		TotalSales:      decimal.Zero,
		TotalFoodSales:  decimal.Zero,
		TotalExpenses:   decimal.Zero,
		NetAmount:       decimal.Zero,
		ByPaymentMethod: map[string]decimal.Decimal{},
		ByMealType:      map[string]decimal.Decimal{},
	}

	sales, err := s.sales.ListByDate(ctx, sc, filter.Date)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sale := &sales[i]
		if skipRecord(filter, sale.SiteID, sale.StallID) {
			continue
		}
		sum.SaleCount++
		sum.TotalSales = sum.TotalSales.Add(sale.TotalAmount)
		addTo(sum.ByPaymentMethod, sale.PaymentMethod, sale.TotalAmount)
	}

	foodSales, err := s.food.ListByDate(ctx, sc, filter.Date)
	if err != nil {
		return nil, err
	}
	for i := range foodSales {
		sale := &foodSales[i]
		if skipRecord(filter, sale.SiteID, sale.StallID) {
			continue
		}
		sum.FoodSaleCount++
		sum.TotalFoodSales = sum.TotalFoodSales.Add(sale.Amount)
		addTo(sum.ByPaymentMethod, sale.PaymentMethod, sale.Amount)
		addTo(sum.ByMealType, sale.MealType, sale.Amount)
	}

	expenses, err := s.expenses.ListByDate(ctx, sc, filter.Date)
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		exp := &expenses[i]
		if skipRecord(filter, exp.SiteID, exp.StallID) {
			continue
		}
		sum.ExpenseCount++
		sum.TotalExpenses = sum.TotalExpenses.Add(exp.Amount)
	}

	sum.NetAmount = sum.TotalSales.Add(sum.TotalFoodSales).Sub(sum.TotalExpenses)
	return sum, nil
}

// SummaryPDF renders the day's summary to a PDF under the report storage
// path and returns the file path for the handler to serve.
func (s *reportService) SummaryPDF(ctx context.Context, actor *model.User, filter dto.SummaryFilter) (string, error) {
	sum, err := s.DailySummary(ctx, actor, filter)
	if err != nil {
		return "", err
	}
	return infra.GenerateDailySummaryPDF(sum, s.storagePath)
}

// EmailSummary renders the day's summary to PDF and enqueues the email job.
// The PDF is generated synchronously so a storage failure surfaces to the
// caller instead of dying in the worker.
func (s *reportService) EmailSummary(ctx context.Context, actor *model.User, req dto.EmailSummaryRequest) error {
	sum, err := s.DailySummary(ctx, actor, dto.SummaryFilter{
		Date:    req.Date,
		SiteID:  req.SiteID,
		StallID: req.StallID,
	})
	if err != nil {
		return err
	}

	pdfPath, err := infra.GenerateDailySummaryPDF(sum, s.storagePath)
	if err != nil {
		return err
	}

	return s.dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: req.ToEmail,
		Subject: fmt.Sprintf("Daily summary for %s", req.Date),
		Body: fmt.Sprintf("Sales: %s\nFood sales: %s\nExpenses: %s\nNet: %s\n\nThe full report is attached.",
			sum.TotalSales.StringFixed(2), sum.TotalFoodSales.StringFixed(2),
			sum.TotalExpenses.StringFixed(2), sum.NetAmount.StringFixed(2)),
		AttachmentPath: pdfPath,
	})
}

func skipRecord(filter dto.SummaryFilter, siteID, stallID string) bool {
	if filter.SiteID != "" && siteID != filter.SiteID {
		return true
	}
	if filter.StallID != "" && stallID != filter.StallID {
		return true
	}
	return false
}

func addTo(m map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	m[key] = m[key].Add(amount)
}
