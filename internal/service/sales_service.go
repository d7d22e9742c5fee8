package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/scope"
)

// SalesService records retail sales (deducting stock), food-stall sales, and
// food item expenses.
type SalesService interface {
	RecordSale(ctx context.Context, actor *model.User, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.SaleResponse, error)
	UpdateSale(ctx context.Context, actor *model.User, id string, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	DeleteSale(ctx context.Context, actor *model.User, id string) error

	RecordFoodSale(ctx context.Context, actor *model.User, req dto.RecordFoodSaleRequest) (*dto.FoodSaleResponse, error)
	ListFoodSales(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.FoodSaleResponse, error)
	UpdateFoodSale(ctx context.Context, actor *model.User, id string, req dto.UpdateFoodSaleRequest) (*dto.FoodSaleResponse, error)
	DeleteFoodSale(ctx context.Context, actor *model.User, id string) error
	ImportFoodSalesCSV(ctx context.Context, actor *model.User, siteID, stallID string, file io.Reader) (*dto.ImportResult, error)

	RecordExpense(ctx context.Context, actor *model.User, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error)
	ListExpenses(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.ExpenseResponse, error)
	UpdateExpense(ctx context.Context, actor *model.User, id string, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error)
	DeleteExpense(ctx context.Context, actor *model.User, id string) error
}

type salesService struct {
	sales    repository.SaleRepository
	food     repository.FoodSaleRepository
	expenses repository.ExpenseRepository
	stock    repository.StockRepository
}

func NewSalesService(
	sales repository.SaleRepository,
	food repository.FoodSaleRepository,
	expenses repository.ExpenseRepository,
	stock repository.StockRepository,
) SalesService {
	return &salesService{sales: sales, food: food, expenses: expenses, stock: stock}
}

// RecordSale persists a sale and deducts stock for every line item in a
// single transaction, so a failing line leaves neither the sale nor any
// partial deduction behind. Every line is resolved and scope-checked up
// front so a sale cannot deduct items the caller is not allowed to touch.
func (s *salesService) RecordSale(ctx context.Context, actor *model.User, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	sc := scope.Resolve(actor)
	if !sc.Allows(req.SiteID, req.StallID) {
		return nil, ErrOutOfScope
	}

	total := decimal.Zero
	saleItems := make([]model.SaleItem, len(req.Items))
	deductions := make([]repository.StockDeduction, len(req.Items))
	for i, line := range req.Items {
		item, err := s.stock.FindByID(ctx, line.StockItemID)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", line.StockItemID, err)
		}
		if item.SiteID != req.SiteID || !sc.Allows(item.SiteID, item.StallID) {
			return nil, ErrOutOfScope
		}
		saleItems[i] = model.SaleItem{
			StockItemID: item.ID,
			Name:        item.Name,
			Quantity:    line.Quantity,
			Price:       item.Price,
		}
		deductions[i] = repository.StockDeduction{ItemID: item.ID, Quantity: line.Quantity}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}

	sale := &model.SaleTransaction{
		SiteID:        req.SiteID,
		StallID:       req.StallID,
		Date:          req.Date,
		Items:         saleItems,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		RecordedByUID: actor.UID,
		RecordedBy:    actor.DisplayName,
		Notes:         req.Notes,
	}
	meta := repository.MovementMeta{
		Type:     model.MovementSale,
		UserID:   actor.UID,
		UserName: actor.DisplayName,
		Notes:    "sale",
	}
	if err := s.sales.Create(ctx, sale, deductions, meta); err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *salesService) ListSales(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.SaleResponse, error) {
	sc := scope.Resolve(actor)
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}
	sales, err := s.sales.List(ctx, sc, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		resp[i] = *saleToResponse(&sales[i])
	}
	return resp, nil
}

// UpdateSale patches the metadata of an existing sale. Line items stay as
// recorded since their stock movements already happened.
func (s *salesService) UpdateSale(ctx context.Context, actor *model.User, id string, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Resolve(actor).Allows(sale.SiteID, sale.StallID) {
		return nil, ErrOutOfScope
	}
	if req.Date != nil {
		sale.Date = *req.Date
	}
	if req.PaymentMethod != nil {
		sale.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *salesService) DeleteSale(ctx context.Context, actor *model.User, id string) error {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Resolve(actor).Allows(sale.SiteID, sale.StallID) {
		return ErrOutOfScope
	}
	return s.sales.Delete(ctx, id)
}

func (s *salesService) RecordFoodSale(ctx context.Context, actor *model.User, req dto.RecordFoodSaleRequest) (*dto.FoodSaleResponse, error) {
	if !scope.Resolve(actor).Allows(req.SiteID, req.StallID) {
		return nil, ErrOutOfScope
	}
	sale := &model.FoodSaleTransaction{
		SiteID:        req.SiteID,
		StallID:       req.StallID,
		Date:          req.Date,
		MealType:      req.MealType,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		RecordedByUID: actor.UID,
		RecordedBy:    actor.DisplayName,
	}
	if err := s.food.Create(ctx, sale); err != nil {
		return nil, err
	}
	return foodSaleToResponse(sale), nil
}

func (s *salesService) ListFoodSales(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.FoodSaleResponse, error) {
	sc := scope.Resolve(actor)
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}
	sales, err := s.food.List(ctx, sc, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FoodSaleResponse, len(sales))
	for i := range sales {
		resp[i] = *foodSaleToResponse(&sales[i])
	}
	return resp, nil
}

func (s *salesService) UpdateFoodSale(ctx context.Context, actor *model.User, id string, req dto.UpdateFoodSaleRequest) (*dto.FoodSaleResponse, error) {
	sale, err := s.food.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Resolve(actor).Allows(sale.SiteID, sale.StallID) {
		return nil, ErrOutOfScope
	}
	if req.Date != nil {
		sale.Date = *req.Date
	}
	if req.MealType != nil {
		sale.MealType = *req.MealType
	}
	if req.Amount != nil {
		sale.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		sale.PaymentMethod = *req.PaymentMethod
	}
	if err := s.food.Update(ctx, sale); err != nil {
		return nil, err
	}
	return foodSaleToResponse(sale), nil
}

// ImportFoodSalesCSV ingests a Hungerbox report uploaded by hand, using the
// same row parser as the Gmail import worker. Rows whose order ID already
// exists are counted as skipped rather than duplicated.
func (s *salesService) ImportFoodSalesCSV(ctx context.Context, actor *model.User, siteID, stallID string, file io.Reader) (*dto.ImportResult, error) {
	if !scope.Resolve(actor).Allows(siteID, stallID) {
		return nil, ErrOutOfScope
	}

	sales, rowErrs := ParseHungerboxCSV(file, siteID, stallID)
	result := &dto.ImportResult{Errors: rowErrs}
	for i := range sales {
		sale := &sales[i]
		if _, err := s.food.FindByHungerboxOrderID(ctx, sale.HungerboxOrderID); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		sale.RecordedByUID = actor.UID
		sale.RecordedBy = actor.DisplayName
		if err := s.food.Create(ctx, sale); err != nil {
			return nil, err
		}
		result.Created++
	}
	return result, nil
}

func (s *salesService) DeleteFoodSale(ctx context.Context, actor *model.User, id string) error {
	sale, err := s.food.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Resolve(actor).Allows(sale.SiteID, sale.StallID) {
		return ErrOutOfScope
	}
	return s.food.Delete(ctx, id)
}

func (s *salesService) RecordExpense(ctx context.Context, actor *model.User, req dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	if !scope.Resolve(actor).Allows(req.SiteID, req.StallID) {
		return nil, ErrOutOfScope
	}
	exp := &model.FoodItemExpense{
		SiteID:        req.SiteID,
		StallID:       req.StallID,
		Date:          req.Date,
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Vendor:        req.Vendor,
		RecordedByUID: actor.UID,
		RecordedBy:    actor.DisplayName,
	}
	if err := s.expenses.Create(ctx, exp); err != nil {
		return nil, err
	}
	return expenseToResponse(exp), nil
}

func (s *salesService) ListExpenses(ctx context.Context, actor *model.User, filter dto.TransactionFilter) ([]dto.ExpenseResponse, error) {
	sc := scope.Resolve(actor)
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}
	expenses, err := s.expenses.List(ctx, sc, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ExpenseResponse, len(expenses))
	for i := range expenses {
		resp[i] = *expenseToResponse(&expenses[i])
	}
	return resp, nil
}

func (s *salesService) UpdateExpense(ctx context.Context, actor *model.User, id string, req dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	exp, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Resolve(actor).Allows(exp.SiteID, exp.StallID) {
		return nil, ErrOutOfScope
	}
	if req.Date != nil {
		exp.Date = *req.Date
	}
	if req.Category != nil {
		exp.Category = *req.Category
	}
	if req.Description != nil {
		exp.Description = *req.Description
	}
	if req.Amount != nil {
		exp.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		exp.PaymentMethod = *req.PaymentMethod
	}
	if req.Vendor != nil {
		exp.Vendor = *req.Vendor
	}
	if err := s.expenses.Update(ctx, exp); err != nil {
		return nil, err
	}
	return expenseToResponse(exp), nil
}

func (s *salesService) DeleteExpense(ctx context.Context, actor *model.User, id string) error {
	exp, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Resolve(actor).Allows(exp.SiteID, exp.StallID) {
		return ErrOutOfScope
	}
	return s.expenses.Delete(ctx, id)
}

func saleToResponse(sale *model.SaleTransaction) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, len(sale.Items))
	for i, it := range sale.Items {
		items[i] = dto.SaleItemResponse{
			StockItemID: it.StockItemID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}
	return &dto.SaleResponse{
		ID:            sale.ID,
		SiteID:        sale.SiteID,
		StallID:       sale.StallID,
		Date:          sale.Date,
		Items:         items,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		RecordedBy:    sale.RecordedBy,
		Notes:         sale.Notes,
	}
}

func foodSaleToResponse(sale *model.FoodSaleTransaction) *dto.FoodSaleResponse {
	return &dto.FoodSaleResponse{
		ID:               sale.ID,
		SiteID:           sale.SiteID,
		StallID:          sale.StallID,
		Date:             sale.Date,
		MealType:         sale.MealType,
		Amount:           sale.Amount,
		PaymentMethod:    sale.PaymentMethod,
		HungerboxOrderID: sale.HungerboxOrderID,
		RecordedBy:       sale.RecordedBy,
	}
}

func expenseToResponse(exp *model.FoodItemExpense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:            exp.ID,
		SiteID:        exp.SiteID,
		StallID:       exp.StallID,
		Date:          exp.Date,
		Category:      exp.Category,
		Description:   exp.Description,
		Amount:        exp.Amount,
		PaymentMethod: exp.PaymentMethod,
		Vendor:        exp.Vendor,
		RecordedBy:    exp.RecordedBy,
	}
}
