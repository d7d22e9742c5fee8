package dto

import "github.com/shopspring/decimal"

type SummaryFilter struct {
	Date    string `form:"date"     validate:"required,datetime=2006-01-02"`
	SiteID  string `form:"site_id"`
	StallID string `form:"stall_id"`
}

// DailySummary aggregates one day of activity for the visible scope.
type DailySummary struct {
	Date            string                     `json:"date"`
	SiteID          string                     `json:"site_id,omitempty"`
	StallID         string                     `json:"stall_id,omitempty"`
	SaleCount       int                        `json:"sale_count"`
	FoodSaleCount   int                        `json:"food_sale_count"`
	ExpenseCount    int                        `json:"expense_count"`
	TotalSales      decimal.Decimal            `json:"total_sales"`
	TotalFoodSales  decimal.Decimal            `json:"total_food_sales"`
	TotalExpenses   decimal.Decimal            `json:"total_expenses"`
	NetAmount       decimal.Decimal            `json:"net_amount"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
	ByMealType      map[string]decimal.Decimal `json:"by_meal_type"`
}

type EmailSummaryRequest struct {
	Date    string `json:"date"    validate:"required,datetime=2006-01-02"`
	SiteID  string `json:"site_id"`
	StallID string `json:"stall_id"`
	ToEmail string `json:"to_email" validate:"required,email"`
}
