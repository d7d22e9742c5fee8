package dto

import "github.com/shopspring/decimal"

// ─── Retail sales ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	StockItemID string `json:"stock_item_id" validate:"required"`
	Quantity    int64  `json:"quantity"      validate:"required,gt=0"`
}

type RecordSaleRequest struct {
	SiteID        string            `json:"site_id"        validate:"required"`
	StallID       string            `json:"stall_id"`
	Date          string            `json:"date"           validate:"required,datetime=2006-01-02"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card upi online"`
	Notes         string            `json:"notes"          validate:"max=500"`
}

// UpdateSaleRequest patches the editable fields of a recorded sale. Line
// items are fixed once recorded because their stock was already deducted;
// correcting quantities means deleting the sale and recording a new one.
type UpdateSaleRequest struct {
	Date          *string `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod *string `json:"payment_method" validate:"omitempty,oneof=cash card upi online"`
	Notes         *string `json:"notes"          validate:"omitempty,max=500"`
}

type SaleItemResponse struct {
	StockItemID string          `json:"stock_item_id"`
	Name        string          `json:"name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	SiteID        string             `json:"site_id"`
	StallID       string             `json:"stall_id,omitempty"`
	Date          string             `json:"date"`
	Items         []SaleItemResponse `json:"items"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	RecordedBy    string             `json:"recorded_by"`
	Notes         string             `json:"notes,omitempty"`
}

// ─── Food sales ──────────────────────────────────────────────────────────────

type RecordFoodSaleRequest struct {
	SiteID        string          `json:"site_id"        validate:"required"`
	StallID       string          `json:"stall_id"       validate:"required"`
	Date          string          `json:"date"           validate:"required,datetime=2006-01-02"`
	MealType      string          `json:"meal_type"      validate:"required,oneof=breakfast lunch snacks dinner"`
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card upi online"`
}

type UpdateFoodSaleRequest struct {
	Date          *string          `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	MealType      *string          `json:"meal_type"      validate:"omitempty,oneof=breakfast lunch snacks dinner"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,oneof=cash card upi online"`
}

type FoodSaleResponse struct {
	ID               string          `json:"id"`
	SiteID           string          `json:"site_id"`
	StallID          string          `json:"stall_id"`
	Date             string          `json:"date"`
	MealType         string          `json:"meal_type"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	HungerboxOrderID string          `json:"hungerbox_order_id,omitempty"`
	RecordedBy       string          `json:"recorded_by"`
}

// ─── Expenses ────────────────────────────────────────────────────────────────

type RecordExpenseRequest struct {
	SiteID        string          `json:"site_id"        validate:"required"`
	StallID       string          `json:"stall_id"       validate:"required"`
	Date          string          `json:"date"           validate:"required,datetime=2006-01-02"`
	Category      string          `json:"category"       validate:"required"`
	Description   string          `json:"description"    validate:"max=500"`
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card upi online"`
	Vendor        string          `json:"vendor"         validate:"max=120"`
}

type UpdateExpenseRequest struct {
	Date          *string          `json:"date"           validate:"omitempty,datetime=2006-01-02"`
	Category      *string          `json:"category"`
	Description   *string          `json:"description"    validate:"omitempty,max=500"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method" validate:"omitempty,oneof=cash card upi online"`
	Vendor        *string          `json:"vendor"         validate:"omitempty,max=120"`
}

type ExpenseResponse struct {
	ID            string          `json:"id"`
	SiteID        string          `json:"site_id"`
	StallID       string          `json:"stall_id"`
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Vendor        string          `json:"vendor,omitempty"`
	RecordedBy    string          `json:"recorded_by"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type TransactionFilter struct {
	SiteID  string `form:"site_id"`
	StallID string `form:"stall_id"`
	Date    string `form:"date"  validate:"omitempty,datetime=2006-01-02"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=20" validate:"min=1,max=100"`
}
