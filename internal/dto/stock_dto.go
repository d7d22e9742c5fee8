package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateStockItemRequest struct {
	SiteID            string          `json:"site_id"             validate:"required"`
	StallID           string          `json:"stall_id"`
	Name              string          `json:"name"                validate:"required,min=2,max=120"`
	Category          string          `json:"category"            validate:"required"`
	Quantity          int64           `json:"quantity"            validate:"min=0"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int64           `json:"low_stock_threshold" validate:"min=0"`
}

type UpdateStockItemRequest struct {
	Name              *string          `json:"name"                validate:"omitempty,min=2,max=120"`
	Category          *string          `json:"category"`
	Unit              *string          `json:"unit"`
	Price             *decimal.Decimal `json:"price"`
	LowStockThreshold *int64           `json:"low_stock_threshold" validate:"omitempty,min=0"`
}

// AdjustStockRequest changes an item's quantity by a signed delta. The
// movement type and optional note end up in the ledger entry.
type AdjustStockRequest struct {
	Delta int64  `json:"delta" validate:"required"`
	Type  string `json:"type"  validate:"required,oneof=receive sale adjustment wastage transfer import"`
	Notes string `json:"notes" validate:"max=500"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type StockFilter struct {
	SiteID   string `form:"site_id"`
	StallID  string `form:"stall_id"`
	Category string `form:"category"`
	Status   string `form:"status"` // derived: in-stock | low-stock | out-of-stock
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type MovementFilter struct {
	StockItemID string `form:"stock_item_id"`
	SiteID      string `form:"site_id"`
	Type        string `form:"type"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockItemResponse struct {
	ID                string          `json:"id"`
	SiteID            string          `json:"site_id"`
	StallID           string          `json:"stall_id,omitempty"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Quantity          int64           `json:"quantity"`
	Unit              string          `json:"unit"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	Status            string          `json:"status"`
	LastUpdated       string          `json:"last_updated"`
}

type StockListResponse struct {
	Data  []StockItemResponse `json:"data"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type MovementResponse struct {
	ID             string `json:"id"`
	StockItemID    string `json:"stock_item_id"`
	SiteID         string `json:"site_id"`
	StallID        string `json:"stall_id,omitempty"`
	Type           string `json:"type"`
	QuantityChange int64  `json:"quantity_change"`
	QuantityBefore int64  `json:"quantity_before"`
	QuantityAfter  int64  `json:"quantity_after"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Notes          string `json:"notes,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// ─── CSV import ──────────────────────────────────────────────────────────────

type ImportRowError struct {
	Row    int    `json:"row"`
	Detail string `json:"detail"`
}

type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}
