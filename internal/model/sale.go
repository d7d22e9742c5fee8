package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted across all transaction types.
const (
	PaymentCash   = "cash"
	PaymentCard   = "card"
	PaymentUPI    = "upi"
	PaymentOnline = "online"
)

// Meal types for food sales.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnacks    = "snacks"
	MealDinner    = "dinner"
)

// SaleItem is one line of a retail sale.
type SaleItem struct {
	StockItemID string          `firestore:"stockItemId"`
	Name        string          `firestore:"name"`
	Quantity    int64           `firestore:"quantity"`
	Price       decimal.Decimal `firestore:"-"`
	PriceStr    string          `firestore:"price"`
}

// SaleTransaction is a retail sale scoped to site+stall+date.
type SaleTransaction struct {
	ID            string          `firestore:"-"`
	SiteID        string          `firestore:"siteId"`
	StallID       string          `firestore:"stallId,omitempty"`
	Date          string          `firestore:"date"` // YYYY-MM-DD
	Items         []SaleItem      `firestore:"items"`
	TotalAmount   decimal.Decimal `firestore:"-"`
	TotalStr      string          `firestore:"totalAmount"`
	PaymentMethod string          `firestore:"paymentMethod"`
	RecordedByUID string          `firestore:"recordedByUid"`
	RecordedBy    string          `firestore:"recordedByName"`
	Notes         string          `firestore:"notes,omitempty"`
	CreatedAt     time.Time       `firestore:"createdAt"`
	UpdatedAt     time.Time       `firestore:"updatedAt"`
}

func (s *SaleTransaction) EncodeAmounts() {
	s.TotalStr = s.TotalAmount.String()
	for i := range s.Items {
		s.Items[i].PriceStr = s.Items[i].Price.String()
	}
}

func (s *SaleTransaction) DecodeAmounts() error {
	total, err := parseAmount(s.TotalStr)
	if err != nil {
		return err
	}
	s.TotalAmount = total
	for i := range s.Items {
		p, err := parseAmount(s.Items[i].PriceStr)
		if err != nil {
			return err
		}
		s.Items[i].Price = p
	}
	return nil
}

// FoodSaleTransaction is a food-stall sale, optionally linked to an external
// Hungerbox order for import de-duplication.
type FoodSaleTransaction struct {
	ID               string          `firestore:"-"`
	SiteID           string          `firestore:"siteId"`
	StallID          string          `firestore:"stallId"`
	Date             string          `firestore:"date"`
	MealType         string          `firestore:"mealType"`
	Amount           decimal.Decimal `firestore:"-"`
	AmountStr        string          `firestore:"amount"`
	PaymentMethod    string          `firestore:"paymentMethod"`
	HungerboxOrderID string          `firestore:"hungerboxOrderId,omitempty"`
	RecordedByUID    string          `firestore:"recordedByUid"`
	RecordedBy       string          `firestore:"recordedByName"`
	CreatedAt        time.Time       `firestore:"createdAt"`
	UpdatedAt        time.Time       `firestore:"updatedAt"`
}

func (f *FoodSaleTransaction) EncodeAmounts() { f.AmountStr = f.Amount.String() }

func (f *FoodSaleTransaction) DecodeAmounts() error {
	a, err := parseAmount(f.AmountStr)
	if err != nil {
		return err
	}
	f.Amount = a
	return nil
}

// FoodItemExpense is a purchase made for a food stall (ingredients, packaging).
type FoodItemExpense struct {
	ID            string          `firestore:"-"`
	SiteID        string          `firestore:"siteId"`
	StallID       string          `firestore:"stallId"`
	Date          string          `firestore:"date"`
	Category      string          `firestore:"category"`
	Description   string          `firestore:"description,omitempty"`
	Amount        decimal.Decimal `firestore:"-"`
	AmountStr     string          `firestore:"amount"`
	PaymentMethod string          `firestore:"paymentMethod"`
	Vendor        string          `firestore:"vendor,omitempty"`
	RecordedByUID string          `firestore:"recordedByUid"`
	RecordedBy    string          `firestore:"recordedByName"`
	CreatedAt     time.Time       `firestore:"createdAt"`
	UpdatedAt     time.Time       `firestore:"updatedAt"`
}

func (e *FoodItemExpense) EncodeAmounts() { e.AmountStr = e.Amount.String() }

func (e *FoodItemExpense) DecodeAmounts() error {
	a, err := parseAmount(e.AmountStr)
	if err != nil {
		return err
	}
	e.Amount = a
	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
