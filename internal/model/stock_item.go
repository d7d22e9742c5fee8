package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock status values, derived from quantity vs threshold, never stored.
const (
	StockStatusOut = "out-of-stock"
	StockStatusLow = "low-stock"
	StockStatusIn  = "in-stock"
)

// StockItem is an inventory line scoped to a site and optionally a stall.
// An empty StallID means the item belongs to the site's master stock.
type StockItem struct {
	ID                string          `firestore:"-"`
	SiteID            string          `firestore:"siteId"`
	StallID           string          `firestore:"stallId,omitempty"`
	Name              string          `firestore:"name"`
	Category          string          `firestore:"category"`
	Quantity          int64           `firestore:"quantity"`
	Unit              string          `firestore:"unit"`
	Price             decimal.Decimal `firestore:"-"`
	PriceStr          string          `firestore:"price"`
	LowStockThreshold int64           `firestore:"lowStockThreshold"`
	LastUpdated       time.Time       `firestore:"lastUpdated"`
	CreatedAt         time.Time       `firestore:"createdAt"`
}

// Status derives the stock status: out-of-stock iff quantity is zero,
// low-stock iff 0 < quantity <= threshold, in-stock otherwise.
func (s *StockItem) Status() string {
	switch {
	case s.Quantity == 0:
		return StockStatusOut
	case s.Quantity <= s.LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// EncodePrice copies the decimal into its Firestore string field before a write.
func (s *StockItem) EncodePrice() { s.PriceStr = s.Price.String() }

// DecodePrice parses the stored string back into the decimal after a read.
func (s *StockItem) DecodePrice() error {
	if s.PriceStr == "" {
		s.Price = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s.PriceStr)
	if err != nil {
		return err
	}
	s.Price = d
	return nil
}
