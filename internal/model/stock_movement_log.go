package model

import "time"

// Movement types recorded in the stock ledger.
const (
	MovementReceive    = "receive"
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
	MovementWastage    = "wastage"
	MovementTransfer   = "transfer"
	MovementImport     = "import"
)

// StockMovementLog is an append-only record of a stock quantity change.
// Invariant: QuantityAfter = QuantityBefore + QuantityChange. It is written
// in the same Firestore transaction as the StockItem mutation it documents.
type StockMovementLog struct {
	ID             string    `firestore:"-"`
	StockItemID    string    `firestore:"stockItemId"`
	SiteID         string    `firestore:"siteId"`
	StallID        string    `firestore:"stallId,omitempty"`
	Type           string    `firestore:"type"`
	QuantityChange int64     `firestore:"quantityChange"`
	QuantityBefore int64     `firestore:"quantityBefore"`
	QuantityAfter  int64     `firestore:"quantityAfter"`
	UserID         string    `firestore:"userId"`
	UserName       string    `firestore:"userName"`
	Notes          string    `firestore:"notes,omitempty"`
	Timestamp      time.Time `firestore:"timestamp"`
}
