package service

// hungerbox.go: parser for the Hungerbox vendor report CSV, shared by the
// upload endpoint and the Gmail import worker.
//
// Expected columns: order_id, date, meal_type, amount, payment_method.
// A header row is detected and skipped; bad rows are reported individually
// instead of failing the whole file.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stallsync/internal/dto"
	"stallsync/internal/model"
)

var mealTypes = map[string]bool{
	model.MealBreakfast: true,
	model.MealLunch:     true,
	model.MealSnacks:    true,
	model.MealDinner:    true,
}

var paymentMethods = map[string]bool{
	model.PaymentCash:   true,
	model.PaymentCard:   true,
	model.PaymentUPI:    true,
	model.PaymentOnline: true,
}

// ParseHungerboxCSV parses vendor report rows into food sale transactions
// attributed to the given site and stall. Returns the valid rows plus a
// per-row error report for everything rejected.
func ParseHungerboxCSV(r io.Reader, siteID, stallID string) ([]model.FoodSaleTransaction, []dto.ImportRowError) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var sales []model.FoodSaleTransaction
	var rowErrs []dto.ImportRowError

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: err.Error()})
			continue
		}
		// Header row
		if row == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "order_id") {
			continue
		}
		if len(record) < 5 {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: "expected 5 columns"})
			continue
		}

		orderID := strings.TrimSpace(record[0])
		date := strings.TrimSpace(record[1])
		mealType := strings.ToLower(strings.TrimSpace(record[2]))
		amountStr := strings.TrimSpace(record[3])
		payment := strings.ToLower(strings.TrimSpace(record[4]))

		if orderID == "" {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: "missing order_id"})
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("bad date %q", date)})
			continue
		}
		if !mealTypes[mealType] {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("unknown meal type %q", mealType)})
			continue
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil || amount.IsNegative() {
			rowErrs = append(rowErrs, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("bad amount %q", amountStr)})
			continue
		}
		if !paymentMethods[payment] {
			// Hungerbox settles through its own wallet, fold unknowns into online.
			payment = model.PaymentOnline
		}

		sales = append(sales, model.FoodSaleTransaction{
			SiteID:           siteID,
			StallID:          stallID,
			Date:             date,
			MealType:         mealType,
			Amount:           amount,
			PaymentMethod:    payment,
			HungerboxOrderID: orderID,
		})
	}
	return sales, rowErrs
}
