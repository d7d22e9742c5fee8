package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
)

func adminUser() *model.User {
	return &model.User{UID: "admin-1", DisplayName: "Admin", Role: model.RoleAdmin, Status: model.StatusActive}
}

func staffUser(siteID, stallID string) *model.User {
	return &model.User{
		UID: "staff-1", DisplayName: "Staff", Role: model.RoleStaff, Status: model.StatusActive,
		DefaultSiteID: siteID, DefaultStallID: stallID,
	}
}

func TestStockCreateOutOfScope(t *testing.T) {
	svc := NewStockService(newStubStockRepo(), &stubDispatcher{}, "")
	_, err := svc.Create(context.Background(), staffUser("s1", "st1"), dto.CreateStockItemRequest{
		SiteID: "s2", StallID: "st9", Name: "Tea", Category: "beverages",
	})
	assert.ErrorIs(t, err, ErrOutOfScope)
}

func TestStockAdjustWritesMovement(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["i1"] = &model.StockItem{ID: "i1", SiteID: "s1", StallID: "st1", Name: "Tea", Quantity: 10, LowStockThreshold: 2}
	svc := NewStockService(repo, &stubDispatcher{}, "")

	resp, err := svc.Adjust(context.Background(), adminUser(), "i1", dto.AdjustStockRequest{
		Delta: -4, Type: model.MovementWastage, Notes: "spoiled",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.QuantityBefore)
	assert.Equal(t, int64(6), resp.QuantityAfter)
	assert.Equal(t, model.MovementWastage, resp.Type)
	assert.Equal(t, "Admin", resp.UserName)
	assert.Equal(t, int64(6), repo.items["i1"].Quantity)
	require.Len(t, repo.movements, 1)
}

func TestStockAdjustInsufficient(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["i1"] = &model.StockItem{ID: "i1", SiteID: "s1", Quantity: 3}
	svc := NewStockService(repo, &stubDispatcher{}, "")

	_, err := svc.Adjust(context.Background(), adminUser(), "i1", dto.AdjustStockRequest{
		Delta: -5, Type: model.MovementSale,
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	// No mutation, no movement
	assert.Equal(t, int64(3), repo.items["i1"].Quantity)
	assert.Empty(t, repo.movements)
}

func TestStockAdjustScopeEnforced(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["i1"] = &model.StockItem{ID: "i1", SiteID: "s2", StallID: "st2", Quantity: 5}
	svc := NewStockService(repo, &stubDispatcher{}, "")

	_, err := svc.Adjust(context.Background(), staffUser("s1", "st1"), "i1", dto.AdjustStockRequest{
		Delta: 1, Type: model.MovementReceive,
	})
	assert.ErrorIs(t, err, ErrOutOfScope)
}

func TestStockAdjustLowStockAlert(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["i1"] = &model.StockItem{ID: "i1", SiteID: "s1", Name: "Tea", Quantity: 10, LowStockThreshold: 5, Unit: "pcs"}
	disp := &stubDispatcher{}
	svc := NewStockService(repo, disp, "ops@example.com")

	// 10 → 5 crosses into low-stock: one alert
	_, err := svc.Adjust(context.Background(), adminUser(), "i1", dto.AdjustStockRequest{Delta: -5, Type: model.MovementSale})
	require.NoError(t, err)
	require.Len(t, disp.emails, 1)
	payload := disp.emails[0].(EmailJobPayload)
	assert.Equal(t, "ops@example.com", payload.ToEmail)
	assert.Contains(t, payload.Subject, "Tea")

	// Already low: a further drop does not re-alert
	_, err = svc.Adjust(context.Background(), adminUser(), "i1", dto.AdjustStockRequest{Delta: -1, Type: model.MovementSale})
	require.NoError(t, err)
	assert.Len(t, disp.emails, 1)
}

func TestStockListFiltersByDerivedStatus(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["a"] = &model.StockItem{ID: "a", SiteID: "s1", Name: "A", Quantity: 0, LowStockThreshold: 5}
	repo.items["b"] = &model.StockItem{ID: "b", SiteID: "s1", Name: "B", Quantity: 10, LowStockThreshold: 5}
	svc := NewStockService(repo, &stubDispatcher{}, "")

	resp, err := svc.List(context.Background(), adminUser(), dto.StockFilter{Status: model.StockStatusOut, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a", resp.Data[0].ID)
}

func TestStockImportCSV(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewStockService(repo, &stubDispatcher{}, "")

	csvBody := strings.Join([]string{
		"name,category,quantity,unit,price,low_stock_threshold",
		"Tea,beverages,40,pcs,10.00,10",
		"Coffee,beverages,-1,pcs,15.00,10",
		"X,beverages,5,pcs,badprice,2",
		"Samosa,snacks,25,pcs,18.50,5",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), adminUser(), "s1", "st1", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Len(t, repo.items, 2)
}

func TestStockImportCSVSkipsRepeatedNames(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewStockService(repo, &stubDispatcher{}, "")

	csvBody := strings.Join([]string{
		"name,category,quantity,unit,price,low_stock_threshold",
		"Tea,beverages,40,pcs,10.00,10",
		"tea,beverages,50,pcs,11.00,10",
		"Samosa,snacks,25,pcs,18.50,5",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), adminUser(), "s1", "st1", strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Len(t, repo.items, 2)
}

func TestStockUpdatePartialPatch(t *testing.T) {
	repo := newStubStockRepo()
	repo.items["i1"] = &model.StockItem{ID: "i1", SiteID: "s1", Name: "Tea", Quantity: 7, Price: decimal.RequireFromString("10")}
	svc := NewStockService(repo, &stubDispatcher{}, "")

	price := decimal.RequireFromString("12.50")
	resp, err := svc.Update(context.Background(), adminUser(), "i1", dto.UpdateStockItemRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(price))
	assert.Equal(t, "Tea", resp.Name)
	// Quantity is never writable through Update
	assert.Equal(t, int64(7), resp.Quantity)
}
