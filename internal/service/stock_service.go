package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/scope"
)

// StockService manages the stock ledger: item CRUD, quantity adjustments with
// movement logging, low-stock alerting, and CSV bulk import.
type StockService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateStockItemRequest) (*dto.StockItemResponse, error)
	Get(ctx context.Context, actor *model.User, id string) (*dto.StockItemResponse, error)
	List(ctx context.Context, actor *model.User, filter dto.StockFilter) (*dto.StockListResponse, error)
	Update(ctx context.Context, actor *model.User, id string, req dto.UpdateStockItemRequest) (*dto.StockItemResponse, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	Adjust(ctx context.Context, actor *model.User, id string, req dto.AdjustStockRequest) (*dto.MovementResponse, error)
	ListMovements(ctx context.Context, actor *model.User, filter dto.MovementFilter) ([]dto.MovementResponse, error)
	ImportCSV(ctx context.Context, actor *model.User, siteID, stallID string, r io.Reader) (*dto.ImportResult, error)
}

type stockService struct {
	repo       repository.StockRepository
	dispatcher JobDispatcher
	alertEmail string
}

// NewStockService wires the stock ledger. alertEmail receives low-stock
// notifications; empty disables them.
func NewStockService(repo repository.StockRepository, dispatcher JobDispatcher, alertEmail string) StockService {
	return &stockService{repo: repo, dispatcher: dispatcher, alertEmail: alertEmail}
}

func (s *stockService) Create(ctx context.Context, actor *model.User, req dto.CreateStockItemRequest) (*dto.StockItemResponse, error) {
	if !scope.Resolve(actor).Allows(req.SiteID, req.StallID) {
		return nil, ErrOutOfScope
	}
	item := &model.StockItem{
		SiteID:            req.SiteID,
		StallID:           req.StallID,
		Name:              req.Name,
		Category:          req.Category,
		Quantity:          req.Quantity,
		Unit:              defaultUnit(req.Unit),
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return stockToResponse(item), nil
}

func (s *stockService) Get(ctx context.Context, actor *model.User, id string) (*dto.StockItemResponse, error) {
	item, err := s.visibleItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return stockToResponse(item), nil
}

func (s *stockService) List(ctx context.Context, actor *model.User, filter dto.StockFilter) (*dto.StockListResponse, error) {
	sc := scope.Resolve(actor)
	// An explicit site filter must still sit inside the caller's scope.
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}
	items, err := s.repo.List(ctx, sc, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockListResponse{
		Data:  make([]dto.StockItemResponse, len(items)),
		Total: len(items),
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range items {
		resp.Data[i] = *stockToResponse(&items[i])
	}
	return resp, nil
}

func (s *stockService) Update(ctx context.Context, actor *model.User, id string, req dto.UpdateStockItemRequest) (*dto.StockItemResponse, error) {
	item, err := s.visibleItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.LowStockThreshold != nil {
		item.LowStockThreshold = *req.LowStockThreshold
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return stockToResponse(item), nil
}

func (s *stockService) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.visibleItem(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *stockService) Adjust(ctx context.Context, actor *model.User, id string, req dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	item, err := s.visibleItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	statusBefore := item.Status()
	entry, err := s.repo.ApplyStockChange(ctx, id, req.Delta, repository.MovementMeta{
		Type:     req.Type,
		UserID:   actor.UID,
		UserName: actor.DisplayName,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.maybeAlert(ctx, item, statusBefore, entry)
	return movementToResponse(entry), nil
}

func (s *stockService) ListMovements(ctx context.Context, actor *model.User, filter dto.MovementFilter) ([]dto.MovementResponse, error) {
	sc := scope.Resolve(actor)
	if filter.SiteID != "" && !sc.AllowsSite(filter.SiteID) {
		return nil, ErrOutOfScope
	}
	logs, err := s.repo.ListMovements(ctx, sc, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovementResponse, len(logs))
	for i := range logs {
		resp[i] = *movementToResponse(&logs[i])
	}
	return resp, nil
}

// ImportCSV bulk-creates stock items from rows of:
// name, category, quantity, unit, price, low_stock_threshold.
func (s *stockService) ImportCSV(ctx context.Context, actor *model.User, siteID, stallID string, r io.Reader) (*dto.ImportResult, error) {
	if !scope.Resolve(actor).Allows(siteID, stallID) {
		return nil, ErrOutOfScope
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	result := &dto.ImportResult{}
	seen := make(map[string]bool)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: err.Error()})
			continue
		}
		if row == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "name") {
			continue
		}
		if len(record) < 6 {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: "expected 6 columns"})
			continue
		}

		qty, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil || qty < 0 {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("bad quantity %q", record[2])})
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[4]))
		if err != nil || price.IsNegative() {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("bad price %q", record[4])})
			continue
		}
		threshold, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
		if err != nil || threshold < 0 {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: fmt.Sprintf("bad threshold %q", record[5])})
			continue
		}
		name := strings.TrimSpace(record[0])
		if len(name) < 2 {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: "name too short"})
			continue
		}
		// Repeated names within one file are counted as skipped, not errors
		key := strings.ToLower(name)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		item := &model.StockItem{
			SiteID:            siteID,
			StallID:           stallID,
			Name:              name,
			Category:          strings.TrimSpace(record[1]),
			Quantity:          qty,
			Unit:              defaultUnit(strings.TrimSpace(record[3])),
			Price:             price,
			LowStockThreshold: threshold,
		}
		if err := s.repo.Create(ctx, item); err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Detail: err.Error()})
			continue
		}
		result.Created++
	}
	return result, nil
}

// visibleItem loads an item and enforces the caller's scope on it.
func (s *stockService) visibleItem(ctx context.Context, actor *model.User, id string) (*model.StockItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.Resolve(actor).Allows(item.SiteID, item.StallID) {
		return nil, ErrOutOfScope
	}
	return item, nil
}

// maybeAlert enqueues a low-stock email when an adjustment transitions an
// item out of the in-stock status. Alert failures never fail the mutation.
func (s *stockService) maybeAlert(ctx context.Context, item *model.StockItem, statusBefore string, entry *model.StockMovementLog) {
	if s.alertEmail == "" || s.dispatcher == nil {
		return
	}
	item.Quantity = entry.QuantityAfter
	statusAfter := item.Status()
	if statusBefore != model.StockStatusIn || statusAfter == model.StockStatusIn {
		return
	}
	payload := EmailJobPayload{
		ToEmail: s.alertEmail,
		Subject: fmt.Sprintf("Low stock: %s", item.Name),
		Body: fmt.Sprintf("%s is now %s (%d %s remaining, threshold %d).\nSite: %s  Stall: %s",
			item.Name, statusAfter, item.Quantity, item.Unit, item.LowStockThreshold, item.SiteID, item.StallID),
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("item", item.ID).Msg("failed to enqueue low-stock alert")
	}
}

func defaultUnit(u string) string {
	if u == "" {
		return "pcs"
	}
	return u
}

func stockToResponse(item *model.StockItem) *dto.StockItemResponse {
	return &dto.StockItemResponse{
		ID:                item.ID,
		SiteID:            item.SiteID,
		StallID:           item.StallID,
		Name:              item.Name,
		Category:          item.Category,
		Quantity:          item.Quantity,
		Unit:              item.Unit,
		Price:             item.Price,
		LowStockThreshold: item.LowStockThreshold,
		Status:            item.Status(),
		LastUpdated:       item.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func movementToResponse(entry *model.StockMovementLog) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:             entry.ID,
		StockItemID:    entry.StockItemID,
		SiteID:         entry.SiteID,
		StallID:        entry.StallID,
		Type:           entry.Type,
		QuantityChange: entry.QuantityChange,
		QuantityBefore: entry.QuantityBefore,
		QuantityAfter:  entry.QuantityAfter,
		UserID:         entry.UserID,
		UserName:       entry.UserName,
		Notes:          entry.Notes,
		Timestamp:      entry.Timestamp.UTC().Format(time.RFC3339),
	}
}
