package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/scope"
)

// ErrInsufficientStock is returned when a change would drive quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// MovementMeta carries the audit fields for a stock quantity change.
type MovementMeta struct {
	Type     string
	UserID   string
	UserName string
	Notes    string
}

// StockRepository manages stock items and their append-only movement ledger.
type StockRepository interface {
	Create(ctx context.Context, item *model.StockItem) error
	FindByID(ctx context.Context, id string) (*model.StockItem, error)
	List(ctx context.Context, sc scope.Scope, filter dto.StockFilter) ([]model.StockItem, error)
	Update(ctx context.Context, item *model.StockItem) error
	Delete(ctx context.Context, id string) error

	// ApplyStockChange mutates the quantity and appends the movement log in a
	// single Firestore transaction: a crash can never leave a quantity change
	// without its audit record, or vice versa.
	ApplyStockChange(ctx context.Context, itemID string, delta int64, meta MovementMeta) (*model.StockMovementLog, error)

	ListMovements(ctx context.Context, sc scope.Scope, filter dto.MovementFilter) ([]model.StockMovementLog, error)
}

type stockRepo struct{ fs *firestore.Client }

func NewStockRepository(fs *firestore.Client) StockRepository { return &stockRepo{fs: fs} }

func (r *stockRepo) Create(ctx context.Context, item *model.StockItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.LastUpdated = now
	item.EncodePrice()
	_, err := r.fs.Collection(model.ColStockItems).Doc(item.ID).Create(ctx, item)
	return err
}

func (r *stockRepo) FindByID(ctx context.Context, id string) (*model.StockItem, error) {
	snap, err := r.fs.Collection(model.ColStockItems).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return snapToStockItem(snap)
}

func (r *stockRepo) List(ctx context.Context, sc scope.Scope, filter dto.StockFilter) ([]model.StockItem, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColStockItems).Query, sc)
	if !ok {
		return nil, nil
	}
	var items []model.StockItem
	for _, q := range qs {
		if filter.SiteID != "" {
			q = q.Where("siteId", "==", filter.SiteID)
		}
		if filter.StallID != "" {
			q = q.Where("stallId", "==", filter.StallID)
		}
		if filter.Category != "" {
			q = q.Where("category", "==", filter.Category)
		}
		q = q.OrderBy("name", firestore.Asc)
		if len(qs) == 1 {
			q = paginate(q, filter.Page, filter.Limit)
		}

		iter := q.Documents(ctx)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, err
			}
			item, err := snapToStockItem(snap)
			if err != nil {
				iter.Stop()
				return nil, err
			}
			// Status is derived, so it cannot be a Firestore where clause.
			if filter.Status != "" && item.Status() != filter.Status {
				continue
			}
			items = append(items, *item)
		}
		iter.Stop()
	}
	if len(qs) > 1 {
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		items = pageSlice(items, filter.Page, filter.Limit)
	}
	return items, nil
}

func (r *stockRepo) Update(ctx context.Context, item *model.StockItem) error {
	item.LastUpdated = time.Now().UTC()
	item.EncodePrice()
	_, err := r.fs.Collection(model.ColStockItems).Doc(item.ID).Set(ctx, item)
	return mapErr(err)
}

func (r *stockRepo) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColStockItems).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *stockRepo) ApplyStockChange(ctx context.Context, itemID string, delta int64, meta MovementMeta) (*model.StockMovementLog, error) {
	itemRef := r.fs.Collection(model.ColStockItems).Doc(itemID)
	logRef := r.fs.Collection(model.ColStockMovementLogs).Doc(uuid.NewString())

	var entry *model.StockMovementLog
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(itemRef)
		if err != nil {
			return mapErr(err)
		}
		var item model.StockItem
		if err := snap.DataTo(&item); err != nil {
			return err
		}

		before := item.Quantity
		after := before + delta
		if after < 0 {
			return ErrInsufficientStock
		}

		now := time.Now().UTC()
		if err := tx.Update(itemRef, []firestore.Update{
			{Path: "quantity", Value: after},
			{Path: "lastUpdated", Value: now},
		}); err != nil {
			return err
		}

		entry = &model.StockMovementLog{
			ID:             logRef.ID,
			StockItemID:    itemID,
			SiteID:         item.SiteID,
			StallID:        item.StallID,
			Type:           meta.Type,
			QuantityChange: delta,
			QuantityBefore: before,
			QuantityAfter:  after,
			UserID:         meta.UserID,
			UserName:       meta.UserName,
			Notes:          meta.Notes,
			Timestamp:      now,
		}
		return tx.Create(logRef, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *stockRepo) ListMovements(ctx context.Context, sc scope.Scope, filter dto.MovementFilter) ([]model.StockMovementLog, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColStockMovementLogs).Query, sc)
	if !ok {
		return nil, nil
	}
	var logs []model.StockMovementLog
	for _, q := range qs {
		if filter.StockItemID != "" {
			q = q.Where("stockItemId", "==", filter.StockItemID)
		}
		if filter.SiteID != "" {
			q = q.Where("siteId", "==", filter.SiteID)
		}
		if filter.Type != "" {
			q = q.Where("type", "==", filter.Type)
		}
		q = q.OrderBy("timestamp", firestore.Desc)
		if len(qs) == 1 {
			q = paginate(q, filter.Page, filter.Limit)
		}

		iter := q.Documents(ctx)
		for {
			snap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, err
			}
			var entry model.StockMovementLog
			if err := snap.DataTo(&entry); err != nil {
				iter.Stop()
				return nil, err
			}
			entry.ID = snap.Ref.ID
			logs = append(logs, entry)
		}
		iter.Stop()
	}
	if len(qs) > 1 {
		sort.Slice(logs, func(i, j int) bool { return logs[i].Timestamp.After(logs[j].Timestamp) })
		logs = pageSlice(logs, filter.Page, filter.Limit)
	}
	return logs, nil
}

func snapToStockItem(snap *firestore.DocumentSnapshot) (*model.StockItem, error) {
	var item model.StockItem
	if err := snap.DataTo(&item); err != nil {
		return nil, err
	}
	item.ID = snap.Ref.ID
	if err := item.DecodePrice(); err != nil {
		return nil, err
	}
	return &item, nil
}
