package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/scope"
)

// StockDeduction is one sale line's effect on the stock ledger.
type StockDeduction struct {
	ItemID   string
	Quantity int64
}

// SaleRepository manages retail sale transactions.
type SaleRepository interface {
	// Create persists the sale, its stock deductions, and their movement
	// logs in one Firestore transaction. A concurrent sale draining an item
	// mid-write fails the whole transaction; no line is ever deducted
	// without the sale document existing.
	Create(ctx context.Context, s *model.SaleTransaction, deductions []StockDeduction, meta MovementMeta) error
	FindByID(ctx context.Context, id string) (*model.SaleTransaction, error)
	List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.SaleTransaction, error)
	ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.SaleTransaction, error)
	Update(ctx context.Context, s *model.SaleTransaction) error
	Delete(ctx context.Context, id string) error
}

type saleRepo struct{ fs *firestore.Client }

func NewSaleRepository(fs *firestore.Client) SaleRepository { return &saleRepo{fs: fs} }

func (r *saleRepo) Create(ctx context.Context, s *model.SaleTransaction, deductions []StockDeduction, meta MovementMeta) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.EncodeAmounts()

	saleRef := r.fs.Collection(model.ColSalesTransactions).Doc(s.ID)

	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Firestore requires all reads before the first write.
		items := make([]*model.StockItem, len(deductions))
		for i, d := range deductions {
			snap, err := tx.Get(r.fs.Collection(model.ColStockItems).Doc(d.ItemID))
			if err != nil {
				return mapErr(err)
			}
			var item model.StockItem
			if err := snap.DataTo(&item); err != nil {
				return err
			}
			item.ID = snap.Ref.ID
			if item.Quantity < d.Quantity {
				return fmt.Errorf("%s: %w", item.Name, ErrInsufficientStock)
			}
			items[i] = &item
		}

		for i, d := range deductions {
			item := items[i]
			after := item.Quantity - d.Quantity
			itemRef := r.fs.Collection(model.ColStockItems).Doc(item.ID)
			if err := tx.Update(itemRef, []firestore.Update{
				{Path: "quantity", Value: after},
				{Path: "lastUpdated", Value: now},
			}); err != nil {
				return err
			}
			logRef := r.fs.Collection(model.ColStockMovementLogs).Doc(uuid.NewString())
			if err := tx.Create(logRef, &model.StockMovementLog{
				ID:             logRef.ID,
				StockItemID:    item.ID,
				SiteID:         item.SiteID,
				StallID:        item.StallID,
				Type:           meta.Type,
				QuantityChange: -d.Quantity,
				QuantityBefore: item.Quantity,
				QuantityAfter:  after,
				UserID:         meta.UserID,
				UserName:       meta.UserName,
				Notes:          meta.Notes,
				Timestamp:      now,
			}); err != nil {
				return err
			}
		}

		return tx.Create(saleRef, s)
	})
}

func (r *saleRepo) FindByID(ctx context.Context, id string) (*model.SaleTransaction, error) {
	snap, err := r.fs.Collection(model.ColSalesTransactions).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return snapToSale(snap)
}

func (r *saleRepo) List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.SaleTransaction, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColSalesTransactions).Query, sc)
	if !ok {
		return nil, nil
	}
	var sales []model.SaleTransaction
	for _, q := range qs {
		if filter.SiteID != "" {
			q = q.Where("siteId", "==", filter.SiteID)
		}
		if filter.StallID != "" {
			q = q.Where("stallId", "==", filter.StallID)
		}
		if filter.Date != "" {
			q = q.Where("date", "==", filter.Date)
		}
		q = q.OrderBy("createdAt", firestore.Desc)
		if len(qs) == 1 {
			q = paginate(q, filter.Page, filter.Limit)
		}
		part, err := r.collect(q.Documents(ctx))
		if err != nil {
			return nil, err
		}
		sales = append(sales, part...)
	}
	if len(qs) > 1 {
		sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.After(sales[j].CreatedAt) })
		sales = pageSlice(sales, filter.Page, filter.Limit)
	}
	return sales, nil
}

func (r *saleRepo) ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.SaleTransaction, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColSalesTransactions).Query, sc)
	if !ok {
		return nil, nil
	}
	var sales []model.SaleTransaction
	for _, q := range qs {
		part, err := r.collect(q.Where("date", "==", date).Documents(ctx))
		if err != nil {
			return nil, err
		}
		sales = append(sales, part...)
	}
	return sales, nil
}

func (r *saleRepo) Update(ctx context.Context, s *model.SaleTransaction) error {
	s.UpdatedAt = time.Now().UTC()
	s.EncodeAmounts()
	_, err := r.fs.Collection(model.ColSalesTransactions).Doc(s.ID).Set(ctx, s)
	return mapErr(err)
}

func (r *saleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColSalesTransactions).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *saleRepo) collect(iter *firestore.DocumentIterator) ([]model.SaleTransaction, error) {
	defer iter.Stop()
	var sales []model.SaleTransaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		s, err := snapToSale(snap)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	return sales, nil
}

func snapToSale(snap *firestore.DocumentSnapshot) (*model.SaleTransaction, error) {
	var s model.SaleTransaction
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = snap.Ref.ID
	if err := s.DecodeAmounts(); err != nil {
		return nil, err
	}
	return &s, nil
}
