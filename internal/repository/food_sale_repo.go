package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/scope"
)

// FoodSaleRepository manages food-stall sale transactions, including the
// Hungerbox order id lookup used by the import de-duplication.
type FoodSaleRepository interface {
	Create(ctx context.Context, s *model.FoodSaleTransaction) error
	FindByID(ctx context.Context, id string) (*model.FoodSaleTransaction, error)
	FindByHungerboxOrderID(ctx context.Context, orderID string) (*model.FoodSaleTransaction, error)
	List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodSaleTransaction, error)
	ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.FoodSaleTransaction, error)
	Update(ctx context.Context, s *model.FoodSaleTransaction) error
	Delete(ctx context.Context, id string) error
}

type foodSaleRepo struct{ fs *firestore.Client }

func NewFoodSaleRepository(fs *firestore.Client) FoodSaleRepository { return &foodSaleRepo{fs: fs} }

func (r *foodSaleRepo) Create(ctx context.Context, s *model.FoodSaleTransaction) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.EncodeAmounts()
	_, err := r.fs.Collection(model.ColFoodSales).Doc(s.ID).Create(ctx, s)
	return err
}

func (r *foodSaleRepo) FindByID(ctx context.Context, id string) (*model.FoodSaleTransaction, error) {
	snap, err := r.fs.Collection(model.ColFoodSales).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return snapToFoodSale(snap)
}

func (r *foodSaleRepo) FindByHungerboxOrderID(ctx context.Context, orderID string) (*model.FoodSaleTransaction, error) {
	iter := r.fs.Collection(model.ColFoodSales).
		Where("hungerboxOrderId", "==", orderID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapToFoodSale(snap)
}

func (r *foodSaleRepo) List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodSaleTransaction, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColFoodSales).Query, sc)
	if !ok {
		return nil, nil
	}
	var sales []model.FoodSaleTransaction
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

func (r *foodSaleRepo) ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.FoodSaleTransaction, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColFoodSales).Query, sc)
	if !ok {
		return nil, nil
	}
	var sales []model.FoodSaleTransaction
	for _, q := range qs {
		part, err := r.collect(q.Where("date", "==", date).Documents(ctx))
		if err != nil {
			return nil, err
		}
		sales = append(sales, part...)
	}
	return sales, nil
}

func (r *foodSaleRepo) Update(ctx context.Context, s *model.FoodSaleTransaction) error {
	s.UpdatedAt = time.Now().UTC()
	s.EncodeAmounts()
	_, err := r.fs.Collection(model.ColFoodSales).Doc(s.ID).Set(ctx, s)
	return mapErr(err)
}

func (r *foodSaleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColFoodSales).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *foodSaleRepo) collect(iter *firestore.DocumentIterator) ([]model.FoodSaleTransaction, error) {
	defer iter.Stop()
	var sales []model.FoodSaleTransaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		s, err := snapToFoodSale(snap)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *s)
	}
	return sales, nil
}

func snapToFoodSale(snap *firestore.DocumentSnapshot) (*model.FoodSaleTransaction, error) {
	var s model.FoodSaleTransaction
	if err := snap.DataTo(&s); err != nil {
		return nil, err
	}
	s.ID = snap.Ref.ID
	if err := s.DecodeAmounts(); err != nil {
		return nil, err
	}
	return &s, nil
}
