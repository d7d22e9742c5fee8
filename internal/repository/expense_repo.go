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

// ExpenseRepository manages food item expense records.
type ExpenseRepository interface {
	Create(ctx context.Context, e *model.FoodItemExpense) error
	FindByID(ctx context.Context, id string) (*model.FoodItemExpense, error)
	List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodItemExpense, error)
	ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.FoodItemExpense, error)
	Update(ctx context.Context, e *model.FoodItemExpense) error
	Delete(ctx context.Context, id string) error
}

type expenseRepo struct{ fs *firestore.Client }

func NewExpenseRepository(fs *firestore.Client) ExpenseRepository { return &expenseRepo{fs: fs} }

func (r *expenseRepo) Create(ctx context.Context, e *model.FoodItemExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	e.EncodeAmounts()
	_, err := r.fs.Collection(model.ColFoodExpenses).Doc(e.ID).Create(ctx, e)
	return err
}

func (r *expenseRepo) FindByID(ctx context.Context, id string) (*model.FoodItemExpense, error) {
	snap, err := r.fs.Collection(model.ColFoodExpenses).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return snapToExpense(snap)
}

func (r *expenseRepo) List(ctx context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodItemExpense, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColFoodExpenses).Query, sc)
	if !ok {
		return nil, nil
	}
	var expenses []model.FoodItemExpense
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
		expenses = append(expenses, part...)
	}
	if len(qs) > 1 {
		sort.Slice(expenses, func(i, j int) bool { return expenses[i].CreatedAt.After(expenses[j].CreatedAt) })
		expenses = pageSlice(expenses, filter.Page, filter.Limit)
	}
	return expenses, nil
}

func (r *expenseRepo) ListByDate(ctx context.Context, sc scope.Scope, date string) ([]model.FoodItemExpense, error) {
	qs, ok := applyScope(r.fs.Collection(model.ColFoodExpenses).Query, sc)
	if !ok {
		return nil, nil
	}
	var expenses []model.FoodItemExpense
	for _, q := range qs {
		part, err := r.collect(q.Where("date", "==", date).Documents(ctx))
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, part...)
	}
	return expenses, nil
}

func (r *expenseRepo) Update(ctx context.Context, e *model.FoodItemExpense) error {
	e.UpdatedAt = time.Now().UTC()
	e.EncodeAmounts()
	_, err := r.fs.Collection(model.ColFoodExpenses).Doc(e.ID).Set(ctx, e)
	return mapErr(err)
}

func (r *expenseRepo) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(model.ColFoodExpenses).Doc(id).Delete(ctx)
	return mapErr(err)
}

func (r *expenseRepo) collect(iter *firestore.DocumentIterator) ([]model.FoodItemExpense, error) {
	defer iter.Stop()
	var expenses []model.FoodItemExpense
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		e, err := snapToExpense(snap)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, nil
}

func snapToExpense(snap *firestore.DocumentSnapshot) (*model.FoodItemExpense, error) {
	var e model.FoodItemExpense
	if err := snap.DataTo(&e); err != nil {
		return nil, err
	}
	e.ID = snap.Ref.ID
	if err := e.DecodeAmounts(); err != nil {
		return nil, err
	}
	return &e, nil
}
