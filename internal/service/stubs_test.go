package service

// In-memory repository stubs shared by the service tests.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"stallsync/internal/dto"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/scope"
)

// ── StockRepository ──────────────────────────────────────────────────────────

type stubStockRepo struct {
	items     map[string]*model.StockItem
	movements []model.StockMovementLog
	failOn    map[string]error // method name → forced error
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{items: map[string]*model.StockItem{}, failOn: map[string]error{}}
}

func (r *stubStockRepo) Create(_ context.Context, item *model.StockItem) error {
	if err := r.failOn["Create"]; err != nil {
		return err
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.LastUpdated = time.Now().UTC()
	r.items[item.ID] = item
	return nil
}

func (r *stubStockRepo) FindByID(_ context.Context, id string) (*model.StockItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *stubStockRepo) List(_ context.Context, sc scope.Scope, filter dto.StockFilter) ([]model.StockItem, error) {
	var out []model.StockItem
	for _, item := range r.items {
		if !sc.Allows(item.SiteID, item.StallID) {
			continue
		}
		if filter.SiteID != "" && item.SiteID != filter.SiteID {
			continue
		}
		if filter.Status != "" && item.Status() != filter.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (r *stubStockRepo) Update(_ context.Context, item *model.StockItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return repository.ErrNotFound
	}
	r.items[item.ID] = item
	return nil
}

func (r *stubStockRepo) Delete(_ context.Context, id string) error {
	delete(r.items, id)
	return nil
}

func (r *stubStockRepo) ApplyStockChange(_ context.Context, itemID string, delta int64, meta repository.MovementMeta) (*model.StockMovementLog, error) {
	if err := r.failOn["ApplyStockChange"]; err != nil {
		return nil, err
	}
	item, ok := r.items[itemID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	before := item.Quantity
	after := before + delta
	if after < 0 {
		return nil, repository.ErrInsufficientStock
	}
	item.Quantity = after
	entry := model.StockMovementLog{
		ID:             uuid.NewString(),
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
		Timestamp:      time.Now().UTC(),
	}
	r.movements = append(r.movements, entry)
	return &entry, nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, sc scope.Scope, filter dto.MovementFilter) ([]model.StockMovementLog, error) {
	var out []model.StockMovementLog
	for _, entry := range r.movements {
		if !sc.Allows(entry.SiteID, entry.StallID) {
			continue
		}
		if filter.StockItemID != "" && entry.StockItemID != filter.StockItemID {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// ── SaleRepository / FoodSaleRepository / ExpenseRepository ──────────────────

// stubSaleRepo mirrors the real repository's all-or-nothing Create: every
// deduction is verified before any stock is touched or the sale stored.
type stubSaleRepo struct {
	sales map[string]*model.SaleTransaction
	stock *stubStockRepo
}

func newStubSaleRepo(stock *stubStockRepo) *stubSaleRepo {
	return &stubSaleRepo{sales: map[string]*model.SaleTransaction{}, stock: stock}
}

func (r *stubSaleRepo) Create(ctx context.Context, s *model.SaleTransaction, deductions []repository.StockDeduction, meta repository.MovementMeta) error {
	for _, d := range deductions {
		item, ok := r.stock.items[d.ItemID]
		if !ok {
			return repository.ErrNotFound
		}
		if item.Quantity < d.Quantity {
			return fmt.Errorf("%s: %w", item.Name, repository.ErrInsufficientStock)
		}
	}
	for _, d := range deductions {
		if _, err := r.stock.ApplyStockChange(ctx, d.ItemID, -d.Quantity, meta); err != nil {
			return err
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id string) (*model.SaleTransaction, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.SaleTransaction, error) {
	var out []model.SaleTransaction
	for _, s := range r.sales {
		if sc.Allows(s.SiteID, s.StallID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) ListByDate(_ context.Context, sc scope.Scope, date string) ([]model.SaleTransaction, error) {
	var out []model.SaleTransaction
	for _, s := range r.sales {
		if s.Date == date && sc.Allows(s.SiteID, s.StallID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) Update(_ context.Context, s *model.SaleTransaction) error {
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) Delete(_ context.Context, id string) error {
	delete(r.sales, id)
	return nil
}

type stubFoodSaleRepo struct {
	sales map[string]*model.FoodSaleTransaction
}

func newStubFoodSaleRepo() *stubFoodSaleRepo {
	return &stubFoodSaleRepo{sales: map[string]*model.FoodSaleTransaction{}}
}

func (r *stubFoodSaleRepo) Create(_ context.Context, s *model.FoodSaleTransaction) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubFoodSaleRepo) FindByID(_ context.Context, id string) (*model.FoodSaleTransaction, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *stubFoodSaleRepo) FindByHungerboxOrderID(_ context.Context, orderID string) (*model.FoodSaleTransaction, error) {
	for _, s := range r.sales {
		if s.HungerboxOrderID == orderID {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubFoodSaleRepo) List(_ context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodSaleTransaction, error) {
	var out []model.FoodSaleTransaction
	for _, s := range r.sales {
		if sc.Allows(s.SiteID, s.StallID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubFoodSaleRepo) ListByDate(_ context.Context, sc scope.Scope, date string) ([]model.FoodSaleTransaction, error) {
	var out []model.FoodSaleTransaction
	for _, s := range r.sales {
		if s.Date == date && sc.Allows(s.SiteID, s.StallID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubFoodSaleRepo) Update(_ context.Context, s *model.FoodSaleTransaction) error {
	r.sales[s.ID] = s
	return nil
}

func (r *stubFoodSaleRepo) Delete(_ context.Context, id string) error {
	delete(r.sales, id)
	return nil
}

type stubExpenseRepo struct {
	expenses map[string]*model.FoodItemExpense
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: map[string]*model.FoodItemExpense{}}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.FoodItemExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.expenses[e.ID] = e
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id string) (*model.FoodItemExpense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (r *stubExpenseRepo) List(_ context.Context, sc scope.Scope, filter dto.TransactionFilter) ([]model.FoodItemExpense, error) {
	var out []model.FoodItemExpense
	for _, e := range r.expenses {
		if sc.Allows(e.SiteID, e.StallID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubExpenseRepo) ListByDate(_ context.Context, sc scope.Scope, date string) ([]model.FoodItemExpense, error) {
	var out []model.FoodItemExpense
	for _, e := range r.expenses {
		if e.Date == date && sc.Allows(e.SiteID, e.StallID) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *stubExpenseRepo) Update(_ context.Context, e *model.FoodItemExpense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *stubExpenseRepo) Delete(_ context.Context, id string) error {
	delete(r.expenses, id)
	return nil
}

// ── UserRepository ───────────────────────────────────────────────────────────

type stubUserRepo struct {
	users    map[string]*model.User
	failNext error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*model.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.users[u.UID] = u
	return nil
}

func (r *stubUserRepo) FindByUID(_ context.Context, uid string) (*model.User, error) {
	u, ok := r.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.UID] = u
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, uid string) error {
	if _, ok := r.users[uid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, uid)
	return nil
}

// ── AuthAdmin ────────────────────────────────────────────────────────────────

type stubAuthAdmin struct {
	accounts map[string]string // uid → email
	deleted  []string
	nextUID  int
}

func newStubAuthAdmin() *stubAuthAdmin {
	return &stubAuthAdmin{accounts: map[string]string{}}
}

func (a *stubAuthAdmin) CreateUser(_ context.Context, email, _, _ string) (string, error) {
	for _, existing := range a.accounts {
		if existing == email {
			return "", ErrEmailExists
		}
	}
	a.nextUID++
	uid := fmt.Sprintf("uid-%d", a.nextUID)
	a.accounts[uid] = email
	return uid, nil
}

func (a *stubAuthAdmin) DeleteUser(_ context.Context, uid string) error {
	delete(a.accounts, uid)
	a.deleted = append(a.deleted, uid)
	return nil
}

// ── SiteRepository ───────────────────────────────────────────────────────────

type stubSiteRepo struct {
	sites  map[string]*model.Site
	stalls map[string]*model.Stall
}

func newStubSiteRepo() *stubSiteRepo {
	return &stubSiteRepo{sites: map[string]*model.Site{}, stalls: map[string]*model.Stall{}}
}

func (r *stubSiteRepo) CreateSite(_ context.Context, s *model.Site) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.sites[s.ID] = s
	return nil
}

func (r *stubSiteRepo) FindSiteByID(_ context.Context, id string) (*model.Site, error) {
	s, ok := r.sites[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *stubSiteRepo) ListSites(_ context.Context, sc scope.Scope) ([]model.Site, error) {
	var out []model.Site
	for _, s := range r.sites {
		if sc.AllowsSite(s.ID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSiteRepo) UpdateSite(_ context.Context, s *model.Site) error {
	r.sites[s.ID] = s
	return nil
}

func (r *stubSiteRepo) DeleteSite(_ context.Context, id string) error {
	delete(r.sites, id)
	return nil
}

func (r *stubSiteRepo) CreateStall(_ context.Context, s *model.Stall) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.stalls[s.ID] = s
	return nil
}

func (r *stubSiteRepo) FindStallByID(_ context.Context, id string) (*model.Stall, error) {
	s, ok := r.stalls[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *stubSiteRepo) ListStalls(_ context.Context, siteID string) ([]model.Stall, error) {
	var out []model.Stall
	for _, s := range r.stalls {
		if s.SiteID == siteID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSiteRepo) UpdateStall(_ context.Context, s *model.Stall) error {
	r.stalls[s.ID] = s
	return nil
}

func (r *stubSiteRepo) DeleteStall(_ context.Context, id string) error {
	delete(r.stalls, id)
	return nil
}

// ── ResetRepository ──────────────────────────────────────────────────────────

// stubResetRepo holds per-collection document id sets and records every
// batch commit so tests can assert page/commit counts.
type stubResetRepo struct {
	docs        map[string][]string          // collection → ids
	stallOf     map[string]string            // doc id → stall id
	commits     map[string]int               // collection → DeleteBatch calls
	failColl    map[string]error             // collection → forced error
	lastBatches map[string][]int             // collection → batch sizes
}

func newStubResetRepo() *stubResetRepo {
	return &stubResetRepo{
		docs:        map[string][]string{},
		stallOf:     map[string]string{},
		commits:     map[string]int{},
		failColl:    map[string]error{},
		lastBatches: map[string][]int{},
	}
}

func (r *stubResetRepo) seed(collection string, n int) {
	for i := 0; i < n; i++ {
		r.docs[collection] = append(r.docs[collection], fmt.Sprintf("%s-%d", collection, i))
	}
}

func (r *stubResetRepo) FetchPage(_ context.Context, collection string, limit int) ([]string, error) {
	if err := r.failColl[collection]; err != nil {
		return nil, err
	}
	ids := r.docs[collection]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (r *stubResetRepo) FetchStallPage(_ context.Context, collection, stallID string, limit int) ([]string, error) {
	var out []string
	for _, id := range r.docs[collection] {
		if r.stallOf[id] == stallID {
			out = append(out, id)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubResetRepo) DeleteBatch(_ context.Context, collection string, ids []string) error {
	r.commits[collection]++
	r.lastBatches[collection] = append(r.lastBatches[collection], len(ids))
	remove := map[string]bool{}
	for _, id := range ids {
		remove[id] = true
	}
	var kept []string
	for _, id := range r.docs[collection] {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	r.docs[collection] = kept
	return nil
}

// ── StaffRepository ──────────────────────────────────────────────────────────

type stubStaffRepo struct {
	details  map[string]*model.StaffDetails
	activity []model.StaffActivityLog
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{details: map[string]*model.StaffDetails{}}
}

func (r *stubStaffRepo) SaveDetails(_ context.Context, d *model.StaffDetails, entry *model.StaffActivityLog) error {
	cp := *d
	r.details[d.UID] = &cp
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()
	r.activity = append(r.activity, *entry)
	return nil
}

func (r *stubStaffRepo) FindDetails(_ context.Context, uid string) (*model.StaffDetails, error) {
	d, ok := r.details[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}

func (r *stubStaffRepo) AppendActivity(_ context.Context, entry *model.StaffActivityLog) error {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()
	r.activity = append(r.activity, *entry)
	return nil
}

func (r *stubStaffRepo) ListActivity(_ context.Context, staffUID string, _ int) ([]model.StaffActivityLog, error) {
	var out []model.StaffActivityLog
	for _, entry := range r.activity {
		if entry.StaffUID == staffUID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// ── TokenRepository ──────────────────────────────────────────────────────────

type stubTokenRepo struct {
	tokens   map[string]*model.GoogleOAuthToken
	saveErr  error
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: map[string]*model.GoogleOAuthToken{}}
}

func (r *stubTokenRepo) Save(_ context.Context, t *model.GoogleOAuthToken) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if t.RefreshToken == "" {
		if existing, ok := r.tokens[t.UID]; ok {
			t.RefreshToken = existing.RefreshToken
		}
	}
	cp := *t
	r.tokens[t.UID] = &cp
	return nil
}

func (r *stubTokenRepo) Find(_ context.Context, uid string) (*model.GoogleOAuthToken, error) {
	t, ok := r.tokens[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (r *stubTokenRepo) Delete(_ context.Context, uid string) error {
	delete(r.tokens, uid)
	return nil
}

// ── JobDispatcher ────────────────────────────────────────────────────────────

type stubDispatcher struct {
	emails  []interface{}
	imports []interface{}
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, payload interface{}) error {
	d.emails = append(d.emails, payload)
	return nil
}

func (d *stubDispatcher) EnqueueImport(_ context.Context, payload interface{}) error {
	d.imports = append(d.imports, payload)
	return nil
}

// ── OAuthExchanger ───────────────────────────────────────────────────────────

type stubExchanger struct {
	exchangeErr error
	token       *oauth2.Token
}

func (e *stubExchanger) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (e *stubExchanger) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	if e.exchangeErr != nil {
		return nil, e.exchangeErr
	}
	if e.token != nil {
		return e.token, nil
	}
	return &oauth2.Token{AccessToken: "at-" + code, TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}, nil
}

func (e *stubExchanger) TokenSource(_ context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return oauth2.StaticTokenSource(tok)
}
