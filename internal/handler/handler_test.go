package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stallsync/internal/dto"
	"stallsync/internal/middleware"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeVerifier maps bearer tokens to uids.
type fakeVerifier struct {
	tokens map[string]string
}

func (v *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (string, error) {
	uid, ok := v.tokens[idToken]
	if !ok {
		return "", errors.New("token expired")
	}
	return uid, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.UID] = u
	return nil
}

func (r *fakeUserRepo) FindByUID(_ context.Context, uid string) (*model.User, error) {
	u, ok := r.users[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) { return nil, nil }
func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.UID] = u
	return nil
}
func (r *fakeUserRepo) Delete(_ context.Context, uid string) error {
	delete(r.users, uid)
	return nil
}

// authFixture wires the auth middleware in front of a router the same way
// the composition root does, with token "admin-token" bound to an admin,
// "staff-token" to active staff and "ghost-token" to a deactivated user.
func authFixture() (*gin.Engine, *fakeUserRepo) {
	users := &fakeUserRepo{users: map[string]*model.User{
		"u-admin": {UID: "u-admin", Email: "a@x.com", DisplayName: "Admin", Role: model.RoleAdmin, Status: model.StatusActive},
		"u-staff": {UID: "u-staff", Email: "s@x.com", DisplayName: "Staff", Role: model.RoleStaff, Status: model.StatusActive},
		"u-ghost": {UID: "u-ghost", Email: "g@x.com", DisplayName: "Ghost", Role: model.RoleStaff, Status: model.StatusInactive},
	}}
	verifier := &fakeVerifier{tokens: map[string]string{
		"admin-token": "u-admin",
		"staff-token": "u-staff",
		"ghost-token": "u-ghost",
	}}

	r := gin.New()
	v1 := r.Group("/v1", middleware.FirebaseAuth(verifier, users))
	v1.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, middleware.CurrentUser(c))
	})
	v1.GET("/admin-only", middleware.RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, users
}

func doReq(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := authFixture()
	w := doReq(r, http.MethodGet, "/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "auth_required")
}

func TestAuthRejectsBadToken(t *testing.T) {
	r, _ := authFixture()
	w := doReq(r, http.MethodGet, "/v1/me", "nonsense", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_invalid")
}

func TestAuthRejectsInactiveUser(t *testing.T) {
	r, _ := authFixture()
	w := doReq(r, http.MethodGet, "/v1/me", "ghost-token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthLoadsCurrentUser(t *testing.T) {
	r, _ := authFixture()
	w := doReq(r, http.MethodGet, "/v1/me", "staff-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-staff")
}

func TestRequireRoleForbidsStaff(t *testing.T) {
	r, _ := authFixture()

	w := doReq(r, http.MethodGet, "/v1/admin-only", "staff-token", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doReq(r, http.MethodGet, "/v1/admin-only", "admin-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// fakeUserService records the last call and returns canned results.
type fakeUserService struct {
	created   *dto.CreateUserRequest
	deleteErr error
	createErr error
}

func (s *fakeUserService) CreateUser(_ context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &req
	return &dto.UserResponse{UID: "uid-1", Email: req.Email, DisplayName: req.DisplayName, Role: req.Role, Status: model.StatusActive}, nil
}

func (s *fakeUserService) ListUsers(_ context.Context) ([]dto.UserResponse, error) {
	return []dto.UserResponse{}, nil
}

func (s *fakeUserService) UpdateUser(_ context.Context, uid string, _ dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return &dto.UserResponse{UID: uid}, nil
}

func (s *fakeUserService) DeleteUser(_ context.Context, _, _ string) error { return s.deleteErr }

func usersRouter(svc service.UserService) *gin.Engine {
	h := NewUsersHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, &model.User{UID: "u-admin", Role: model.RoleAdmin, Status: model.StatusActive})
	})
	r.POST("/v1/users", h.Create)
	r.DELETE("/v1/users/:uid", h.Delete)
	return r
}

func TestCreateUserReturns201(t *testing.T) {
	svc := &fakeUserService{}
	r := usersRouter(svc)

	w := doReq(r, http.MethodPost, "/v1/users", "", `{
		"email": "new@x.com", "password": "secret1", "display_name": "New User", "role": "staff"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, "new@x.com", svc.created.Email)
}

func TestCreateUserValidatesBody(t *testing.T) {
	r := usersRouter(&fakeUserService{})

	// Short password and bad role
	w := doReq(r, http.MethodPost, "/v1/users", "", `{
		"email": "new@x.com", "password": "abc", "display_name": "New User", "role": "owner"
	}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Password")
	assert.Contains(t, w.Body.String(), "Role")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r := usersRouter(&fakeUserService{createErr: service.ErrEmailExists})
	w := doReq(r, http.MethodPost, "/v1/users", "", `{
		"email": "dup@x.com", "password": "secret1", "display_name": "Dup", "role": "staff"
	}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email_exists")
}

func TestDeleteUserSelfDeleteForbidden(t *testing.T) {
	r := usersRouter(&fakeUserService{deleteErr: service.ErrSelfDelete})
	w := doReq(r, http.MethodDelete, "/v1/users/u-admin", "", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "self_delete")
}

type fakeAdminService struct {
	resp *dto.ResetDataResponse
	err  error
}

func (s *fakeAdminService) ResetData(_ context.Context, _ *model.User, req dto.ResetDataRequest) (*dto.ResetDataResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func adminRouter(svc service.AdminService) *gin.Engine {
	h := NewAdminHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, &model.User{UID: "u-admin", Role: model.RoleAdmin, Status: model.StatusActive})
	})
	r.POST("/v1/admin/reset-data", h.ResetData)
	return r
}

func TestResetDataStatusByOutcome(t *testing.T) {
	body := `{"confirmation": "RESET DATA"}`

	cases := []struct {
		name string
		resp *dto.ResetDataResponse
		want int
	}{
		{"all cleared", &dto.ResetDataResponse{Cleared: []string{"sites", "stalls"}, DocumentsDeleted: 12}, http.StatusOK},
		{"partial", &dto.ResetDataResponse{Cleared: []string{"sites"}, Failed: map[string]string{"stalls": "deadline exceeded"}, DocumentsDeleted: 6}, http.StatusMultiStatus},
		{"nothing cleared", &dto.ResetDataResponse{Failed: map[string]string{"sites": "unavailable"}}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := adminRouter(&fakeAdminService{resp: tc.resp})
			w := doReq(r, http.MethodPost, "/v1/admin/reset-data", "", body)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestResetDataBadConfirmation(t *testing.T) {
	r := adminRouter(&fakeAdminService{err: service.ErrBadConfirmation})
	w := doReq(r, http.MethodPost, "/v1/admin/reset-data", "", `{"confirmation": "reset data"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_confirmation")
}

type fakeIntegrationService struct {
	callbackErr error
	callbackUID string
	imported    bool
	importErr   error
}

func (s *fakeIntegrationService) ConnectURL(uid string) (string, error) {
	return "https://accounts.google.com/o/oauth2/auth?state=" + uid, nil
}

func (s *fakeIntegrationService) HandleCallback(_ context.Context, state, code string) (string, error) {
	if s.callbackErr != nil {
		return "", s.callbackErr
	}
	return s.callbackUID, nil
}

func (s *fakeIntegrationService) Status(_ context.Context, _ string) (*service.IntegrationStatus, error) {
	return &service.IntegrationStatus{Connected: true}, nil
}

func (s *fakeIntegrationService) Disconnect(_ context.Context, _ string) error { return nil }

func (s *fakeIntegrationService) TriggerImport(_ context.Context, _ *model.User, _, _ string) error {
	if s.importErr != nil {
		return s.importErr
	}
	s.imported = true
	return nil
}

const testFrontend = "https://app.example.com/settings"

func oauthRouter(svc service.IntegrationService) *gin.Engine {
	h := NewOAuthHandler(svc, testFrontend)
	r := gin.New()
	r.GET("/oauth/google/callback", h.Callback)
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, &model.User{UID: "u1", Role: model.RoleManager, Status: model.StatusActive})
	})
	r.GET("/v1/integrations/google/connect", h.Connect)
	r.POST("/v1/integrations/google/import", h.TriggerImport)
	return r
}

func TestCallbackRedirects(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want string
	}{
		{"missing code", "/oauth/google/callback", nil, "error=missing_code"},
		{"invalid state", "/oauth/google/callback?code=c&state=bad", service.ErrInvalidState, "error=invalid_state"},
		{"exchange failed", "/oauth/google/callback?code=c&state=ok", service.ErrExchangeFailed, "error=exchange_failed"},
		{"storage failed", "/oauth/google/callback?code=c&state=ok", service.ErrStorageFailed, "error=storage_failed"},
		{"success", "/oauth/google/callback?code=c&state=ok", nil, "connected=google"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := oauthRouter(&fakeIntegrationService{callbackErr: tc.err, callbackUID: "u1"})
			w := doReq(r, http.MethodGet, tc.path, "", "")
			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, testFrontend+"?"+tc.want, w.Header().Get("Location"))
		})
	}
}

func TestTriggerImportQueues(t *testing.T) {
	svc := &fakeIntegrationService{}
	r := oauthRouter(svc)
	w := doReq(r, http.MethodPost, "/v1/integrations/google/import", "", `{"site_id": "s1", "stall_id": "st1"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, svc.imported)
}

// fakeSalesService only exercises the CSV import path; the rest of the
// interface is inert.
type fakeSalesService struct {
	importedSite  string
	importedStall string
	importResult  *dto.ImportResult
	importErr     error
}

func (s *fakeSalesService) RecordSale(_ context.Context, _ *model.User, _ dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) ListSales(_ context.Context, _ *model.User, _ dto.TransactionFilter) ([]dto.SaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) UpdateSale(_ context.Context, _ *model.User, _ string, _ dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) DeleteSale(_ context.Context, _ *model.User, _ string) error { return nil }
func (s *fakeSalesService) RecordFoodSale(_ context.Context, _ *model.User, _ dto.RecordFoodSaleRequest) (*dto.FoodSaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) ListFoodSales(_ context.Context, _ *model.User, _ dto.TransactionFilter) ([]dto.FoodSaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) UpdateFoodSale(_ context.Context, _ *model.User, _ string, _ dto.UpdateFoodSaleRequest) (*dto.FoodSaleResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) DeleteFoodSale(_ context.Context, _ *model.User, _ string) error {
	return nil
}
func (s *fakeSalesService) ImportFoodSalesCSV(_ context.Context, _ *model.User, siteID, stallID string, _ io.Reader) (*dto.ImportResult, error) {
	if s.importErr != nil {
		return nil, s.importErr
	}
	s.importedSite = siteID
	s.importedStall = stallID
	return s.importResult, nil
}
func (s *fakeSalesService) RecordExpense(_ context.Context, _ *model.User, _ dto.RecordExpenseRequest) (*dto.ExpenseResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) ListExpenses(_ context.Context, _ *model.User, _ dto.TransactionFilter) ([]dto.ExpenseResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) UpdateExpense(_ context.Context, _ *model.User, _ string, _ dto.UpdateExpenseRequest) (*dto.ExpenseResponse, error) {
	return nil, nil
}
func (s *fakeSalesService) DeleteExpense(_ context.Context, _ *model.User, _ string) error {
	return nil
}

func salesImportRouter(svc service.SalesService) *gin.Engine {
	h := NewSalesHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserKey, &model.User{UID: "u1", Role: model.RoleManager, ManagedSiteIDs: []string{"s1"}, Status: model.StatusActive})
	})
	r.POST("/v1/food-sales/import", h.ImportFoodSalesCSV)
	return r
}

func importUpload(t *testing.T, fields map[string]string, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileBody != "" {
		fw, err := mw.CreateFormFile("file", "report.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(fileBody))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImportFoodSalesCSVUpload(t *testing.T) {
	svc := &fakeSalesService{importResult: &dto.ImportResult{Created: 2, Skipped: 1}}
	r := salesImportRouter(svc)

	body, contentType := importUpload(t, map[string]string{"site_id": "s1", "stall_id": "st1"},
		"order_id,date,meal_type,amount,payment_method\nHB-1,2026-08-30,lunch,120.50,online\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/food-sales/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.importedSite)
	assert.Equal(t, "st1", svc.importedStall)
	assert.Contains(t, w.Body.String(), `"created":2`)
	assert.Contains(t, w.Body.String(), `"skipped":1`)
}

func TestImportFoodSalesCSVRequiresFields(t *testing.T) {
	r := salesImportRouter(&fakeSalesService{})

	// No stall_id
	body, contentType := importUpload(t, map[string]string{"site_id": "s1"}, "data")
	req := httptest.NewRequest(http.MethodPost, "/v1/food-sales/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No file part
	body, contentType = importUpload(t, map[string]string{"site_id": "s1", "stall_id": "st1"}, "")
	req = httptest.NewRequest(http.MethodPost, "/v1/food-sales/import", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerImportNotConnected(t *testing.T) {
	r := oauthRouter(&fakeIntegrationService{importErr: service.ErrNotConnected})
	w := doReq(r, http.MethodPost, "/v1/integrations/google/import", "", `{"site_id": "s1", "stall_id": "st1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
