package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"stallsync/internal/config"
	"stallsync/internal/handler"
	"stallsync/internal/infra"
	"stallsync/internal/middleware"
	"stallsync/internal/model"
	"stallsync/internal/repository"
	"stallsync/internal/service"
	"stallsync/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine plus the
// worker handlers for the async pool.
// Dependency graph: Handler ← Service ← Repository ← Firestore/Redis
func New(cfg *config.Config, fb *infra.Firebase, rdb *redis.Client) (*gin.Engine, *worker.WorkerHandlers) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	fs := fb.Firestore

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)

	// One breaker guards every call out to Google, so a Gmail outage trips
	// the OAuth exchange too and vice versa.
	googleCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	oauthExchanger := infra.NewGuardedExchanger(infra.NewGoogleOAuth(cfg), googleCB)
	mailFetcher := infra.NewGuardedMailFetcher(infra.NewGmailFetcher(), googleCB)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(fs)
	siteRepo := repository.NewSiteRepository(fs)
	stockRepo := repository.NewStockRepository(fs)
	saleRepo := repository.NewSaleRepository(fs)
	foodSaleRepo := repository.NewFoodSaleRepository(fs)
	expenseRepo := repository.NewExpenseRepository(fs)
	staffRepo := repository.NewStaffRepository(fs)
	tokenRepo := repository.NewTokenRepository(fs)
	resetRepo := repository.NewResetRepository(fs)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	userSvc := service.NewUserService(service.NewFirebaseAuthAdmin(fb.Auth), userRepo)
	siteSvc := service.NewSiteService(siteRepo, resetRepo)
	stockSvc := service.NewStockService(stockRepo, dispatcher, cfg.AlertEmail)
	salesSvc := service.NewSalesService(saleRepo, foodSaleRepo, expenseRepo, stockRepo)
	staffSvc := service.NewStaffService(staffRepo, userRepo)
	reportSvc := service.NewReportService(saleRepo, foodSaleRepo, expenseRepo, dispatcher, cfg.ReportStoragePath)
	adminSvc := service.NewAdminService(resetRepo)
	integrationSvc := service.NewIntegrationService(oauthExchanger, tokenRepo, dispatcher, cfg.OAuthStateSecret)

	// ── Handlers ─────────────────────────────────────────────────────────────
	usersH := handler.NewUsersHandler(userSvc)
	sitesH := handler.NewSitesHandler(siteSvc)
	stockH := handler.NewStockHandler(stockSvc)
	salesH := handler.NewSalesHandler(salesSvc)
	staffH := handler.NewStaffHandler(staffSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	oauthH := handler.NewOAuthHandler(integrationSvc, cfg.FrontendURL)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(fs, rdb, googleCB))
	// Google consent redirect lands here without a session
	r.GET("/oauth/google/callback", oauthH.Callback)

	// Protected routes
	authMW := middleware.FirebaseAuth(middleware.NewFirebaseVerifier(fb.Auth), userRepo)
	v1 := r.Group("/v1", authMW)
	{
		v1.GET("/me", usersH.Me)

		users := v1.Group("/users", middleware.RequireRole(model.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:uid", usersH.Update)
			users.DELETE("/:uid", usersH.Delete)
		}

		// Sites: admin writes, everyone reads within their scope
		v1.GET("/sites", sitesH.List)
		v1.GET("/sites/:id", sitesH.Get)
		v1.GET("/sites/:id/stalls", sitesH.ListStalls)
		sites := v1.Group("/sites", middleware.RequireRole(model.RoleAdmin))
		{
			sites.POST("", sitesH.Create)
			sites.PUT("/:id", sitesH.Update)
			sites.DELETE("/:id", sitesH.Delete)
			sites.POST("/:id/stalls", sitesH.CreateStall)
			sites.PUT("/:id/stalls/:stall_id", sitesH.UpdateStall)
			sites.DELETE("/:id/stalls/:stall_id", sitesH.DeleteStall)
		}

		// Stock: all roles operate within their resolved scope
		v1.GET("/stock", stockH.List)
		v1.GET("/stock/:id", stockH.Get)
		v1.POST("/stock", stockH.Create)
		v1.PUT("/stock/:id", stockH.Update)
		v1.PATCH("/stock/:id/adjust", stockH.Adjust)
		v1.GET("/stock/movements", stockH.ListMovements)
		v1.DELETE("/stock/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), stockH.Delete)
		v1.POST("/stock/import", middleware.RequireRole(model.RoleAdmin, model.RoleManager), stockH.ImportCSV)

		// Sales
		v1.POST("/sales", salesH.Record)
		v1.GET("/sales", salesH.List)
		v1.PUT("/sales/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.Update)
		v1.DELETE("/sales/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.Delete)

		v1.POST("/food-sales", salesH.RecordFoodSale)
		v1.GET("/food-sales", salesH.ListFoodSales)
		v1.PUT("/food-sales/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.UpdateFoodSale)
		v1.DELETE("/food-sales/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.DeleteFoodSale)
		v1.POST("/food-sales/import", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.ImportFoodSalesCSV)

		v1.POST("/expenses", salesH.RecordExpense)
		v1.GET("/expenses", salesH.ListExpenses)
		v1.PUT("/expenses/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.UpdateExpense)
		v1.DELETE("/expenses/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), salesH.DeleteExpense)

		// Staff HR: admin and manager only
		staff := v1.Group("/staff", middleware.RequireRole(model.RoleAdmin, model.RoleManager))
		{
			staff.PUT("/:uid/details", staffH.UpsertDetails)
			staff.GET("/:uid/details", staffH.GetDetails)
			staff.POST("/:uid/attendance", staffH.MarkAttendance)
			staff.GET("/:uid/activity", staffH.ListActivity)
		}

		// Reports
		v1.GET("/reports/daily-summary", reportsH.DailySummary)
		v1.GET("/reports/daily-summary/pdf", middleware.RequireRole(model.RoleAdmin, model.RoleManager), reportsH.SummaryPDF)
		v1.POST("/reports/email-summary", middleware.RequireRole(model.RoleAdmin, model.RoleManager), reportsH.EmailSummary)

		// Google integration (Gmail sales import)
		google := v1.Group("/integrations/google")
		{
			google.GET("/connect", oauthH.Connect)
			google.GET("/status", oauthH.Status)
			google.DELETE("/disconnect", oauthH.Disconnect)
			google.POST("/import", middleware.RequireRole(model.RoleAdmin, model.RoleManager), oauthH.TriggerImport)
		}

		// Destructive admin operations
		v1.POST("/admin/reset-data", middleware.RequireRole(model.RoleAdmin), adminH.ResetData)
	}

	handlers := &worker.WorkerHandlers{
		Email:  worker.NewEmailWorker(mailer),
		Import: worker.NewImportWorker(tokenRepo, foodSaleRepo, oauthExchanger, mailFetcher),
	}
	return r, handlers
}
