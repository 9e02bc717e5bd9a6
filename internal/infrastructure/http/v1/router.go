// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"fueldesk/internal/domain/auth"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
	"fueldesk/internal/domain/closing"
	"fueldesk/internal/domain/ledger"
	"fueldesk/internal/domain/lossrate"
	"fueldesk/internal/domain/reports"
	"fueldesk/internal/infrastructure/http/v1/handlers"
	"fueldesk/internal/infrastructure/http/v1/middleware"
	"fueldesk/internal/infrastructure/storage/postgres"
	"fueldesk/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Domain services
	AuthService     *auth.Service
	StoreService    *store.Service
	ProductService  *product.Service
	TankService     *tank.Service
	MovementService *ledger.Service
	LossRateService *lossrate.Service
	ClosingService  *closing.Service
	ReportsService  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	api := router.Group("/api/v1")
	{
		registerAuthRoutes(api, baseHandler, cfg)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, baseHandler, cfg)
		registerMovementRoutes(protected, baseHandler, cfg)
		registerLossRateRoutes(protected, baseHandler, cfg)
		registerClosingRoutes(protected, baseHandler, cfg)
		registerReportRoutes(protected, baseHandler, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication and user administration
// endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewAuthHandler(base, cfg.AuthService)

	public := rg.Group("/auth")
	{
		public.POST("/login", handler.Login)
		public.POST("/refresh", handler.Refresh)
	}

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	{
		protected.POST("/logout", handler.Logout)
		protected.GET("/me", handler.Me)

		users := protected.Group("/users")
		users.Use(middleware.RequireAdmin())
		{
			users.POST("", handler.Register)
			users.GET("", handler.ListUsers)
			users.GET("/:id", handler.GetUser)
			users.PUT("/:id/roles", handler.SetRoles)
			users.DELETE("/:id", handler.Deactivate)
		}
	}
}

// registerCatalogRoutes registers store, product and tank endpoints.
// Reads are open to every authenticated user; writes need the manager role.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")

	{
		handler := handlers.NewStoreHandler(base, cfg.StoreService)
		registerCatalogCRUD(catalogs.Group("/stores"), handler.CatalogHandler)
	}

	{
		handler := handlers.NewProductHandler(base, cfg.ProductService)
		registerCatalogCRUD(catalogs.Group("/products"), handler.CatalogHandler)
	}

	{
		handler := handlers.NewTankHandler(base, cfg.TankService)
		group := catalogs.Group("/tanks")
		group.GET("/by-store/:storeId", handler.ListByStore)
		registerCatalogCRUD(group, handler.CatalogHandler)
	}
}

// registerMovementRoutes registers fuel movement ledger endpoints.
func registerMovementRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewMovementHandler(base, cfg.MovementService)

	movements := rg.Group("/movements")
	{
		movements.POST("", middleware.RequireRole(auth.RoleOperator, auth.RoleManager), handler.Record)
		movements.GET("", handler.List)
		movements.GET("/:id", handler.Get)
	}
}

// registerLossRateRoutes registers loss-rate config endpoints.
func registerLossRateRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewLossRateHandler(base, cfg.LossRateService)

	rates := rg.Group("/loss-rates")
	{
		rates.POST("", middleware.RequireRole(auth.RoleManager), handler.Create)
		rates.GET("", handler.List)
		rates.GET("/resolve", handler.Resolve)
		rates.GET("/:id", handler.Get)
		rates.PUT("/:id", middleware.RequireRole(auth.RoleManager), handler.Update)
		rates.DELETE("/:id", middleware.RequireRole(auth.RoleManager), handler.Delete)
	}
}

// registerClosingRoutes registers period-closing endpoints.
func registerClosingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewClosingHandler(base, cfg.ClosingService)

	closings := rg.Group("/closings")
	{
		closings.POST("/preview", middleware.RequireRole(auth.RoleManager), handler.Preview)
		closings.POST("", middleware.RequireRole(auth.RoleManager), handler.Execute)
		closings.DELETE("", middleware.RequireRole(auth.RoleManager), handler.Delete)
		closings.GET("", handler.ListBatch)
		closings.GET("/:id", handler.Get)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewReportsHandler(base, cfg.ReportsService)

	reportsGroup := rg.Group("/reports")
	{
		reportsGroup.GET("/periods", handler.PeriodReport)
		reportsGroup.GET("/periods/export", handler.PeriodReportExcel)
	}
}

// catalogCRUD is the route surface every catalog handler exposes.
type catalogCRUD interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// registerCatalogCRUD registers standard CRUD routes for a catalog.
func registerCatalogCRUD(group *gin.RouterGroup, handler catalogCRUD) {
	group.GET("", handler.List)
	group.POST("", middleware.RequireRole(auth.RoleManager), handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", middleware.RequireRole(auth.RoleManager), handler.Update)
	group.DELETE("/:id", middleware.RequireRole(auth.RoleManager), handler.Delete)
	group.POST("/:id/deletion-mark", middleware.RequireRole(auth.RoleManager), handler.SetDeletionMark)
}
