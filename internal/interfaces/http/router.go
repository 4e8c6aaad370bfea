package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/auth"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/returns"
	"github.com/jhoicas/pos-inventario-api/internal/application/sales"
	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/application/usecase"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	CategoryUC       *usecase.CategoryUseCase
	ImageUpload      *usecase.ImageUploadUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	SalesUC          *sales.UseCase
	ReturnsUC        *returns.UseCase
	DashboardUC      *appanalytics.DashboardUseCase
	ReportUC         *appanalytics.ReportUseCase
	SettingsUC       *settings.UseCase
	BackupUC         *settings.BackupUseCase
	JWTSecret        string
	UploadDir        string
	Location         *time.Location
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir)
	}

	api := app.Group("/api")

	// Auth (público; register acepta token opcional para el rol del que registra)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup.Post("/register", OptionalAuth(deps.JWTSecret), authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	stockRoles := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	protected.Get("/users", adminOnly, authHandler.ListUsers)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.RegisterMovement, deps.ImageUpload)
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Post("/upload-image", stockRoles, productHandler.UploadImage)
	products.Get("/barcode/:code", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/movements", productHandler.Movements)
	products.Put("/:id", stockRoles, productHandler.Update)
	products.Delete("/:id", stockRoles, productHandler.Delete)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", stockRoles, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", stockRoles, categoryHandler.Update)
	categories.Delete("/:id", stockRoles, categoryHandler.Delete)

	// Inventory movements
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/movements", stockRoles, inventoryHandler.RegisterMovement)

	// Sales
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.SalesUC, deps.Location)
	salesGroup.Post("/", salesHandler.Create)
	salesGroup.Get("/", salesHandler.List)
	salesGroup.Get("/summary/today", salesHandler.TodaySummary)
	salesGroup.Get("/summary/month", salesHandler.MonthlySummary)
	salesGroup.Get("/:id", salesHandler.GetByID)
	salesGroup.Get("/:id/invoice", salesHandler.Invoice)
	salesGroup.Delete("/:id", adminOnly, salesHandler.Cancel)

	// Returns
	returnsGroup := protected.Group("/returns")
	returnsHandler := NewReturnsHandler(deps.ReturnsUC)
	returnsGroup.Post("/", returnsHandler.Create)
	returnsGroup.Get("/", returnsHandler.List)
	returnsGroup.Get("/sale/:saleId/items", returnsHandler.SaleItems)
	returnsGroup.Get("/:id", returnsHandler.GetByID)
	returnsGroup.Put("/:id/status", stockRoles, returnsHandler.UpdateStatus)
	returnsGroup.Delete("/:id", adminOnly, returnsHandler.Delete)

	// Dashboard
	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/kpis", dashboardHandler.GetKPIs)
	dashboard.Get("/sales-chart", dashboardHandler.SalesChart)
	dashboard.Get("/sales-vs-returns", dashboardHandler.SalesVsReturns)
	dashboard.Get("/category-distribution", dashboardHandler.CategoryDistribution)
	dashboard.Get("/low-stock-products", dashboardHandler.LowStockProducts)
	dashboard.Get("/recent-sales", dashboardHandler.RecentSales)
	dashboard.Get("/top-selling-products", dashboardHandler.TopSellingProducts)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC)
	protected.Post("/reports/generate", reportHandler.Generate)

	// Settings (las rutas fijas van antes de /:key)
	settingsGroup := protected.Group("/settings")
	settingsHandler := NewSettingsHandler(deps.SettingsUC, deps.BackupUC)
	settingsGroup.Get("/", settingsHandler.List)
	settingsGroup.Get("/dict", settingsHandler.Dict)
	settingsGroup.Get("/export/json", settingsHandler.Export)
	settingsGroup.Get("/backups", adminOnly, settingsHandler.ListBackups)
	settingsGroup.Post("/backup", adminOnly, settingsHandler.CreateBackup)
	settingsGroup.Post("/restore/:name", adminOnly, settingsHandler.RestoreBackup)
	settingsGroup.Post("/reset", adminOnly, settingsHandler.Reset)
	settingsGroup.Put("/bulk", adminOnly, settingsHandler.BulkUpdate)
	settingsGroup.Post("/", adminOnly, settingsHandler.Create)
	settingsGroup.Get("/:key", settingsHandler.Get)
	settingsGroup.Put("/:key", adminOnly, settingsHandler.Update)
	settingsGroup.Delete("/:key", adminOnly, settingsHandler.Delete)
}
