package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *inventory.ReconciliationEngine
	Query     *inventory.StockQueryUseCase
	LowStock  *inventory.LowStockUseCase
	Audit     *inventory.AuditUseCase
	Localizer *Localizer
	Logger    *logger.Logger
	JWTSecret string
	AppName   string
}

// Router registra middlewares y rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Localizer == nil {
		deps.Localizer = defaultLocalizer
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	app.Use(RequestLogger(deps.Logger))
	app.Use(Localize(deps.Localizer))

	app.Get("/health", NewHealthHandler(deps.AppName).Check)

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	h := NewInventoryHandler(deps.Engine, deps.Query, deps.LowStock, deps.Audit)
	invGroup.Post("/movements", RequireRole(RoleAdmin, RoleManager, RoleStaff), h.RegisterMovement)
	invGroup.Get("/products/:id/movements", h.ListMovements)
	invGroup.Get("/products/:id/stock", h.GetStock)
	invGroup.Get("/low-stock", h.ListLowStock)
	invGroup.Get("/audit", RequireRole(RoleAdmin, RoleManager), h.RunAudit)
}
