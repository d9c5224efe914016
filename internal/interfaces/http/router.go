package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Query         *inventory.QueryUseCase
	Stock         *inventory.StockUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Movements     *inventory.MovementUseCase
	Transfers     *inventory.TransferUseCase
	JWTSecret     string
	JWTIssuer     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	managers := RequireRole(entity.RolesStockManagers...)
	users := RequireRole(entity.RolesStockUsers...)

	// Inventario
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Query, deps.Stock, deps.Replenishment)
	inv.Get("/", users, invHandler.List)
	inv.Get("/stats", users, invHandler.Stats)
	inv.Get("/low-stock", users, invHandler.LowStock)
	inv.Get("/replenishment-list", users, invHandler.GetReplenishmentList)
	inv.Get("/reconcile", users, invHandler.Reconcile)
	inv.Post("/adjust", managers, invHandler.Adjust)
	inv.Post("/adjust/bulk", managers, invHandler.BulkAdjust)
	inv.Post("/reserve", users, invHandler.Reserve)
	inv.Post("/release", users, invHandler.Release)

	// Movimientos (ledger)
	mov := inv.Group("/movements")
	movHandler := NewMovementHandler(deps.Movements)
	mov.Post("/", managers, movHandler.Record)
	mov.Post("/purchase", managers, movHandler.RecordPurchase)
	mov.Post("/sale", users, movHandler.RecordSale)
	mov.Post("/initial", managers, movHandler.RecordInitial)
	mov.Get("/", users, movHandler.List)
	mov.Get("/stats", users, movHandler.Stats)
	mov.Get("/export", users, movHandler.Export)

	// Traslados
	tr := api.Group("/transfers")
	trHandler := NewTransferHandler(deps.Transfers)
	tr.Post("/", managers, trHandler.Create)
	tr.Get("/", users, trHandler.List)
	tr.Get("/stats", users, trHandler.Stats)
	tr.Get("/:id", users, trHandler.Get)
	tr.Post("/:id/send", managers, trHandler.Send)
	tr.Post("/:id/complete", managers, trHandler.Complete)
	tr.Post("/:id/cancel", managers, trHandler.Cancel)
}
