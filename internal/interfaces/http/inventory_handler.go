package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler consultas de inventario, ajustes y reservas (protegido).
type InventoryHandler struct {
	query         *inventory.QueryUseCase
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(query *inventory.QueryUseCase, stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{query: query, stock: stock, replenishment: replenishment}
}

// List godoc
// @Summary      Consultar inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  false  "Sucursal"
// @Param        product_id  query  string  false  "Producto"
// @Param        search      query  string  false  "SKU o nombre"
// @Param        status      query  string  false  "in_stock | low_stock | out_of_stock | needs_restock"
// @Param        limit       query  int     false  "Máximo 100"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.InventoryListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.InventoryQueryRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.query.QueryInventory(c.Context(), a, repository.InventoryFilter{
		BranchID:  q.BranchID,
		ProductID: q.ProductID,
		Search:    q.Search,
		Status:    q.Status,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Totales de inventario por sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Vacío = todas las sucursales"
// @Success      200  {object}  dto.InventoryStatsResponse
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.query.GetInventoryStats(c.Context(), a, c.Query("branch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Registros bajo stock mínimo o punto de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Vacío = todas las sucursales"
// @Success      200  {array}  dto.InventoryRecordResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.query.LowStock(c.Context(), a, c.Query("branch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Registros por debajo del punto de reorden con la cantidad sugerida
//
//	para llegar a 1.5 veces el punto de reorden, ordenados por urgencia.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Vacío = todas las sucursales"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), a, c.Query("branch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Reconcile godoc
// @Summary      Conciliar cantidad contra el libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id   query  string  true  "Sucursal"
// @Param        product_id  query  string  true  "Producto"
// @Success      200  {object}  inventory.ReconcileResult
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	branchID, productID := c.Query("branch_id"), c.Query("product_id")
	if branchID == "" || productID == "" {
		return badRequest(c, "VALIDATION", "branch_id y product_id son requeridos")
	}
	out, err := h.query.Reconcile(c.Context(), a, branchID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajustar stock a una cantidad absoluta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "branch_id, product_id, new_quantity, reason"
// @Success      200  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.stock.AdjustStock(c.Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BulkAdjust godoc
// @Summary      Ajuste masivo (éxito parcial)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkAdjustStockRequest  true  "branch_id y lista de ajustes"
// @Success      200  {object}  dto.BulkAdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust/bulk [post]
func (h *InventoryHandler) BulkAdjust(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.BulkAdjustStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.stock.BulkAdjustStock(c.Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reserve godoc
// @Summary      Reservar stock disponible
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "branch_id, product_id, quantity"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/reserve [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.stock.ReserveStock(c.Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Release godoc
// @Summary      Liberar una reserva
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "branch_id, product_id, quantity"
// @Success      200  {object}  dto.InventoryRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReservationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.stock.ReleaseReservation(c.Context(), a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
