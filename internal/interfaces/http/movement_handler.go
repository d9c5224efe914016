package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementHandler entradas y lecturas del libro de movimientos (protegido).
type MovementHandler struct {
	uc *inventory.MovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

type shortcutFn func(ctx *fiber.Ctx, a inventory.Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error)

func (h *MovementHandler) shortcut(c *fiber.Ctx, fn shortcutFn) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := fn(c, a, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RecordPurchase godoc
// @Summary      Registrar compra
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "quantity positiva, cost_per_unit recalcula el costo promedio"
// @Success      201  {object}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/purchase [post]
func (h *MovementHandler) RecordPurchase(c *fiber.Ctx) error {
	return h.shortcut(c, func(c *fiber.Ctx, a inventory.Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
		return h.uc.RecordPurchase(c.Context(), a, in)
	})
}

// RecordSale godoc
// @Summary      Registrar venta
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "quantity en valor absoluto"
// @Success      201  {object}  dto.StockMovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/sale [post]
func (h *MovementHandler) RecordSale(c *fiber.Ctx) error {
	return h.shortcut(c, func(c *fiber.Ctx, a inventory.Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
		return h.uc.RecordSale(c.Context(), a, in)
	})
}

// RecordInitial godoc
// @Summary      Registrar stock inicial
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "quantity positiva"
// @Success      201  {object}  dto.StockMovementResponse
// @Router       /api/inventory/movements/initial [post]
func (h *MovementHandler) RecordInitial(c *fiber.Ctx) error {
	return h.shortcut(c, func(c *fiber.Ctx, a inventory.Actor, in dto.RecordMovementRequest) (*dto.StockMovementResponse, error) {
		return h.uc.RecordInitialStock(c.Context(), a, in)
	})
}

// Record godoc
// @Summary      Registrar movimiento de cualquier tipo
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "quantity con signo coherente con type"
// @Success      201  {object}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.RecordMovement(c.Context(), a, inventory.MovementRequest{
		BranchID:    in.BranchID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Type:        entity.MovementType(in.Type),
		CostPerUnit: in.CostPerUnit,
		ReferenceID: in.ReferenceID,
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// movementFilter parsea y valida los filtros comunes de listado y exportación.
func movementFilter(c *fiber.Ctx) (repository.MovementFilter, bool, error) {
	var q dto.MovementQueryRequest
	if ok, err := bindQuery(c, &q); !ok {
		return repository.MovementFilter{}, false, err
	}
	from, err := parseDateParam(q.From, false)
	if err != nil {
		return repository.MovementFilter{}, false, badRequest(c, "VALIDATION", err.Error())
	}
	to, err := parseDateParam(q.To, true)
	if err != nil {
		return repository.MovementFilter{}, false, badRequest(c, "VALIDATION", err.Error())
	}
	return repository.MovementFilter{
		BranchID:    q.BranchID,
		ProductID:   q.ProductID,
		UserID:      q.UserID,
		ReferenceID: q.ReferenceID,
		Type:        entity.MovementType(q.Type),
		From:        from,
		To:          to,
		SortAsc:     q.Sort == "asc",
		Limit:       q.Limit,
		Offset:      q.Offset,
	}, true, nil
}

// List godoc
// @Summary      Consultar el libro de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        branch_id     query  string  false  "Sucursal"
// @Param        product_id    query  string  false  "Producto"
// @Param        user_id       query  string  false  "Usuario"
// @Param        reference_id  query  string  false  "Orden, factura o traslado"
// @Param        type          query  string  false  "Tipo de movimiento"
// @Param        from          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to            query  string  false  "RFC3339 o YYYY-MM-DD (inclusivo)"
// @Param        sort          query  string  false  "asc | desc (por fecha)"
// @Param        limit         query  int     false  "Máximo 100"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	filter, ok, err := movementFilter(c)
	if !ok {
		return err
	}
	out, err := h.uc.QueryMovements(c.Context(), a, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (por defecto 30, máximo 365)"
// @Success      200  {object}  dto.MovementStatsResponse
// @Router       /api/inventory/movements/stats [get]
func (h *MovementHandler) Stats(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.MovementStats(c.Context(), a, c.QueryInt("days", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar movimientos a XLSX
// @Description  Mismos filtros que el listado; máximo 5000 filas.
// @Tags         movements
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/export [get]
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return unauthorized(c)
	}
	filter, ok, err := movementFilter(c)
	if !ok {
		return err
	}
	data, contentType, err := h.uc.ExportMovements(c.Context(), a, filter)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="movimientos_%s.xlsx"`, time.Now().UTC().Format("20060102_150405")))
	return c.Send(data)
}
