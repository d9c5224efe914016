package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const statsMovementWindowDays = 7

// QueryUseCase lecturas sin bloqueo sobre inventario: listados, totales y conciliación.
type QueryUseCase struct {
	deps Deps
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(deps Deps) *QueryUseCase {
	return &QueryUseCase{deps: deps.withDefaults()}
}

// ReconcileResult compara la cantidad del agregado con la suma del libro.
type ReconcileResult struct {
	BranchID   string          `json:"branch_id"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Consistent bool            `json:"consistent"`
}

// QueryInventory lista registros de la empresa del actor con filtros y paginación.
func (uc *QueryUseCase) QueryInventory(ctx context.Context, actor Actor, filter repository.InventoryFilter) (*dto.InventoryListResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	if filter.Status != "" && !domaininv.ValidStockStatus(filter.Status) {
		return nil, fmt.Errorf("estado de stock %q: %w", filter.Status, domain.ErrInvalidInput)
	}
	if err := uc.ownBranch(ctx, actor, filter.BranchID); err != nil {
		return nil, err
	}
	filter.CompanyID = actor.CompanyID
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	views, total, err := uc.deps.Reader.Inventory.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryRecordResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toViewResponse(v))
	}
	return &dto.InventoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetInventoryStats totales por sucursal y movimientos de los últimos 7 días.
func (uc *QueryUseCase) GetInventoryStats(ctx context.Context, actor Actor, branchID string) (*dto.InventoryStatsResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	if err := uc.ownBranch(ctx, actor, branchID); err != nil {
		return nil, err
	}

	var (
		summaries []repository.BranchSummary
		movStats  *repository.MovementStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := uc.deps.Reader.Inventory.SummarizeByBranch(gctx, actor.CompanyID, branchID)
		summaries = s
		return err
	})
	g.Go(func() error {
		since := uc.deps.Clock().AddDate(0, 0, -statsMovementWindowDays)
		s, err := uc.deps.Reader.Movements.Stats(gctx, actor.CompanyID, since, 0)
		movStats = s
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.InventoryStatsResponse{
		TotalQuantity: decimal.Zero,
		TotalReserved: decimal.Zero,
		StockValue:    decimal.Zero,
		ByStatus:      make(map[string]int, len(domaininv.StockStatuses)),
		Branches:      make([]dto.BranchStatsDTO, 0, len(summaries)),
	}
	for _, s := range domaininv.StockStatuses {
		out.ByStatus[s] = 0
	}
	for _, s := range summaries {
		out.Records += s.Records
		out.TotalQuantity = out.TotalQuantity.Add(s.TotalQuantity)
		out.TotalReserved = out.TotalReserved.Add(s.TotalReserved)
		out.StockValue = out.StockValue.Add(s.StockValue)
		out.ByStatus[entity.StockStatusInStock] += s.InStock
		out.ByStatus[entity.StockStatusLowStock] += s.LowStock
		out.ByStatus[entity.StockStatusOutOfStock] += s.OutOfStock
		out.ByStatus[entity.StockStatusNeedsRestock] += s.NeedsRestock
		out.Branches = append(out.Branches, dto.BranchStatsDTO{
			BranchID:      s.BranchID,
			BranchName:    s.BranchName,
			Records:       s.Records,
			TotalQuantity: s.TotalQuantity,
			TotalReserved: s.TotalReserved,
			StockValue:    domaininv.RoundCost(s.StockValue),
			InStock:       s.InStock,
			LowStock:      s.LowStock,
			OutOfStock:    s.OutOfStock,
			NeedsRestock:  s.NeedsRestock,
		})
	}
	out.StockValue = domaininv.RoundCost(out.StockValue)
	if movStats != nil {
		out.MovementsLast7Days = movStats.TotalMovements
	}
	return out, nil
}

// LowStock registros cuyo disponible no supera el punto de reorden o el mínimo.
func (uc *QueryUseCase) LowStock(ctx context.Context, actor Actor, branchID string) ([]dto.InventoryRecordResponse, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	if err := uc.ownBranch(ctx, actor, branchID); err != nil {
		return nil, err
	}
	views, err := uc.deps.Reader.Inventory.ListBelowReorderPoint(ctx, actor.CompanyID, branchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryRecordResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toViewResponse(v))
	}
	return out, nil
}

// Reconcile verifica que la suma de movimientos iguale la cantidad actual.
func (uc *QueryUseCase) Reconcile(ctx context.Context, actor Actor, branchID, productID string) (*ReconcileResult, error) {
	b, err := uc.deps.branch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if err := uc.deps.authorize(ctx, actor, b.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	rec, err := uc.deps.Reader.Inventory.Get(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inventario %s/%s: %w", branchID, productID, domain.ErrNotFound)
	}
	sum, err := uc.deps.Reader.Movements.SumQuantity(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	return &ReconcileResult{
		BranchID:   branchID,
		ProductID:  productID,
		Quantity:   rec.Quantity,
		LedgerSum:  sum,
		Consistent: sum.Equal(rec.Quantity),
	}, nil
}

// ownBranch una sucursal de otra empresa se reporta como inexistente.
func (uc *QueryUseCase) ownBranch(ctx context.Context, actor Actor, branchID string) error {
	if branchID == "" {
		return nil
	}
	b, err := uc.deps.branch(ctx, branchID)
	if err != nil {
		return err
	}
	if b.CompanyID != actor.CompanyID {
		return fmt.Errorf("sucursal %s: %w", branchID, domain.ErrNotFound)
	}
	return nil
}
