package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// idealStockFactor multiplicador del punto de reorden para el stock objetivo.
var idealStockFactor = decimal.NewFromFloat(1.5)

// ReplenishmentUseCase genera la lista de reposición para una sucursal o toda la empresa.
type ReplenishmentUseCase struct {
	deps  Deps
	query *QueryUseCase
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(deps Deps) *ReplenishmentUseCase {
	deps = deps.withDefaults()
	return &ReplenishmentUseCase{deps: deps, query: &QueryUseCase{deps: deps}}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la cantidad
// sugerida de pedido y un ranking de prioridad: primero el estado más grave, luego el
// mayor déficit frente al punto de reorden.
// branchID puede ser vacío para considerar todas las sucursales de la empresa.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, actor Actor, branchID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if err := uc.deps.authorize(ctx, actor, actor.CompanyID, entity.RolesStockUsers); err != nil {
		return nil, err
	}
	if err := uc.query.ownBranch(ctx, actor, branchID); err != nil {
		return nil, err
	}

	rawItems, err := uc.deps.Reader.Inventory.ListBelowReorderPoint(ctx, actor.CompanyID, branchID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		suggestions = append(suggestions, suggest(item))
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if sa, sb := severity(a.StockStatus), severity(b.StockStatus); sa != sb {
			return sa < sb
		}
		defA := a.ReorderPoint.Sub(a.AvailableQuantity)
		defB := b.ReorderPoint.Sub(b.AvailableQuantity)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.SKU < b.SKU
	})

	// 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func suggest(item *entity.InventoryView) dto.ReplenishmentSuggestionDTO {
	available := item.AvailableQuantity()
	target := item.ReorderPoint
	if target.LessThan(item.MinStockLevel) {
		target = item.MinStockLevel
	}
	idealStock := domaininv.RoundQty(target.Mul(idealStockFactor))
	suggestedQty := idealStock.Sub(decimal.Max(available, decimal.Zero))
	if suggestedQty.IsNegative() {
		suggestedQty = decimal.Zero
	}
	return dto.ReplenishmentSuggestionDTO{
		BranchID:           item.BranchID,
		ProductID:          item.ProductID,
		SKU:                item.SKU,
		ProductName:        item.ProductName,
		StockStatus:        domaininv.ViewStatus(item),
		AvailableQuantity:  available,
		ReorderPoint:       item.ReorderPoint,
		IdealStock:         idealStock,
		SuggestedOrderQty:  suggestedQty,
		UnitCost:           item.AverageCost,
		EstimatedOrderCost: domaininv.RoundCost(suggestedQty.Mul(item.AverageCost)),
	}
}

func severity(status string) int {
	switch status {
	case entity.StockStatusOutOfStock:
		return 0
	case entity.StockStatusLowStock:
		return 1
	case entity.StockStatusNeedsRestock:
		return 2
	default:
		return 3
	}
}
