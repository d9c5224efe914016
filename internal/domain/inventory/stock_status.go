package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockStatus clasifica la cantidad disponible frente a los umbrales del producto.
//
//	disponible <= 0               → out_of_stock
//	disponible <= minStockLevel   → low_stock
//	disponible <= reorderPoint    → needs_restock
//	otro caso                     → in_stock
func StockStatus(available, minStockLevel, reorderPoint decimal.Decimal) string {
	switch {
	case available.LessThanOrEqual(decimal.Zero):
		return entity.StockStatusOutOfStock
	case minStockLevel.IsPositive() && available.LessThanOrEqual(minStockLevel):
		return entity.StockStatusLowStock
	case reorderPoint.IsPositive() && available.LessThanOrEqual(reorderPoint):
		return entity.StockStatusNeedsRestock
	default:
		return entity.StockStatusInStock
	}
}

// ViewStatus atajo para una vista de inventario.
func ViewStatus(v *entity.InventoryView) string {
	return StockStatus(v.AvailableQuantity(), v.MinStockLevel, v.ReorderPoint)
}

// StockStatuses estados válidos para filtros.
var StockStatuses = []string{
	entity.StockStatusInStock,
	entity.StockStatusLowStock,
	entity.StockStatusOutOfStock,
	entity.StockStatusNeedsRestock,
}

// ValidStockStatus informa si s es un estado conocido.
func ValidStockStatus(s string) bool {
	for _, v := range StockStatuses {
		if v == s {
			return true
		}
	}
	return false
}
