package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de stock derivados de los umbrales del producto.
const (
	StockStatusInStock      = "in_stock"
	StockStatusLowStock     = "low_stock"
	StockStatusOutOfStock   = "out_of_stock"
	StockStatusNeedsRestock = "needs_restock"
)

// InventoryRecord es el agregado por (sucursal, producto): cantidad, reservado y costo promedio.
// Invariante: 0 <= ReservedQuantity <= Quantity. Nunca se borra, solo queda en cero.
type InventoryRecord struct {
	BranchID         string
	ProductID        string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	AverageCost      decimal.Decimal
	LastUpdated      time.Time
}

// AvailableQuantity cantidad disponible para nuevos compromisos.
func (r *InventoryRecord) AvailableQuantity() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// Clone copia el registro (los decimales son valores inmutables).
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	return &c
}

// InventoryView registro de inventario enriquecido con datos de sucursal y catálogo
// para las consultas de lectura.
type InventoryView struct {
	InventoryRecord
	CompanyID     string
	BranchName    string
	SKU           string
	ProductName   string
	MinStockLevel decimal.Decimal
	ReorderPoint  decimal.Decimal
}
