package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryFilter filtros de consulta de inventario. CompanyID es obligatorio.
type InventoryFilter struct {
	CompanyID string
	BranchID  string
	ProductID string
	Search    string // SKU o nombre (contiene, sin distinguir mayúsculas)
	Status    string // estado de stock calculado sobre el disponible
	Limit     int
	Offset    int
}

// BranchSummary totales de inventario por sucursal con conteo por estado de stock.
type BranchSummary struct {
	BranchID      string
	BranchName    string
	Records       int
	TotalQuantity decimal.Decimal
	TotalReserved decimal.Decimal
	StockValue    decimal.Decimal // Σ cantidad × costo promedio
	InStock       int
	LowStock      int
	OutOfStock    int
	NeedsRestock  int
}

// InventoryRepository puerto del agregado de inventario por (sucursal, producto).
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción del Querier.
type InventoryRepository interface {
	// GetOrCreateForUpdate inserta la fila si no existe (upsert atómico, el conflicto de
	// unicidad cuenta como éxito) y la devuelve bloqueada.
	GetOrCreateForUpdate(ctx context.Context, branchID, productID string, seedCost decimal.Decimal) (*entity.InventoryRecord, error)
	// GetForUpdate devuelve la fila bloqueada o nil si no existe.
	GetForUpdate(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error)
	// Get lectura sin bloqueo; nil si no existe.
	Get(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error)
	// Save persiste cantidad, reservado, costo y fecha de una fila ya bloqueada.
	Save(ctx context.Context, record *entity.InventoryRecord) error

	List(ctx context.Context, filter InventoryFilter) ([]*entity.InventoryView, int, error)
	// ListBelowReorderPoint vistas cuya cantidad disponible no supera el punto de reorden
	// o el stock mínimo; BranchID vacío = todas las sucursales de la empresa.
	ListBelowReorderPoint(ctx context.Context, companyID, branchID string) ([]*entity.InventoryView, error)
	SummarizeByBranch(ctx context.Context, companyID, branchID string) ([]BranchSummary, error)
}
