package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecordResponse estado de un registro de inventario con derivados.
type InventoryRecordResponse struct {
	BranchID          string          `json:"branch_id"`
	BranchName        string          `json:"branch_name,omitempty"`
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku,omitempty"`
	ProductName       string          `json:"product_name,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	StockStatus       string          `json:"stock_status,omitempty"`
	LastUpdated       time.Time       `json:"last_updated"`
}

// InventoryListResponse lista paginada de inventario.
type InventoryListResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// InventoryQueryRequest filtros de GET /api/inventory.
type InventoryQueryRequest struct {
	PageRequest
	BranchID  string `query:"branch_id"`
	ProductID string `query:"product_id"`
	Search    string `query:"search"`
	Status    string `query:"status" validate:"omitempty,oneof=in_stock low_stock out_of_stock needs_restock"`
}

// AdjustStockRequest body para POST /api/inventory/adjust.
type AdjustStockRequest struct {
	BranchID    string           `json:"branch_id" validate:"required"`
	ProductID   string           `json:"product_id" validate:"required"`
	NewQuantity decimal.Decimal  `json:"new_quantity"`
	Reason      string           `json:"reason" validate:"max=500"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
}

// BulkAdjustItem una línea del ajuste masivo.
type BulkAdjustItem struct {
	ProductID   string           `json:"product_id" validate:"required"`
	NewQuantity decimal.Decimal  `json:"new_quantity"`
	Reason      string           `json:"reason" validate:"max=500"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
}

// BulkAdjustStockRequest body para POST /api/inventory/adjust/bulk.
type BulkAdjustStockRequest struct {
	BranchID    string           `json:"branch_id" validate:"required"`
	Adjustments []BulkAdjustItem `json:"adjustments" validate:"required,min=1,max=500,dive"`
}

// BulkAdjustResult resultado individual de un ajuste masivo.
type BulkAdjustResult struct {
	ProductID string                 `json:"product_id"`
	Success   bool                   `json:"success"`
	Changed   bool                   `json:"changed"`
	Movement  *StockMovementResponse `json:"movement,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Code      string                 `json:"code,omitempty"`
}

// BulkAdjustStockResponse salida del ajuste masivo (éxito parcial permitido).
type BulkAdjustStockResponse struct {
	BranchID  string             `json:"branch_id"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []BulkAdjustResult `json:"results"`
}

// AdjustStockResponse salida de un ajuste; Movement es nil si no hubo cambio.
type AdjustStockResponse struct {
	Changed  bool                   `json:"changed"`
	Movement *StockMovementResponse `json:"movement,omitempty"`
}

// ReservationRequest body para reservar o liberar stock.
type ReservationRequest struct {
	BranchID  string          `json:"branch_id" validate:"required"`
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// BranchStatsDTO totales de una sucursal.
type BranchStatsDTO struct {
	BranchID      string          `json:"branch_id"`
	BranchName    string          `json:"branch_name"`
	Records       int             `json:"records"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalReserved decimal.Decimal `json:"total_reserved"`
	StockValue    decimal.Decimal `json:"stock_value"`
	InStock       int             `json:"in_stock"`
	LowStock      int             `json:"low_stock"`
	OutOfStock    int             `json:"out_of_stock"`
	NeedsRestock  int             `json:"needs_restock"`
}

// InventoryStatsResponse respuesta de GET /api/inventory/stats.
type InventoryStatsResponse struct {
	Records            int              `json:"records"`
	TotalQuantity      decimal.Decimal  `json:"total_quantity"`
	TotalReserved      decimal.Decimal  `json:"total_reserved"`
	StockValue         decimal.Decimal  `json:"stock_value"`
	ByStatus           map[string]int   `json:"by_status"`
	Branches           []BranchStatsDTO `json:"branches"`
	MovementsLast7Days int              `json:"movements_last_7_days"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un producto
// de una sucursal que se encuentra por debajo de su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	BranchID           string          `json:"branch_id"`
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	StockStatus        string          `json:"stock_status"`
	AvailableQuantity  decimal.Decimal `json:"available_quantity"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - AvailableQuantity
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
