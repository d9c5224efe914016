package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para purchase/sale/initial. Quantity se toma en valor absoluto;
// el signo lo fija el tipo.
type RecordMovementRequest struct {
	BranchID    string           `json:"branch_id" validate:"required"`
	ProductID   string           `json:"product_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty" validate:"max=100"`
	Notes       string           `json:"notes,omitempty" validate:"max=500"`
}

// StockMovementResponse salida de un movimiento del libro.
type StockMovementResponse struct {
	ID               string          `json:"id"`
	BranchID         string          `json:"branch_id"`
	ProductID        string          `json:"product_id"`
	UserID           string          `json:"user_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	Type             string          `json:"type"`
	ReferenceID      string          `json:"reference_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CostPerUnit      decimal.Decimal `json:"cost_per_unit"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// MovementQueryRequest filtros de GET /api/inventory/movements.
type MovementQueryRequest struct {
	PageRequest
	BranchID    string `query:"branch_id"`
	ProductID   string `query:"product_id"`
	UserID      string `query:"user_id"`
	ReferenceID string `query:"reference_id"`
	Type        string `query:"type" validate:"omitempty,oneof=purchase sale adjustment transfer_in transfer_out return loss found initial"`
	From        string `query:"from"` // RFC3339 o YYYY-MM-DD
	To          string `query:"to"`
	Sort        string `query:"sort" validate:"omitempty,oneof=asc desc"`
}

// MovementTypeStatDTO conteo por tipo.
type MovementTypeStatDTO struct {
	Type     string          `json:"type"`
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MovementDayStatDTO conteo por día.
type MovementDayStatDTO struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ProductMovementStatDTO producto con más movimientos.
type ProductMovementStatDTO struct {
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

// MovementStatsResponse respuesta de GET /api/inventory/movements/stats.
type MovementStatsResponse struct {
	WindowDays         int                      `json:"window_days"`
	TotalMovements     int                      `json:"total_movements"`
	ByType             []MovementTypeStatDTO    `json:"by_type"`
	ByDay              []MovementDayStatDTO     `json:"by_day"`
	TopProductsByCount []ProductMovementStatDTO `json:"top_products_by_count"`
}

// CreateMovementRequest body para POST /api/inventory/movements: cualquier tipo,
// Quantity con signo (debe ser coherente con el tipo).
type CreateMovementRequest struct {
	BranchID    string           `json:"branch_id" validate:"required"`
	ProductID   string           `json:"product_id" validate:"required"`
	Type        string           `json:"type" validate:"required,oneof=purchase sale adjustment return loss found initial"`
	Quantity    decimal.Decimal  `json:"quantity"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty" validate:"max=100"`
	Notes       string           `json:"notes,omitempty" validate:"max=500"`
}
