package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea de un traslado. UnitCost vacío = costo promedio de origen.
type TransferItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromBranchID string                `json:"from_branch_id" validate:"required"`
	ToBranchID   string                `json:"to_branch_id" validate:"required"`
	TransferDate *time.Time            `json:"transfer_date,omitempty"`
	Notes        string                `json:"notes,omitempty" validate:"max=1000"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

// CancelTransferRequest body opcional para POST /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// TransferItemResponse línea de un traslado.
type TransferItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	FromBranchID  string                 `json:"from_branch_id"`
	ToBranchID    string                 `json:"to_branch_id"`
	UserID        string                 `json:"user_id"`
	Status        string                 `json:"status"`
	TransferDate  time.Time              `json:"transfer_date"`
	CompletedDate *time.Time             `json:"completed_date,omitempty"`
	CompletedBy   string                 `json:"completed_by,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	TotalQuantity decimal.Decimal        `json:"total_quantity"`
	Items         []TransferItemResponse `json:"items"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferQueryRequest filtros de GET /api/transfers.
type TransferQueryRequest struct {
	PageRequest
	BranchID string `query:"branch_id"`
	Status   string `query:"status" validate:"omitempty,oneof=pending in_transit completed cancelled"`
	From     string `query:"from"`
	To       string `query:"to"`
}

// TransferStatsResponse respuesta de GET /api/transfers/stats.
type TransferStatsResponse struct {
	WindowDays         int             `json:"window_days"`
	Total              int             `json:"total"`
	ByStatus           map[string]int  `json:"by_status"`
	UnitsMoved         decimal.Decimal `json:"units_moved"`
	AvgCompletionHours decimal.Decimal `json:"avg_completion_hours"`
}
