package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferFilter filtros de traslados. BranchID coincide con origen o destino.
type TransferFilter struct {
	CompanyID string
	BranchID  string
	Status    entity.TransferStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// TransferStats agregados de traslados de una empresa desde una fecha.
type TransferStats struct {
	Total              int
	ByStatus           map[entity.TransferStatus]int
	UnitsMoved         decimal.Decimal // solo completados
	AvgCompletionHours decimal.Decimal
}

// StockTransferRepository puerto de persistencia de traslados (con sus ítems).
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	// GetForUpdate bloquea la fila del traslado; nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	UpdateStatus(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, int, error)
	Stats(ctx context.Context, companyID string, since time.Time) (*TransferStats, error)
}
