package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros del libro de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	CompanyID   string
	BranchID    string
	ProductID   string
	UserID      string
	ReferenceID string
	Type        entity.MovementType
	From        *time.Time
	To          *time.Time
	SortAsc     bool // por created_at; por defecto descendente
	Limit       int
	Offset      int
}

// MovementTypeCount cantidad de movimientos y suma de deltas por tipo.
type MovementTypeCount struct {
	Type     entity.MovementType
	Count    int
	Quantity decimal.Decimal
}

// MovementDayCount movimientos por día calendario.
type MovementDayCount struct {
	Day   time.Time
	Count int
}

// ProductMovementCount productos con más movimientos.
type ProductMovementCount struct {
	ProductID string
	Count     int
}

// MovementStats agregados de movimientos de una empresa desde una fecha.
type MovementStats struct {
	TotalMovements     int
	ByType             []MovementTypeCount
	ByDay              []MovementDayCount
	TopProductsByCount []ProductMovementCount
}

// StockMovementRepository puerto del libro de movimientos: solo inserción y lectura.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	Stats(ctx context.Context, companyID string, since time.Time, topN int) (*MovementStats, error)
	// SumQuantity Σ deltas de un (sucursal, producto); base de la conciliación.
	SumQuantity(ctx context.Context, branchID, productID string) (decimal.Decimal, error)
}
