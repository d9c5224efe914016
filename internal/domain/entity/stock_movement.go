package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de inventario.
type MovementType string

const (
	MovementPurchase    MovementType = "purchase"
	MovementSale        MovementType = "sale"
	MovementAdjustment  MovementType = "adjustment"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
	MovementReturn      MovementType = "return"
	MovementLoss        MovementType = "loss"
	MovementFound       MovementType = "found"
	MovementInitial     MovementType = "initial"
)

// MovementTypes lista todos los tipos válidos (orden estable para reportes).
var MovementTypes = []MovementType{
	MovementPurchase, MovementSale, MovementAdjustment,
	MovementTransferIn, MovementTransferOut, MovementReturn,
	MovementLoss, MovementFound, MovementInitial,
}

// Valid informa si el tipo es conocido.
func (t MovementType) Valid() bool {
	for _, v := range MovementTypes {
		if v == t {
			return true
		}
	}
	return false
}

// StockMovement hecho inmutable: un cambio de cantidad en un InventoryRecord.
// NewQuantity = max(0, PreviousQuantity + Quantity) capturado al momento de escribir.
type StockMovement struct {
	ID               string
	BranchID         string
	ProductID        string
	UserID           string
	Quantity         decimal.Decimal // delta con signo
	Type             MovementType
	ReferenceID      string // orden, factura o traslado (opcional)
	Notes            string
	CostPerUnit      decimal.Decimal
	TotalCost        decimal.Decimal
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	CreatedAt        time.Time
}
