package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del traslado entre sucursales.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// TransferStatuses lista los estados en orden del ciclo de vida.
var TransferStatuses = []TransferStatus{TransferPending, TransferInTransit, TransferCompleted, TransferCancelled}

// Valid informa si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferInTransit, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// StockTransfer traslado de uno o más productos entre dos sucursales de la misma empresa.
type StockTransfer struct {
	ID            string
	CompanyID     string
	FromBranchID  string
	ToBranchID    string
	UserID        string
	Status        TransferStatus
	TransferDate  time.Time
	CompletedDate *time.Time
	CompletedBy   string
	Notes         string
	Items         []StockTransferItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalQuantity suma de unidades de todos los ítems.
func (t *StockTransfer) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Quantity)
	}
	return total
}

// Clone copia profunda (incluye ítems).
func (t *StockTransfer) Clone() *StockTransfer {
	c := *t
	c.Items = append([]StockTransferItem(nil), t.Items...)
	if t.CompletedDate != nil {
		d := *t.CompletedDate
		c.CompletedDate = &d
	}
	return &c
}

// StockTransferItem línea del traslado. Quantity > 0, UnitCost >= 0.
type StockTransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}
