package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Escalas de las columnas DECIMAL(10,2) y DECIMAL(12,2).
const (
	QuantityScale = 2
	CostScale     = 2
)

// Máximos representables en DECIMAL(10,2), DECIMAL(12,2) y DECIMAL(14,2).
var (
	MaxQuantity  = decimal.RequireFromString("99999999.99")
	MaxCost      = decimal.RequireFromString("9999999999.99")
	MaxTotalCost = decimal.RequireFromString("999999999999.99")
)

// RoundQty redondea una cantidad a la escala persistida.
func RoundQty(d decimal.Decimal) decimal.Decimal { return d.Round(QuantityScale) }

// RoundCost redondea un costo a la escala persistida.
func RoundCost(d decimal.Decimal) decimal.Decimal { return d.Round(CostScale) }

// HasQtyScale informa si la cantidad no pierde precisión al persistirse.
func HasQtyScale(d decimal.Decimal) bool { return d.Equal(RoundQty(d)) }

// QtyInRange informa si el valor absoluto cabe en una columna de cantidad.
func QtyInRange(d decimal.Decimal) bool { return d.Abs().LessThanOrEqual(MaxQuantity) }

// TotalCostInRange informa si el valor absoluto cabe en la columna total_cost.
func TotalCostInRange(d decimal.Decimal) bool { return d.Abs().LessThanOrEqual(MaxTotalCost) }

// ValidateQuantity exige escala de dos decimales y valor dentro de MaxQuantity.
func ValidateQuantity(d decimal.Decimal) error {
	if !HasQtyScale(d) {
		return fmt.Errorf("cantidad %s con más de %d decimales: %w", d, QuantityScale, domain.ErrInvalidInput)
	}
	if !QtyInRange(d) {
		return fmt.Errorf("cantidad %s supera el máximo %s: %w", d, MaxQuantity, domain.ErrInvalidInput)
	}
	return nil
}

// ValidateCost exige un costo no negativo y dentro de MaxCost.
func ValidateCost(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("costo por unidad negativo: %w", domain.ErrInvalidInput)
	}
	if RoundCost(d).GreaterThan(MaxCost) {
		return fmt.Errorf("costo %s supera el máximo %s: %w", d, MaxCost, domain.ErrInvalidInput)
	}
	return nil
}
