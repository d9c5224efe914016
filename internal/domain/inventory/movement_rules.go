package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Sign signo exigido por un tipo de movimiento: +1 entrada, -1 salida, 0 cualquiera (ajuste).
func Sign(t entity.MovementType) int {
	switch t {
	case entity.MovementPurchase, entity.MovementTransferIn, entity.MovementReturn,
		entity.MovementFound, entity.MovementInitial:
		return 1
	case entity.MovementSale, entity.MovementTransferOut, entity.MovementLoss:
		return -1
	default:
		return 0
	}
}

// ValidateMovement verifica tipo, delta distinto de cero, escala, rango y coherencia signo/tipo.
func ValidateMovement(t entity.MovementType, delta decimal.Decimal) error {
	if !t.Valid() {
		return fmt.Errorf("tipo de movimiento %q: %w", t, domain.ErrInvalidInput)
	}
	if delta.IsZero() {
		return fmt.Errorf("cantidad cero: %w", domain.ErrInvalidInput)
	}
	if err := ValidateQuantity(delta); err != nil {
		return err
	}
	switch Sign(t) {
	case 1:
		if delta.IsNegative() {
			return fmt.Errorf("%s requiere cantidad positiva: %w", t, domain.ErrInvalidInput)
		}
	case -1:
		if delta.IsPositive() {
			return fmt.Errorf("%s requiere cantidad negativa: %w", t, domain.ErrInvalidInput)
		}
	}
	return nil
}

// ForceSign aplica el signo del tipo a una cantidad (atajos purchase/sale/initial).
func ForceSign(t entity.MovementType, qty decimal.Decimal) decimal.Decimal {
	switch Sign(t) {
	case 1:
		return qty.Abs()
	case -1:
		return qty.Abs().Neg()
	}
	return qty
}
