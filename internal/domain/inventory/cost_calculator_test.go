package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator(t *testing.T) {
	cases := []struct {
		name                           string
		qty, cost, inQty, inCost, want string
	}{
		{"stock vacío toma el costo de entrada", "0", "0", "10", "5", "5"},
		{"promedio simple", "10", "4", "10", "6", "5"},
		{"promedio ponderado", "30", "10", "10", "20", "12.5"},
		{"redondeo a dos decimales", "3", "1", "1", "2", "1.25"},
		{"tercios", "2", "1", "1", "2", "1.33"},
		{"stock negativo se trata como cero", "-5", "100", "4", "7", "7"},
		{"suma no positiva conserva costo de entrada", "0", "3", "0", "9", "9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.CostCalculator(d(tc.qty), d(tc.cost), d(tc.inQty), d(tc.inCost))
			assert.True(t, got.Equal(d(tc.want)), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestHasQtyScale(t *testing.T) {
	assert.True(t, inventory.HasQtyScale(d("10.25")))
	assert.True(t, inventory.HasQtyScale(d("3")))
	assert.False(t, inventory.HasQtyScale(d("0.001")))
}

func TestValidateQuantity_Rango(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(inventory.MaxQuantity))
	assert.ErrorIs(t, inventory.ValidateQuantity(d("100000000.00")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(d("123456789012")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(d("1.005")), domain.ErrInvalidInput)
}

func TestValidateCost_Rango(t *testing.T) {
	assert.NoError(t, inventory.ValidateCost(d("0")))
	assert.NoError(t, inventory.ValidateCost(inventory.MaxCost))
	assert.ErrorIs(t, inventory.ValidateCost(d("-0.01")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateCost(d("10000000000")), domain.ErrInvalidInput)
}
