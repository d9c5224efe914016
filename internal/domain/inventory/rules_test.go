package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestStockStatus(t *testing.T) {
	cases := []struct {
		available, min, reorder, want string
	}{
		{"0", "5", "10", entity.StockStatusOutOfStock},
		{"-1", "5", "10", entity.StockStatusOutOfStock},
		{"5", "5", "10", entity.StockStatusLowStock},
		{"8", "5", "10", entity.StockStatusNeedsRestock},
		{"10", "5", "10", entity.StockStatusNeedsRestock},
		{"11", "5", "10", entity.StockStatusInStock},
		{"1", "0", "0", entity.StockStatusInStock},
	}
	for _, tc := range cases {
		got := inventory.StockStatus(d(tc.available), d(tc.min), d(tc.reorder))
		assert.Equal(t, tc.want, got, "disponible=%s min=%s reorden=%s", tc.available, tc.min, tc.reorder)
	}
}

func TestValidateMovement(t *testing.T) {
	ok := []struct {
		typ   entity.MovementType
		delta string
	}{
		{entity.MovementPurchase, "3"},
		{entity.MovementSale, "-3"},
		{entity.MovementAdjustment, "-1.5"},
		{entity.MovementAdjustment, "2"},
		{entity.MovementTransferOut, "-10"},
		{entity.MovementTransferIn, "10"},
		{entity.MovementInitial, "1"},
		{entity.MovementPurchase, "99999999.99"},
		{entity.MovementSale, "-99999999.99"},
	}
	for _, tc := range ok {
		assert.NoError(t, inventory.ValidateMovement(tc.typ, d(tc.delta)), "%s %s", tc.typ, tc.delta)
	}

	bad := []struct {
		typ   entity.MovementType
		delta string
	}{
		{entity.MovementSale, "3"},
		{entity.MovementPurchase, "-3"},
		{entity.MovementLoss, "1"},
		{entity.MovementAdjustment, "0"},
		{entity.MovementType("gift"), "1"},
		{entity.MovementPurchase, "0.001"},
		{entity.MovementPurchase, "123456789012.00"},
		{entity.MovementSale, "-100000000"},
	}
	for _, tc := range bad {
		err := inventory.ValidateMovement(tc.typ, d(tc.delta))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s %s", tc.typ, tc.delta)
	}
}

func TestForceSign(t *testing.T) {
	assert.True(t, inventory.ForceSign(entity.MovementSale, d("4")).Equal(d("-4")))
	assert.True(t, inventory.ForceSign(entity.MovementPurchase, d("-4")).Equal(d("4")))
	assert.True(t, inventory.ForceSign(entity.MovementInitial, d("-4")).Equal(d("4")))
	assert.True(t, inventory.ForceSign(entity.MovementAdjustment, d("-4")).Equal(d("-4")))
}

func TestTransferTransitions(t *testing.T) {
	next, err := inventory.NextStatus(entity.TransferPending, inventory.ActionSend)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferInTransit, next)

	next, err = inventory.NextStatus(entity.TransferInTransit, inventory.ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, next)

	for _, from := range []entity.TransferStatus{entity.TransferPending, entity.TransferInTransit} {
		next, err = inventory.NextStatus(from, inventory.ActionCancel)
		require.NoError(t, err)
		assert.Equal(t, entity.TransferCancelled, next)
	}

	rejected := []struct {
		from   entity.TransferStatus
		action string
	}{
		{entity.TransferPending, inventory.ActionComplete},
		{entity.TransferInTransit, inventory.ActionSend},
		{entity.TransferCompleted, inventory.ActionCancel},
		{entity.TransferCompleted, inventory.ActionSend},
		{entity.TransferCancelled, inventory.ActionCancel},
		{entity.TransferCancelled, inventory.ActionComplete},
	}
	for _, tc := range rejected {
		_, err := inventory.NextStatus(tc.from, tc.action)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "%s desde %s", tc.action, tc.from)
	}

	assert.True(t, inventory.IsTerminal(entity.TransferCompleted))
	assert.True(t, inventory.IsTerminal(entity.TransferCancelled))
	assert.False(t, inventory.IsTerminal(entity.TransferPending))
}
