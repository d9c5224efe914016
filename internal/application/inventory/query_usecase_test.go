package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// seedMixed deja un registro en cada estado de stock:
//
//	A/P = 3  (min 5)      → low_stock
//	A/Q = 50              → in_stock
//	B/P = 8  (reorden 10) → needs_restock
//	B/Q = 0               → out_of_stock
func seedMixed(t *testing.T, f *fixture) {
	t.Helper()
	f.seed(t, branchA, productP, "3", "2")
	f.seed(t, branchA, productQ, "50", "1")
	f.seed(t, branchB, productP, "8", "2")
	f.seed(t, branchB, productQ, "2", "1")
	_, err := f.movements.RecordSale(context.Background(), f.seller, dto.RecordMovementRequest{
		BranchID: branchB, ProductID: productQ, Quantity: d("2"),
	})
	require.NoError(t, err)
}

func TestQueryInventory_FiltrosYEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedMixed(t, f)

	all, err := f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.Page.Total)
	for _, it := range all.Items {
		assert.NotEmpty(t, it.StockStatus)
		assert.NotEmpty(t, it.SKU)
	}

	low, err := f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{Status: entity.StockStatusLowStock})
	require.NoError(t, err)
	require.Equal(t, 1, low.Page.Total)
	assert.Equal(t, branchA, low.Items[0].BranchID)
	assert.Equal(t, productP, low.Items[0].ProductID)

	search, err := f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{Search: "q-0"})
	require.NoError(t, err)
	assert.Equal(t, 2, search.Page.Total)

	page, err := f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{BranchID: branchA, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Total)
	assert.Len(t, page.Items, 1)

	_, err = f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{Status: "agotadisimo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.queries.QueryInventory(ctx, f.seller, repository.InventoryFilter{BranchID: branchForeign})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInventoryStats_TotalesPorSucursal(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)

	stats, err := f.queries.GetInventoryStats(context.Background(), f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Records)
	assertDec(t, "61", stats.TotalQuantity)
	assertDec(t, "72", stats.StockValue)
	assert.Equal(t, 1, stats.ByStatus[entity.StockStatusInStock])
	assert.Equal(t, 1, stats.ByStatus[entity.StockStatusLowStock])
	assert.Equal(t, 1, stats.ByStatus[entity.StockStatusNeedsRestock])
	assert.Equal(t, 1, stats.ByStatus[entity.StockStatusOutOfStock])
	assert.Len(t, stats.Branches, 2)
	assert.Equal(t, 5, stats.MovementsLast7Days)

	onlyB, err := f.queries.GetInventoryStats(context.Background(), f.admin, branchB)
	require.NoError(t, err)
	require.Len(t, onlyB.Branches, 1)
	assert.Equal(t, branchB, onlyB.Branches[0].BranchID)
	assertDec(t, "8", onlyB.TotalQuantity)
}

func TestLowStock_ExcluyeInStock(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)

	all, err := f.queries.LowStock(context.Background(), f.seller, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := f.queries.LowStock(context.Background(), f.seller, branchA)
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, entity.StockStatusLowStock, onlyA[0].StockStatus)
}

func TestReplenishmentList_PrioridadPorGravedad(t *testing.T) {
	f := newFixture(t)
	seedMixed(t, f)

	list, err := f.repl.GenerateReplenishmentList(context.Background(), f.clerk, "")
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, entity.StockStatusOutOfStock, list[0].StockStatus)
	assert.Equal(t, branchB, list[0].BranchID)
	assert.Equal(t, productQ, list[0].ProductID)
	assertDec(t, "12", list[0].IdealStock)
	assertDec(t, "12", list[0].SuggestedOrderQty)
	assertDec(t, "12", list[0].EstimatedOrderCost)
	assert.Equal(t, 1, list[0].Priority)

	assert.Equal(t, entity.StockStatusLowStock, list[1].StockStatus)
	assertDec(t, "15", list[1].IdealStock)
	assertDec(t, "12", list[1].SuggestedOrderQty)
	assertDec(t, "24", list[1].EstimatedOrderCost)
	assert.Equal(t, 2, list[1].Priority)

	assert.Equal(t, entity.StockStatusNeedsRestock, list[2].StockStatus)
	assertDec(t, "7", list[2].SuggestedOrderQty)
	assert.Equal(t, 3, list[2].Priority)
}

func TestReconcile_RegistroInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.queries.Reconcile(context.Background(), f.admin, branchA, productP)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
