package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contenedor PostgreSQL con migraciones y directorio mínimo
// ──────────────────────────────────────────────────────────────────────────────

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en -short")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("stock"),
		tcpostgres.WithUsername("stock"),
		tcpostgres.WithPassword("stock"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 25})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, postgres.MigrateUp))

	stmts := []string{
		`INSERT INTO branches (id, company_id, name, is_active) VALUES
			('b-a', 'c-1', 'A', true), ('b-b', 'c-1', 'B', true), ('b-x', 'c-2', 'X', true)`,
		`INSERT INTO products (id, company_id, sku, name, min_stock_level, reorder_point, cost) VALUES
			('p-1', 'c-1', 'P-001', 'Producto P', 5, 10, 4)`,
		`INSERT INTO users (id, company_id, role, is_active) VALUES
			('u-admin', 'c-1', 'admin', true), ('u-seller', 'c-1', 'vendedor', true), ('u-off', 'c-1', 'admin', false)`,
	}
	for _, s := range stmts {
		_, err := pool.Exec(ctx, s)
		require.NoError(t, err)
	}
	return pool
}

type pgFixture struct {
	pool      *pgxpool.Pool
	runner    *postgres.TxRunner
	movements *inventory.MovementUseCase
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
	queries   *inventory.QueryUseCase
	admin     inventory.Actor
	seller    inventory.Actor
}

func newPgFixture(t *testing.T) *pgFixture {
	pool := startPostgres(t)
	runner := postgres.NewTxRunner(pool, config.TxConfig{MaxRetries: 5, RetryBase: 5 * time.Millisecond}, nil)
	dir := postgres.NewDirectory(pool)
	deps := inventory.Deps{
		TxRunner: runner,
		Reader:   runner.Reader(),
		Catalog:  dir,
		Branches: dir,
		Access:   dir,
		Users:    dir,
		Logger:   zerolog.Nop(),
	}
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })
	return &pgFixture{
		pool:      pool,
		runner:    runner,
		movements: inventory.NewMovementUseCase(deps, nil),
		stock:     inventory.NewStockUseCase(deps),
		transfers: inventory.NewTransferUseCase(deps, idem, time.Hour),
		queries:   inventory.NewQueryUseCase(deps),
		admin:     inventory.Actor{UserID: "u-admin", CompanyID: "c-1"},
		seller:    inventory.Actor{UserID: "u-seller", CompanyID: "c-1"},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

func TestPostgres_LedgerYTraslado(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()

	_, err := f.movements.RecordInitialStock(ctx, f.admin, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("10"), CostPerUnit: decPtr("4"),
	})
	require.NoError(t, err)
	_, err = f.movements.RecordPurchase(ctx, f.admin, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("10"), CostPerUnit: decPtr("6"),
	})
	require.NoError(t, err)
	sale, err := f.movements.RecordSale(ctx, f.seller, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("3"), ReferenceID: "INV-1",
	})
	require.NoError(t, err)
	assert.True(t, dec("-3").Equal(sale.Quantity))
	assert.True(t, dec("17").Equal(sale.NewQuantity))

	_, err = f.movements.RecordSale(ctx, f.seller, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("100"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	tr, err := f.transfers.Create(ctx, f.admin, dto.CreateTransferRequest{
		FromBranchID: "b-a", ToBranchID: "b-b",
		Items: []dto.TransferItemRequest{{ProductID: "p-1", Quantity: dec("5")}},
	}, "")
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(tr.Items[0].UnitCost), "costo promedio de origen")

	_, err = f.transfers.Send(ctx, f.admin, tr.ID)
	require.NoError(t, err)
	done, err := f.transfers.Complete(ctx, f.admin, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferCompleted), done.Status)
	require.NotNil(t, done.CompletedDate)

	_, err = f.transfers.Cancel(ctx, f.admin, tr.ID, "tarde")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	for _, b := range []string{"b-a", "b-b"} {
		res, err := f.queries.Reconcile(ctx, f.admin, b, "p-1")
		require.NoError(t, err)
		assert.True(t, res.Consistent, "sucursal %s: libro %s vs cantidad %s", b, res.LedgerSum, res.Quantity)
	}

	inv, err := f.queries.QueryInventory(ctx, f.admin, repository.InventoryFilter{BranchID: "b-a"})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.True(t, dec("12").Equal(inv.Items[0].Quantity))
	assert.True(t, dec("5").Equal(inv.Items[0].AverageCost))
	assert.Equal(t, entity.StockStatusInStock, inv.Items[0].StockStatus)

	b, err := f.queries.QueryInventory(ctx, f.admin, repository.InventoryFilter{Status: entity.StockStatusLowStock})
	require.NoError(t, err)
	require.Len(t, b.Items, 1)
	assert.Equal(t, "b-b", b.Items[0].BranchID)

	movs, err := f.movements.QueryMovements(ctx, f.admin, repository.MovementFilter{ReferenceID: tr.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, movs.Page.Total)
	assert.Equal(t, string(entity.MovementTransferIn), movs.Items[0].Type, "más reciente primero")

	stats, err := f.queries.GetInventoryStats(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Records)
	assert.True(t, dec("17").Equal(stats.TotalQuantity))
	assert.Equal(t, 5, stats.MovementsLast7Days)

	ts, err := f.transfers.Stats(ctx, f.admin, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, ts.ByStatus[string(entity.TransferCompleted)])
	assert.True(t, dec("5").Equal(ts.UnitsMoved))
}

func TestPostgres_CancelEnTransitoRestauraOrigen(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()

	_, err := f.movements.RecordInitialStock(ctx, f.admin, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("8"), CostPerUnit: decPtr("4"),
	})
	require.NoError(t, err)
	tr, err := f.transfers.Create(ctx, f.admin, dto.CreateTransferRequest{
		FromBranchID: "b-a", ToBranchID: "b-b",
		Items: []dto.TransferItemRequest{{ProductID: "p-1", Quantity: dec("3")}},
	}, "")
	require.NoError(t, err)
	_, err = f.transfers.Send(ctx, f.admin, tr.ID)
	require.NoError(t, err)

	cancelled, err := f.transfers.Cancel(ctx, f.admin, tr.ID, "ruta bloqueada")
	require.NoError(t, err)
	assert.Equal(t, string(entity.TransferCancelled), cancelled.Status)

	rec, err := f.runner.Reader().Inventory.Get(ctx, "b-a", "p-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, dec("8").Equal(rec.Quantity))
	assert.True(t, rec.ReservedQuantity.IsZero())

	res, err := f.queries.Reconcile(ctx, f.admin, "b-a", "p-1")
	require.NoError(t, err)
	assert.True(t, res.Consistent)
}

func TestPostgres_ReservasConcurrentes(t *testing.T) {
	f := newPgFixture(t)
	ctx := context.Background()

	_, err := f.movements.RecordInitialStock(ctx, f.admin, dto.RecordMovementRequest{
		BranchID: "b-a", ProductID: "p-1", Quantity: dec("10"), CostPerUnit: decPtr("4"),
	})
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.stock.ReserveStock(ctx, f.seller, dto.ReservationRequest{BranchID: "b-a", ProductID: "p-1", Quantity: dec("2")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, insufficient := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, insufficient)

	rec, err := f.runner.Reader().Inventory.Get(ctx, "b-a", "p-1")
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(rec.ReservedQuantity))
}

func TestPostgres_Autorizacion(t *testing.T) {
	pool := startPostgres(t)
	dir := postgres.NewDirectory(pool)
	ctx := context.Background()

	require.NoError(t, dir.Authorize(ctx, "u-admin", "c-1", entity.RolesStockManagers))
	assert.ErrorIs(t, dir.Authorize(ctx, "u-seller", "c-1", entity.RolesStockManagers), domain.ErrForbidden)
	assert.ErrorIs(t, dir.Authorize(ctx, "u-admin", "c-2", entity.RolesStockUsers), domain.ErrForbidden)
	assert.ErrorIs(t, dir.Authorize(ctx, "u-off", "c-1", entity.RolesStockUsers), domain.ErrForbidden)
	assert.ErrorIs(t, dir.Authorize(ctx, "nadie", "c-1", entity.RolesStockUsers), domain.ErrForbidden)

	p, err := dir.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(p.ReorderPoint))
	missing, err := dir.GetBranch(ctx, "b-none")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
