package inventory_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: empresa con dos sucursales, una empresa ajena y tres roles
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID      = "c-1"
	otherCompanyID = "c-2"
	branchA        = "b-a"
	branchB        = "b-b"
	branchInactive = "b-off"
	branchForeign  = "b-x"
	productP       = "p-1"
	productQ       = "p-2"
	productForeign = "p-x"
	adminID        = "u-admin"
	clerkID        = "u-clerk"
	sellerID       = "u-seller"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.StockEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *memory.Store
	publisher *recordingPublisher
	idem      *cache.InMemoryIdempotencyStore
	movements *inventory.MovementUseCase
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
	queries   *inventory.QueryUseCase
	repl      *inventory.ReplenishmentUseCase
	admin     inventory.Actor
	clerk     inventory.Actor
	seller    inventory.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewStore()
	db.AddBranch(entity.Branch{ID: branchA, CompanyID: companyID, Name: "A", IsActive: true})
	db.AddBranch(entity.Branch{ID: branchB, CompanyID: companyID, Name: "B", IsActive: true})
	db.AddBranch(entity.Branch{ID: branchInactive, CompanyID: companyID, Name: "Cerrada", IsActive: false})
	db.AddBranch(entity.Branch{ID: branchForeign, CompanyID: otherCompanyID, Name: "X", IsActive: true})
	db.AddProduct(entity.Product{
		ID: productP, CompanyID: companyID, SKU: "P-001", Name: "Producto P",
		MinStockLevel: d("5"), ReorderPoint: d("10"), Cost: d("4"),
	})
	db.AddProduct(entity.Product{
		ID: productQ, CompanyID: companyID, SKU: "Q-001", Name: "Producto Q",
		MinStockLevel: d("2"), ReorderPoint: d("8"), Cost: d("3"),
	})
	db.AddProduct(entity.Product{ID: productForeign, CompanyID: otherCompanyID, SKU: "X-001", Name: "Ajeno", Cost: d("1")})
	db.AddUser(memory.User{ID: adminID, CompanyID: companyID, Role: entity.RoleAdmin, Active: true})
	db.AddUser(memory.User{ID: clerkID, CompanyID: companyID, Role: entity.RoleBodeguero, Active: true})
	db.AddUser(memory.User{ID: sellerID, CompanyID: companyID, Role: entity.RoleVendedor, Active: true})

	var tick atomic.Int64
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var ids atomic.Int64

	pub := &recordingPublisher{}
	deps := inventory.Deps{
		TxRunner:  db,
		Reader:    db.Reader(),
		Catalog:   db,
		Branches:  db,
		Access:    db,
		Users:     db,
		Publisher: pub,
		Logger:    zerolog.Nop(),
		Clock:     func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Second) },
		NewID:     func() string { return "id-" + strconv.FormatInt(ids.Add(1), 10) },
	}
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	return &fixture{
		db:        db,
		publisher: pub,
		idem:      idem,
		movements: inventory.NewMovementUseCase(deps, nil),
		stock:     inventory.NewStockUseCase(deps),
		transfers: inventory.NewTransferUseCase(deps, idem, time.Hour),
		queries:   inventory.NewQueryUseCase(deps),
		repl:      inventory.NewReplenishmentUseCase(deps),
		admin:     inventory.Actor{UserID: adminID, CompanyID: companyID},
		clerk:     inventory.Actor{UserID: clerkID, CompanyID: companyID},
		seller:    inventory.Actor{UserID: sellerID, CompanyID: companyID},
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "esperado %s, obtenido %s %v", want, got, msgAndArgs)
}

// seed carga stock inicial con costo.
func (f *fixture) seed(t *testing.T, branchID, productID, qty, cost string) {
	t.Helper()
	_, err := f.movements.RecordInitialStock(context.Background(), f.admin, dto.RecordMovementRequest{
		BranchID:    branchID,
		ProductID:   productID,
		Quantity:    d(qty),
		CostPerUnit: ptr(d(cost)),
	})
	require.NoError(t, err)
}

func (f *fixture) record(t *testing.T, branchID, productID string) *entity.InventoryRecord {
	t.Helper()
	rec, err := f.db.Reader().Inventory.Get(context.Background(), branchID, productID)
	require.NoError(t, err)
	require.NotNil(t, rec, "registro %s/%s", branchID, productID)
	return rec
}

// assertReconciled Σ movimientos == cantidad y 0 <= reservado <= cantidad.
func (f *fixture) assertReconciled(t *testing.T, branchID, productID string) {
	t.Helper()
	res, err := f.queries.Reconcile(context.Background(), f.admin, branchID, productID)
	require.NoError(t, err)
	assert.True(t, res.Consistent, "libro %s vs cantidad %s", res.LedgerSum, res.Quantity)
	rec := f.record(t, branchID, productID)
	assert.False(t, rec.ReservedQuantity.IsNegative())
	assert.True(t, rec.ReservedQuantity.LessThanOrEqual(rec.Quantity))
}
