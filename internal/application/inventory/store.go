package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Store primitivas atómicas de lectura-modificación-escritura sobre InventoryRecord.
// Debe construirse con un InventoryRepository atado a la transacción en curso:
// cada primitiva bloquea la fila (SELECT ... FOR UPDATE) antes de modificarla.
type Store struct {
	repo    repository.InventoryRepository
	catalog ports.ProductCatalog
	clock   func() time.Time
	costs   map[string]decimal.Decimal
}

// NewStore construye el store para una transacción.
func NewStore(repo repository.InventoryRepository, catalog ports.ProductCatalog, clock func() time.Time) *Store {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Store{repo: repo, catalog: catalog, clock: clock, costs: map[string]decimal.Decimal{}}
}

// seedCost costo de catálogo con el que nace un registro nuevo.
func (s *Store) seedCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	if c, ok := s.costs[productID]; ok {
		return c, nil
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	c := domaininv.RoundCost(p.Cost)
	s.costs[productID] = c
	return c, nil
}

// GetOrCreate devuelve el registro bloqueado, creándolo con cantidad 0 si no existe.
func (s *Store) GetOrCreate(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error) {
	cost, err := s.seedCost(ctx, productID)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetOrCreateForUpdate(ctx, branchID, productID, cost)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyDelta quantity := max(0, quantity+delta); recalcula el costo promedio en entradas con costo.
// Una salida no puede consumir unidades reservadas. Devuelve la cantidad previa y el registro nuevo.
func (s *Store) ApplyDelta(ctx context.Context, branchID, productID string, delta decimal.Decimal, costPerUnit *decimal.Decimal) (decimal.Decimal, *entity.InventoryRecord, error) {
	rec, err := s.GetOrCreate(ctx, branchID, productID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	previous := rec.Quantity
	delta = domaininv.RoundQty(delta)

	if delta.IsNegative() {
		out := delta.Abs()
		if out.GreaterThan(rec.Quantity) {
			return decimal.Zero, nil, fmt.Errorf("salida %s con existencia %s: %w", out, rec.Quantity, domain.ErrInsufficientStock)
		}
		if out.GreaterThan(rec.AvailableQuantity()) {
			return decimal.Zero, nil, fmt.Errorf("salida %s con disponible %s (reservado %s): %w",
				out, rec.AvailableQuantity(), rec.ReservedQuantity, domain.ErrInsufficientStock)
		}
	}
	if delta.IsPositive() && costPerUnit != nil {
		rec.AverageCost = domaininv.CostCalculator(rec.Quantity, rec.AverageCost, delta, *costPerUnit)
	}
	next := decimal.Max(decimal.Zero, rec.Quantity.Add(delta))
	if !domaininv.QtyInRange(next) {
		return decimal.Zero, nil, fmt.Errorf("existencia resultante %s supera el máximo %s: %w", next, domaininv.MaxQuantity, domain.ErrInvalidInput)
	}
	rec.Quantity = next
	rec.LastUpdated = s.clock()
	if err := s.repo.Save(ctx, rec); err != nil {
		return decimal.Zero, nil, err
	}
	return previous, rec, nil
}

// Reserve exige disponible >= qty e incrementa el reservado.
func (s *Store) Reserve(ctx context.Context, branchID, productID string, qty decimal.Decimal) (*entity.InventoryRecord, error) {
	if err := validatePositiveQty(qty); err != nil {
		return nil, err
	}
	rec, err := s.GetOrCreate(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if rec.AvailableQuantity().LessThan(qty) {
		return nil, fmt.Errorf("reserva %s con disponible %s: %w", qty, rec.AvailableQuantity(), domain.ErrInsufficientStock)
	}
	rec.ReservedQuantity = rec.ReservedQuantity.Add(qty)
	rec.LastUpdated = s.clock()
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Release decrementa el reservado sin bajar de cero.
func (s *Store) Release(ctx context.Context, branchID, productID string, qty decimal.Decimal) (*entity.InventoryRecord, error) {
	if err := validatePositiveQty(qty); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetForUpdate(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inventario %s/%s: %w", branchID, productID, domain.ErrNotFound)
	}
	rec.ReservedQuantity = decimal.Max(decimal.Zero, rec.ReservedQuantity.Sub(qty))
	rec.LastUpdated = s.clock()
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func validatePositiveQty(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return fmt.Errorf("cantidad %s debe ser positiva: %w", qty, domain.ErrInvalidInput)
	}
	return domaininv.ValidateQuantity(qty)
}
