package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RecordInput datos de un movimiento a registrar.
type RecordInput struct {
	BranchID    string
	ProductID   string
	UserID      string
	Delta       decimal.Decimal
	Type        entity.MovementType
	ReferenceID string
	Notes       string
	CostPerUnit *decimal.Decimal
}

// Ledger libro de movimientos append-only. Igual que Store, se construye por transacción:
// la actualización del agregado y la inserción del movimiento confirman o fallan juntas.
type Ledger struct {
	store     *Store
	movements repository.StockMovementRepository
	clock     func() time.Time
	newID     func() string
}

// NewLedger construye el libro sobre el store y el repositorio de la misma transacción.
func NewLedger(store *Store, movements repository.StockMovementRepository, clock func() time.Time, newID func() string) *Ledger {
	return &Ledger{store: store, movements: movements, clock: clock, newID: newID}
}

// Record toma la cantidad previa, aplica el delta en el agregado y persiste el movimiento.
func (l *Ledger) Record(ctx context.Context, in RecordInput) (*entity.StockMovement, error) {
	if err := domaininv.ValidateMovement(in.Type, in.Delta); err != nil {
		return nil, err
	}
	var cost *decimal.Decimal
	if in.CostPerUnit != nil {
		if err := domaininv.ValidateCost(*in.CostPerUnit); err != nil {
			return nil, err
		}
		c := domaininv.RoundCost(*in.CostPerUnit)
		cost = &c
	}

	previous, rec, err := l.store.ApplyDelta(ctx, in.BranchID, in.ProductID, in.Delta, cost)
	if err != nil {
		return nil, err
	}
	unitCost := rec.AverageCost
	if cost != nil {
		unitCost = *cost
	}
	delta := domaininv.RoundQty(in.Delta)
	total := domaininv.RoundCost(delta.Mul(unitCost))
	if !domaininv.TotalCostInRange(total) {
		return nil, fmt.Errorf("costo total %s supera el máximo %s: %w", total, domaininv.MaxTotalCost, domain.ErrInvalidInput)
	}
	mov := &entity.StockMovement{
		ID:               l.newID(),
		BranchID:         in.BranchID,
		ProductID:        in.ProductID,
		UserID:           in.UserID,
		Quantity:         delta,
		Type:             in.Type,
		ReferenceID:      in.ReferenceID,
		Notes:            in.Notes,
		CostPerUnit:      unitCost,
		TotalCost:        total,
		PreviousQuantity: previous,
		NewQuantity:      rec.Quantity,
		CreatedAt:        l.clock(),
	}
	if err := l.movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// scope store y libro atados a los repositorios de una transacción.
type scope struct {
	store  *Store
	ledger *Ledger
	repos  Repos
}

func (d Deps) bind(repos Repos) *scope {
	store := NewStore(repos.Inventory, d.Catalog, d.Clock)
	return &scope{
		store:  store,
		ledger: NewLedger(store, repos.Movements, d.Clock, d.NewID),
		repos:  repos,
	}
}
