// Package memory implementa todos los puertos de persistencia y colaboradores en proceso.
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado que
// solo se publica si fn termina sin error, lo que equivale a aislamiento serializable.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type recordKey struct {
	branchID  string
	productID string
}

// state datos transaccionales: inventario, libro y traslados.
type state struct {
	records   map[recordKey]*entity.InventoryRecord
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
}

func newState() *state {
	return &state{
		records:   map[recordKey]*entity.InventoryRecord{},
		transfers: map[string]*entity.StockTransfer{},
	}
}

// clone copia profunda de registros y traslados; los movimientos son inmutables.
func (s *state) clone() *state {
	c := &state{
		records:   make(map[recordKey]*entity.InventoryRecord, len(s.records)),
		movements: append(make([]*entity.StockMovement, 0, len(s.movements)+4), s.movements...),
		transfers: make(map[string]*entity.StockTransfer, len(s.transfers)),
	}
	for k, r := range s.records {
		c.records[k] = r.Clone()
	}
	for id, t := range s.transfers {
		c.transfers[id] = t.Clone()
	}
	return c
}

// User usuario del directorio en memoria.
type User struct {
	ID        string
	CompanyID string
	Role      string
	Active    bool
}

// Store base de datos en memoria.
type Store struct {
	mu sync.RWMutex
	st *state

	catalogMu sync.RWMutex
	products  map[string]*entity.Product
	branches  map[string]*entity.Branch
	users     map[string]User
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		st:       newState(),
		products: map[string]*entity.Product{},
		branches: map[string]*entity.Branch{},
		users:    map[string]User{},
	}
}

// Run ejecuta fn en exclusión mutua sobre una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, s.repos(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Reader repositorios de solo lectura sobre el estado confirmado.
func (s *Store) Reader() inventory.Repos {
	return s.repos(nil)
}

func (s *Store) repos(tx *state) inventory.Repos {
	return inventory.Repos{
		Inventory: &inventoryRepo{db: s, tx: tx},
		Movements: &movementRepo{db: s, tx: tx},
		Transfers: &transferRepo{db: s, tx: tx},
	}
}

// read entrega el estado de la tx o, fuera de ella, el confirmado bajo lectura compartida.
func (s *Store) read(tx *state, fn func(st *state)) {
	if tx != nil {
		fn(tx)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.st)
}

func paginate(n, limit, offset int) (int, int) {
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

var _ inventory.TxRunner = (*Store)(nil)
