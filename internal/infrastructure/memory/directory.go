package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AddProduct registra o reemplaza un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.products[p.ID] = &p
}

// AddBranch registra o reemplaza una sucursal.
func (s *Store) AddBranch(b entity.Branch) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.branches[b.ID] = &b
}

// AddUser registra o reemplaza un usuario.
func (s *Store) AddUser(u User) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.users[u.ID] = u
}

func (s *Store) GetProduct(_ context.Context, productID string) (*entity.Product, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (s *Store) GetBranch(_ context.Context, branchID string) (*entity.Branch, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	b, ok := s.branches[branchID]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (s *Store) Exists(_ context.Context, userID string) (bool, error) {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

// Authorize exige usuario activo de la empresa con alguno de los roles.
func (s *Store) Authorize(_ context.Context, userID, companyID string, requiredRoles []string) error {
	s.catalogMu.RLock()
	u, ok := s.users[userID]
	s.catalogMu.RUnlock()
	if !ok || !u.Active {
		return fmt.Errorf("usuario %s inactivo o inexistente: %w", userID, domain.ErrForbidden)
	}
	if u.CompanyID != companyID {
		return fmt.Errorf("usuario %s sin acceso a la empresa %s: %w", userID, companyID, domain.ErrForbidden)
	}
	for _, r := range requiredRoles {
		if r == u.Role {
			return nil
		}
	}
	return fmt.Errorf("rol %s no permitido: %w", u.Role, domain.ErrForbidden)
}

func (s *Store) product(id string) *entity.Product {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.products[id]
}

func (s *Store) branch(id string) *entity.Branch {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.branches[id]
}

var (
	_ ports.ProductCatalog  = (*Store)(nil)
	_ ports.BranchDirectory = (*Store)(nil)
	_ ports.UserDirectory   = (*Store)(nil)
	_ ports.AccessControl   = (*Store)(nil)
)
