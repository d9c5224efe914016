// Package ports define los colaboradores externos que consume el núcleo de inventario
// (catálogo, sucursales, identidad, permisos) y los puertos de infraestructura auxiliares.
package ports

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductCatalog lectura del catálogo de productos. Devuelve nil, nil si no existe.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}

// BranchDirectory lectura de sucursales. Devuelve nil, nil si no existe.
type BranchDirectory interface {
	GetBranch(ctx context.Context, branchID string) (*entity.Branch, error)
}

// AccessControl decide si el usuario tiene alguno de los roles en la empresa.
// Devuelve domain.ErrForbidden (envuelto con el motivo) cuando niega el acceso.
type AccessControl interface {
	Authorize(ctx context.Context, userID, companyID string, requiredRoles []string) error
}

// UserDirectory solo para atribución en auditoría.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}
