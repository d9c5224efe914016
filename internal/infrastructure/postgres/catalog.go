package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var (
	_ ports.ProductCatalog  = (*Directory)(nil)
	_ ports.BranchDirectory = (*Directory)(nil)
	_ ports.UserDirectory   = (*Directory)(nil)
	_ ports.AccessControl   = (*Directory)(nil)
)

// Directory lee catálogo, sucursales y usuarios replicados desde los sistemas externos
// (tablas products, branches, users). Solo lectura.
type Directory struct {
	q Querier
}

// NewDirectory construye el adaptador sobre el pool.
func NewDirectory(q Querier) *Directory {
	return &Directory{q: q}
}

// GetProduct umbrales y costo de catálogo de un producto.
func (d *Directory) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	var p entity.Product
	err := d.q.QueryRow(ctx, `
		SELECT id, company_id, sku, name, min_stock_level, reorder_point, cost
		FROM products WHERE id = $1`, productID,
	).Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.MinStockLevel, &p.ReorderPoint, &p.Cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetBranch sucursal por ID.
func (d *Directory) GetBranch(ctx context.Context, branchID string) (*entity.Branch, error) {
	var b entity.Branch
	err := d.q.QueryRow(ctx, `SELECT id, company_id, name, is_active FROM branches WHERE id = $1`, branchID).
		Scan(&b.ID, &b.CompanyID, &b.Name, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// Exists informa si el usuario está registrado.
func (d *Directory) Exists(ctx context.Context, userID string) (bool, error) {
	var ok bool
	if err := d.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return ok, nil
}

// Authorize exige usuario activo de la empresa con alguno de los roles.
func (d *Directory) Authorize(ctx context.Context, userID, companyID string, requiredRoles []string) error {
	var userCompany, role string
	var active bool
	err := d.q.QueryRow(ctx, `SELECT company_id, role, is_active FROM users WHERE id = $1`, userID).
		Scan(&userCompany, &role, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("usuario %s inexistente: %w", userID, domain.ErrForbidden)
		}
		return fmt.Errorf("authorize: %w", err)
	}
	if !active {
		return fmt.Errorf("usuario %s inactivo: %w", userID, domain.ErrForbidden)
	}
	if userCompany != companyID {
		return fmt.Errorf("usuario %s sin acceso a la empresa %s: %w", userID, companyID, domain.ErrForbidden)
	}
	if !slices.Contains(requiredRoles, role) {
		return fmt.Errorf("rol %s no permitido: %w", role, domain.ErrForbidden)
	}
	return nil
}
