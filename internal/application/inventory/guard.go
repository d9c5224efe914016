package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// authorize verifica identidad y rol una sola vez a la entrada de cada operación.
func (d Deps) authorize(ctx context.Context, actor Actor, companyID string, roles []string) error {
	if actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	if d.Users != nil {
		ok, err := d.Users.Exists(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("usuario %s: %w", actor.UserID, domain.ErrUnauthorized)
		}
	}
	return d.Access.Authorize(ctx, actor.UserID, companyID, roles)
}

// branch obtiene una sucursal o ErrNotFound.
func (d Deps) branch(ctx context.Context, branchID string) (*entity.Branch, error) {
	if branchID == "" {
		return nil, fmt.Errorf("branch_id requerido: %w", domain.ErrInvalidInput)
	}
	b, err := d.Branches.GetBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("sucursal %s: %w", branchID, domain.ErrNotFound)
	}
	return b, nil
}

// product obtiene un producto de la empresa o ErrNotFound / ErrInvalidInput si es de otra empresa.
func (d Deps) product(ctx context.Context, companyID, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("product_id requerido: %w", domain.ErrInvalidInput)
	}
	p, err := d.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if p.CompanyID != companyID {
		return nil, fmt.Errorf("producto %s pertenece a otra empresa: %w", productID, domain.ErrInvalidInput)
	}
	return p, nil
}

// resolveWrite valida sucursal activa, permisos y producto para una escritura de stock.
func (d Deps) resolveWrite(ctx context.Context, actor Actor, branchID, productID string, roles []string) (*entity.Branch, *entity.Product, error) {
	b, err := d.branch(ctx, branchID)
	if err != nil {
		return nil, nil, err
	}
	if err := d.authorize(ctx, actor, b.CompanyID, roles); err != nil {
		return nil, nil, err
	}
	if !b.IsActive {
		return nil, nil, fmt.Errorf("sucursal %s inactiva: %w", branchID, domain.ErrInvalidInput)
	}
	p, err := d.product(ctx, b.CompanyID, productID)
	if err != nil {
		return nil, nil, err
	}
	return b, p, nil
}

// publish notifica eventos ya confirmados; un fallo solo se registra.
func (d Deps) publish(ctx context.Context, events ...ports.StockEvent) {
	if len(events) == 0 {
		return
	}
	if err := d.Publisher.Publish(ctx, events...); err != nil {
		d.Logger.Error().Err(err).Int("events", len(events)).Msg("publicar eventos de stock")
	}
}

func (d Deps) movementEvent(companyID string, m *entity.StockMovement) ports.StockEvent {
	return ports.StockEvent{
		Type:        ports.EventMovementRecorded,
		CompanyID:   companyID,
		BranchID:    m.BranchID,
		ProductID:   m.ProductID,
		ReferenceID: m.ReferenceID,
		UserID:      m.UserID,
		Payload:     toMovementResponse(m),
		OccurredAt:  m.CreatedAt,
	}
}
