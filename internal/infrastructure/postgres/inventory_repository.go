package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// statusExpr estado de stock sobre el disponible; mismo criterio que domain/inventory.StockStatus.
const statusExpr = `CASE
	WHEN i.quantity - i.reserved_quantity <= 0 THEN 'out_of_stock'
	WHEN p.min_stock_level > 0 AND i.quantity - i.reserved_quantity <= p.min_stock_level THEN 'low_stock'
	WHEN p.reorder_point > 0 AND i.quantity - i.reserved_quantity <= p.reorder_point THEN 'needs_restock'
	ELSE 'in_stock' END`

const recordColumns = `branch_id, product_id, quantity, reserved_quantity, average_cost, last_updated`

const viewSelect = `
	SELECT i.branch_id, i.product_id, i.quantity, i.reserved_quantity, i.average_cost, i.last_updated,
	       b.company_id, b.name, p.sku, p.name, p.min_stock_level, p.reorder_point
	FROM inventory i
	JOIN branches b ON b.id = i.branch_id
	JOIN products p ON p.id = i.product_id`

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// GetOrCreateForUpdate inserta la fila en cero si falta y la devuelve bloqueada.
// ON CONFLICT DO NOTHING cubre la carrera de dos creadores: el perdedor espera el lock.
func (r *InventoryRepo) GetOrCreateForUpdate(ctx context.Context, branchID, productID string, seedCost decimal.Decimal) (*entity.InventoryRecord, error) {
	query := `
		INSERT INTO inventory (` + recordColumns + `)
		VALUES ($1, $2, 0, 0, $3, now())
		ON CONFLICT (branch_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, branchID, productID, seedCost); err != nil {
		return nil, fmt.Errorf("create inventory: %w", err)
	}
	rec, err := r.GetForUpdate(ctx, branchID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inventario %s/%s no visible tras crear: %w", branchID, productID, domain.ErrNotFound)
	}
	return rec, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, " FOR UPDATE", branchID, productID)
}

// Get lectura sin bloqueo.
func (r *InventoryRepo) Get(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error) {
	return r.get(ctx, "", branchID, productID)
}

func (r *InventoryRepo) get(ctx context.Context, lock, branchID, productID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory WHERE branch_id = $1 AND product_id = $2` + lock
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, branchID, productID).Scan(
		&rec.BranchID, &rec.ProductID, &rec.Quantity, &rec.ReservedQuantity, &rec.AverageCost, &rec.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &rec, nil
}

// Save persiste el estado de un registro ya bloqueado.
func (r *InventoryRepo) Save(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		UPDATE inventory
		SET quantity = $3, reserved_quantity = $4, average_cost = $5, last_updated = $6
		WHERE branch_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(ctx, query,
		rec.BranchID, rec.ProductID, rec.Quantity, rec.ReservedQuantity, rec.AverageCost, rec.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("inventario %s/%s: %w", rec.BranchID, rec.ProductID, domain.ErrNotFound)
	}
	return nil
}

func viewWhere(companyID, branchID string) *whereBuilder {
	w := &whereBuilder{}
	w.add("b.company_id = $%d", companyID)
	if branchID != "" {
		w.add("i.branch_id = $%d", branchID)
	}
	return w
}

// List vistas filtradas y paginadas, ordenadas por sucursal y SKU.
func (r *InventoryRepo) List(ctx context.Context, f repository.InventoryFilter) ([]*entity.InventoryView, int, error) {
	w := viewWhere(f.CompanyID, f.BranchID)
	if f.ProductID != "" {
		w.add("i.product_id = $%d", f.ProductID)
	}
	if f.Search != "" {
		w.add("(p.sku ILIKE '%%' || $%[1]d || '%%' OR p.name ILIKE '%%' || $%[1]d || '%%')", f.Search)
	}
	if f.Status != "" {
		w.add("("+statusExpr+") = $%d", f.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM inventory i JOIN branches b ON b.id = i.branch_id JOIN products p ON p.id = i.product_id` + w.String()
	if err := r.q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory: %w", err)
	}

	query := viewSelect + w.String() + ` ORDER BY b.name, b.id, p.sku` + w.pageClause(f.Limit, f.Offset)
	list, err := r.queryViews(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListBelowReorderPoint vistas cuyo estado no es in_stock.
func (r *InventoryRepo) ListBelowReorderPoint(ctx context.Context, companyID, branchID string) ([]*entity.InventoryView, error) {
	w := viewWhere(companyID, branchID)
	w.addRaw("(" + statusExpr + ") <> 'in_stock'")
	return r.queryViews(ctx, viewSelect+w.String()+` ORDER BY b.name, b.id, p.sku`, w.args...)
}

func (r *InventoryRepo) queryViews(ctx context.Context, query string, args ...any) ([]*entity.InventoryView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryView
	for rows.Next() {
		var v entity.InventoryView
		if err := rows.Scan(
			&v.BranchID, &v.ProductID, &v.Quantity, &v.ReservedQuantity, &v.AverageCost, &v.LastUpdated,
			&v.CompanyID, &v.BranchName, &v.SKU, &v.ProductName, &v.MinStockLevel, &v.ReorderPoint,
		); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// SummarizeByBranch totales y conteo por estado, una fila por sucursal.
func (r *InventoryRepo) SummarizeByBranch(ctx context.Context, companyID, branchID string) ([]repository.BranchSummary, error) {
	w := viewWhere(companyID, branchID)
	query := `
		SELECT b.id, b.name, COUNT(*),
		       COALESCE(SUM(i.quantity), 0), COALESCE(SUM(i.reserved_quantity), 0),
		       COALESCE(SUM(i.quantity * i.average_cost), 0),
		       COUNT(*) FILTER (WHERE s.status = 'in_stock'),
		       COUNT(*) FILTER (WHERE s.status = 'low_stock'),
		       COUNT(*) FILTER (WHERE s.status = 'out_of_stock'),
		       COUNT(*) FILTER (WHERE s.status = 'needs_restock')
		FROM inventory i
		JOIN branches b ON b.id = i.branch_id
		JOIN products p ON p.id = i.product_id
		CROSS JOIN LATERAL (SELECT ` + statusExpr + ` AS status) s` + w.String() + `
		GROUP BY b.id, b.name
		ORDER BY b.name, b.id`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("summarize inventory: %w", err)
	}
	defer rows.Close()
	var out []repository.BranchSummary
	for rows.Next() {
		var s repository.BranchSummary
		if err := rows.Scan(&s.BranchID, &s.BranchName, &s.Records,
			&s.TotalQuantity, &s.TotalReserved, &s.StockValue,
			&s.InStock, &s.LowStock, &s.OutOfStock, &s.NeedsRestock,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
