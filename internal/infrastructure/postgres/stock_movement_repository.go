package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `m.id, m.branch_id, m.product_id, m.user_id, m.quantity, m.type, m.reference_id, m.notes,
	m.cost_per_unit, m.total_cost, m.previous_quantity, m.new_quantity, m.created_at`

// StockMovementRepo libro de movimientos sobre PostgreSQL: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, branch_id, product_id, user_id, quantity, type, reference_id, notes,
			cost_per_unit, total_cost, previous_quantity, new_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.BranchID, m.ProductID, m.UserID, m.Quantity, string(m.Type), nullIfEmpty(m.ReferenceID), m.Notes,
		m.CostPerUnit, m.TotalCost, m.PreviousQuantity, m.NewQuantity, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

func movementWhere(f repository.MovementFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.CompanyID != "" {
		w.add("b.company_id = $%d", f.CompanyID)
	}
	if f.BranchID != "" {
		w.add("m.branch_id = $%d", f.BranchID)
	}
	if f.ProductID != "" {
		w.add("m.product_id = $%d", f.ProductID)
	}
	if f.UserID != "" {
		w.add("m.user_id = $%d", f.UserID)
	}
	if f.ReferenceID != "" {
		w.add("m.reference_id = $%d", f.ReferenceID)
	}
	if f.Type != "" {
		w.add("m.type = $%d", string(f.Type))
	}
	if f.From != nil {
		w.add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("m.created_at <= $%d", *f.To)
	}
	return w
}

const movementFrom = ` FROM stock_movements m JOIN branches b ON b.id = m.branch_id`

// List movimientos filtrados y paginados por created_at.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	w := movementWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+movementFrom+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	order := " ORDER BY m.created_at DESC, m.seq DESC"
	if f.SortAsc {
		order = " ORDER BY m.created_at ASC, m.seq ASC"
	}
	query := `SELECT ` + movementColumns + movementFrom + w.String() + order + w.pageClause(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		var ref *string
		if err := rows.Scan(&m.ID, &m.BranchID, &m.ProductID, &m.UserID, &m.Quantity, &typ, &ref, &m.Notes,
			&m.CostPerUnit, &m.TotalCost, &m.PreviousQuantity, &m.NewQuantity, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		m.ReferenceID = deref(ref)
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Stats totales por tipo, por día (UTC) y productos con más movimientos desde since.
func (r *StockMovementRepo) Stats(ctx context.Context, companyID string, since time.Time, topN int) (*repository.MovementStats, error) {
	w := movementWhere(repository.MovementFilter{CompanyID: companyID, From: &since})
	out := &repository.MovementStats{}

	rows, err := r.q.Query(ctx, `SELECT m.type, COUNT(*), COALESCE(SUM(m.quantity), 0)`+movementFrom+w.String()+` GROUP BY m.type`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("movement stats by type: %w", err)
	}
	byType := map[entity.MovementType]repository.MovementTypeCount{}
	for rows.Next() {
		var typ string
		var c repository.MovementTypeCount
		if err := rows.Scan(&typ, &c.Count, &c.Quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement stats: %w", err)
		}
		c.Type = entity.MovementType(typ)
		byType[c.Type] = c
		out.TotalMovements += c.Count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range entity.MovementTypes {
		if c, ok := byType[t]; ok {
			out.ByType = append(out.ByType, c)
		}
	}

	dayQuery := `SELECT (m.created_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)` + movementFrom + w.String() + ` GROUP BY day ORDER BY day`
	rows, err = r.q.Query(ctx, dayQuery, w.args...)
	if err != nil {
		return nil, fmt.Errorf("movement stats by day: %w", err)
	}
	for rows.Next() {
		var d repository.MovementDayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement day: %w", err)
		}
		d.Day = time.Date(d.Day.Year(), d.Day.Month(), d.Day.Day(), 0, 0, 0, 0, time.UTC)
		out.ByDay = append(out.ByDay, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if topN <= 0 {
		return out, nil
	}
	topQuery := `SELECT m.product_id, COUNT(*) AS n` + movementFrom + w.String() +
		` GROUP BY m.product_id ORDER BY n DESC, m.product_id LIMIT ` + w.next(topN)
	rows, err = r.q.Query(ctx, topQuery, w.args...)
	if err != nil {
		return nil, fmt.Errorf("movement stats top products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p repository.ProductMovementCount
		if err := rows.Scan(&p.ProductID, &p.Count); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out.TopProductsByCount = append(out.TopProductsByCount, p)
	}
	return out, rows.Err()
}

// SumQuantity Σ deltas de un (sucursal, producto).
func (r *StockMovementRepo) SumQuantity(ctx context.Context, branchID, productID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE branch_id = $1 AND product_id = $2`,
		branchID, productID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
