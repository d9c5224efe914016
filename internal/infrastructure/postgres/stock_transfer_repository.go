package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `t.id, t.company_id, t.from_branch_id, t.to_branch_id, t.user_id, t.status,
	t.transfer_date, t.completed_date, t.completed_by, t.notes, t.created_at, t.updated_at`

// StockTransferRepo traslados y sus ítems sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create inserta el traslado y sus ítems. Debe ejecutarse dentro de una tx.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, company_id, from_branch_id, to_branch_id, user_id, status,
			transfer_date, completed_date, completed_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.CompanyID, t.FromBranchID, t.ToBranchID, t.UserID, string(t.Status),
		t.TransferDate, t.CompletedDate, nullIfEmpty(t.CompletedBy), t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("traslado %s ya existe: %w", t.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO stock_transfer_items (id, transfer_id, product_id, quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5)`
	for i := range t.Items {
		it := &t.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.TransferID = t.ID
		if _, err := r.q.Exec(ctx, itemQuery, it.ID, it.TransferID, it.ProductID, it.Quantity, it.UnitCost); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("producto %s repetido en el traslado: %w", it.ProductID, domain.ErrInvalidInput)
			}
			return fmt.Errorf("create transfer item: %w", err)
		}
	}
	return nil
}

// GetForUpdate bloquea la fila del traslado hasta el fin de la tx.
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, " FOR UPDATE OF t")
}

// GetByID traslado con ítems; nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, id, "")
}

func (r *StockTransferRepo) get(ctx context.Context, id, lock string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers t WHERE t.id = $1` + lock
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	items, err := r.items(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return t, nil
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var status string
	var completedBy *string
	if err := row.Scan(&t.ID, &t.CompanyID, &t.FromBranchID, &t.ToBranchID, &t.UserID, &status,
		&t.TransferDate, &t.CompletedDate, &completedBy, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.CompletedBy = deref(completedBy)
	return &t, nil
}

// items ítems de varios traslados agrupados por transfer_id.
func (r *StockTransferRepo) items(ctx context.Context, ids []string) (map[string][]entity.StockTransferItem, error) {
	out := make(map[string][]entity.StockTransferItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, quantity, unit_cost
		FROM stock_transfer_items WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, product_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list transfer items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.StockTransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ProductID, &it.Quantity, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		out[it.TransferID] = append(out[it.TransferID], it)
	}
	return out, rows.Err()
}

// UpdateStatus persiste estado, cierre, notas y updated_at.
func (r *StockTransferRepo) UpdateStatus(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, completed_date = $3, completed_by = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, t.ID, string(t.Status), t.CompletedDate, nullIfEmpty(t.CompletedBy), t.Notes, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

func transferWhere(f repository.TransferFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.CompanyID != "" {
		w.add("t.company_id = $%d", f.CompanyID)
	}
	if f.BranchID != "" {
		w.add("(t.from_branch_id = $%[1]d OR t.to_branch_id = $%[1]d)", f.BranchID)
	}
	if f.Status != "" {
		w.add("t.status = $%d", string(f.Status))
	}
	if f.From != nil {
		w.add("t.transfer_date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("t.transfer_date <= $%d", *f.To)
	}
	return w
}

// List traslados más recientes primero, con sus ítems.
func (r *StockTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	w := transferWhere(f)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers t`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transfers: %w", err)
	}

	query := `SELECT ` + transferColumns + ` FROM stock_transfers t` + w.String() +
		` ORDER BY t.created_at DESC, t.id` + w.pageClause(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transfers: %w", err)
	}
	var list []*entity.StockTransfer
	var ids []string
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
		ids = append(ids, t.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		t.Items = items[t.ID]
	}
	return list, total, nil
}

// Stats conteo por estado, unidades y horas promedio de los completados desde since.
func (r *StockTransferRepo) Stats(ctx context.Context, companyID string, since time.Time) (*repository.TransferStats, error) {
	out := &repository.TransferStats{
		ByStatus:           map[entity.TransferStatus]int{},
		UnitsMoved:         decimal.Zero,
		AvgCompletionHours: decimal.Zero,
	}
	rows, err := r.q.Query(ctx, `
		SELECT status, COUNT(*) FROM stock_transfers
		WHERE company_id = $1 AND created_at >= $2
		GROUP BY status`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("transfer stats: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan transfer stats: %w", err)
		}
		out.ByStatus[entity.TransferStatus(status)] = n
		out.Total += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avgHours *decimal.Decimal
	err = r.q.QueryRow(ctx, `
		SELECT COALESCE((SELECT SUM(i.quantity) FROM stock_transfer_items i
		                 JOIN stock_transfers t ON t.id = i.transfer_id
		                 WHERE t.company_id = $1 AND t.created_at >= $2
		                   AND t.status = 'completed' AND t.completed_date IS NOT NULL), 0),
		       (SELECT AVG(EXTRACT(EPOCH FROM (completed_date - created_at)) / 3600)::numeric
		        FROM stock_transfers
		        WHERE company_id = $1 AND created_at >= $2
		          AND status = 'completed' AND completed_date IS NOT NULL)`,
		companyID, since,
	).Scan(&out.UnitsMoved, &avgHours)
	if err != nil {
		return nil, fmt.Errorf("transfer completion stats: %w", err)
	}
	if avgHours != nil {
		out.AvgCompletionHours = avgHours.Round(2)
	}
	return out, nil
}
