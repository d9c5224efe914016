package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type transferRepo struct {
	db *Store
	tx *state
}

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	var err error
	r.db.read(r.tx, func(st *state) {
		if _, ok := st.transfers[t.ID]; ok {
			err = fmt.Errorf("traslado %s ya existe: %w", t.ID, domain.ErrConflict)
			return
		}
		st.transfers[t.ID] = t.Clone()
	})
	return err
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	r.db.read(r.tx, func(st *state) {
		if t, ok := st.transfers[id]; ok {
			out = t.Clone()
		}
	})
	return out, nil
}

func (r *transferRepo) UpdateStatus(_ context.Context, t *entity.StockTransfer) error {
	var err error
	r.db.read(r.tx, func(st *state) {
		cur, ok := st.transfers[t.ID]
		if !ok {
			err = fmt.Errorf("traslado %s: %w", t.ID, domain.ErrNotFound)
			return
		}
		next := cur.Clone()
		next.Status = t.Status
		next.CompletedDate = t.CompletedDate
		next.CompletedBy = t.CompletedBy
		next.Notes = t.Notes
		next.UpdatedAt = t.UpdatedAt
		st.transfers[t.ID] = next
	})
	return err
}

func (r *transferRepo) matching(f repository.TransferFilter) []*entity.StockTransfer {
	var out []*entity.StockTransfer
	r.db.read(r.tx, func(st *state) {
		for _, t := range st.transfers {
			if f.CompanyID != "" && t.CompanyID != f.CompanyID {
				continue
			}
			if f.BranchID != "" && t.FromBranchID != f.BranchID && t.ToBranchID != f.BranchID {
				continue
			}
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			if f.From != nil && t.TransferDate.Before(*f.From) {
				continue
			}
			if f.To != nil && t.TransferDate.After(*f.To) {
				continue
			}
			out = append(out, t.Clone())
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	list := r.matching(f)
	lo, hi := paginate(len(list), f.Limit, f.Offset)
	return list[lo:hi], len(list), nil
}

func (r *transferRepo) Stats(_ context.Context, companyID string, since time.Time) (*repository.TransferStats, error) {
	out := &repository.TransferStats{
		ByStatus:           map[entity.TransferStatus]int{},
		UnitsMoved:         decimal.Zero,
		AvgCompletionHours: decimal.Zero,
	}
	var hours float64
	completed := 0
	for _, t := range r.matching(repository.TransferFilter{CompanyID: companyID}) {
		if t.CreatedAt.Before(since) {
			continue
		}
		out.Total++
		out.ByStatus[t.Status]++
		if t.Status == entity.TransferCompleted && t.CompletedDate != nil {
			out.UnitsMoved = out.UnitsMoved.Add(t.TotalQuantity())
			hours += t.CompletedDate.Sub(t.CreatedAt).Hours()
			completed++
		}
	}
	if completed > 0 {
		out.AvgCompletionHours = decimal.NewFromFloat(hours / float64(completed)).Round(2)
	}
	return out, nil
}

var _ repository.StockTransferRepository = (*transferRepo)(nil)
