package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type movementRepo struct {
	db *Store
	tx *state
}

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	c := *m
	r.db.read(r.tx, func(st *state) {
		st.movements = append(st.movements, &c)
	})
	return nil
}

func (r *movementRepo) companyOf(branchID string) string {
	if b := r.db.branch(branchID); b != nil {
		return b.CompanyID
	}
	return ""
}

func (r *movementRepo) matching(f repository.MovementFilter) []*entity.StockMovement {
	var out []*entity.StockMovement
	r.db.read(r.tx, func(st *state) {
		for _, m := range st.movements {
			if f.CompanyID != "" && r.companyOf(m.BranchID) != f.CompanyID {
				continue
			}
			if f.BranchID != "" && m.BranchID != f.BranchID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.UserID != "" && m.UserID != f.UserID {
				continue
			}
			if f.ReferenceID != "" && m.ReferenceID != f.ReferenceID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			c := *m
			out = append(out, &c)
		}
	})
	return out
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	list := r.matching(f)
	if !f.SortAsc {
		// con igual created_at, el último insertado primero
		for a, b := 0, len(list)-1; a < b; a, b = a+1, b-1 {
			list[a], list[b] = list[b], list[a]
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if f.SortAsc {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	lo, hi := paginate(len(list), f.Limit, f.Offset)
	return list[lo:hi], len(list), nil
}

func (r *movementRepo) Stats(_ context.Context, companyID string, since time.Time, topN int) (*repository.MovementStats, error) {
	list := r.matching(repository.MovementFilter{CompanyID: companyID, From: &since})
	out := &repository.MovementStats{TotalMovements: len(list)}

	byType := map[entity.MovementType]*repository.MovementTypeCount{}
	byDay := map[time.Time]int{}
	byProduct := map[string]int{}
	for _, m := range list {
		tc, ok := byType[m.Type]
		if !ok {
			tc = &repository.MovementTypeCount{Type: m.Type, Quantity: decimal.Zero}
			byType[m.Type] = tc
		}
		tc.Count++
		tc.Quantity = tc.Quantity.Add(m.Quantity)
		d := m.CreatedAt.UTC()
		byDay[time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)]++
		byProduct[m.ProductID]++
	}
	for _, t := range entity.MovementTypes {
		if tc, ok := byType[t]; ok {
			out.ByType = append(out.ByType, *tc)
		}
	}
	for day, n := range byDay {
		out.ByDay = append(out.ByDay, repository.MovementDayCount{Day: day, Count: n})
	}
	sort.Slice(out.ByDay, func(i, j int) bool { return out.ByDay[i].Day.Before(out.ByDay[j].Day) })
	if topN > 0 {
		for id, n := range byProduct {
			out.TopProductsByCount = append(out.TopProductsByCount, repository.ProductMovementCount{ProductID: id, Count: n})
		}
		sort.Slice(out.TopProductsByCount, func(i, j int) bool {
			a, b := out.TopProductsByCount[i], out.TopProductsByCount[j]
			if a.Count != b.Count {
				return a.Count > b.Count
			}
			return a.ProductID < b.ProductID
		})
		if len(out.TopProductsByCount) > topN {
			out.TopProductsByCount = out.TopProductsByCount[:topN]
		}
	}
	return out, nil
}

func (r *movementRepo) SumQuantity(_ context.Context, branchID, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	r.db.read(r.tx, func(st *state) {
		for _, m := range st.movements {
			if m.BranchID == branchID && m.ProductID == productID {
				sum = sum.Add(m.Quantity)
			}
		}
	})
	return sum, nil
}

var _ repository.StockMovementRepository = (*movementRepo)(nil)
