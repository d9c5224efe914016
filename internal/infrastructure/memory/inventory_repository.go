package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type inventoryRepo struct {
	db *Store
	tx *state
}

func (r *inventoryRepo) GetOrCreateForUpdate(_ context.Context, branchID, productID string, seedCost decimal.Decimal) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.db.read(r.tx, func(st *state) {
		k := recordKey{branchID, productID}
		rec, ok := st.records[k]
		if !ok {
			rec = &entity.InventoryRecord{
				BranchID:         branchID,
				ProductID:        productID,
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
				AverageCost:      seedCost,
			}
			st.records[k] = rec
		}
		out = rec.Clone()
	})
	return out, nil
}

func (r *inventoryRepo) GetForUpdate(ctx context.Context, branchID, productID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, branchID, productID)
}

func (r *inventoryRepo) Get(_ context.Context, branchID, productID string) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.db.read(r.tx, func(st *state) {
		if rec, ok := st.records[recordKey{branchID, productID}]; ok {
			out = rec.Clone()
		}
	})
	return out, nil
}

func (r *inventoryRepo) Save(_ context.Context, record *entity.InventoryRecord) error {
	r.db.read(r.tx, func(st *state) {
		st.records[recordKey{record.BranchID, record.ProductID}] = record.Clone()
	})
	return nil
}

func (r *inventoryRepo) views(companyID, branchID string) []*entity.InventoryView {
	var out []*entity.InventoryView
	r.db.read(r.tx, func(st *state) {
		for _, rec := range st.records {
			if branchID != "" && rec.BranchID != branchID {
				continue
			}
			b := r.db.branch(rec.BranchID)
			p := r.db.product(rec.ProductID)
			if b == nil || p == nil || b.CompanyID != companyID {
				continue
			}
			out = append(out, &entity.InventoryView{
				InventoryRecord: *rec.Clone(),
				CompanyID:       b.CompanyID,
				BranchName:      b.Name,
				SKU:             p.SKU,
				ProductName:     p.Name,
				MinStockLevel:   p.MinStockLevel,
				ReorderPoint:    p.ReorderPoint,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchName != out[j].BranchName {
			return out[i].BranchName < out[j].BranchName
		}
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		return out[i].SKU < out[j].SKU
	})
	return out
}

func (r *inventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]*entity.InventoryView, int, error) {
	search := strings.ToLower(f.Search)
	all := r.views(f.CompanyID, f.BranchID)
	filtered := all[:0]
	for _, v := range all {
		if f.ProductID != "" && v.ProductID != f.ProductID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(v.SKU), search) && !strings.Contains(strings.ToLower(v.ProductName), search) {
			continue
		}
		if f.Status != "" && domaininv.ViewStatus(v) != f.Status {
			continue
		}
		filtered = append(filtered, v)
	}
	lo, hi := paginate(len(filtered), f.Limit, f.Offset)
	return filtered[lo:hi], len(filtered), nil
}

func (r *inventoryRepo) ListBelowReorderPoint(_ context.Context, companyID, branchID string) ([]*entity.InventoryView, error) {
	var out []*entity.InventoryView
	for _, v := range r.views(companyID, branchID) {
		if domaininv.ViewStatus(v) != entity.StockStatusInStock {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *inventoryRepo) SummarizeByBranch(_ context.Context, companyID, branchID string) ([]repository.BranchSummary, error) {
	byBranch := map[string]*repository.BranchSummary{}
	var order []string
	for _, v := range r.views(companyID, branchID) {
		s, ok := byBranch[v.BranchID]
		if !ok {
			s = &repository.BranchSummary{
				BranchID:      v.BranchID,
				BranchName:    v.BranchName,
				TotalQuantity: decimal.Zero,
				TotalReserved: decimal.Zero,
				StockValue:    decimal.Zero,
			}
			byBranch[v.BranchID] = s
			order = append(order, v.BranchID)
		}
		s.Records++
		s.TotalQuantity = s.TotalQuantity.Add(v.Quantity)
		s.TotalReserved = s.TotalReserved.Add(v.ReservedQuantity)
		s.StockValue = s.StockValue.Add(v.Quantity.Mul(v.AverageCost))
		switch domaininv.ViewStatus(v) {
		case entity.StockStatusInStock:
			s.InStock++
		case entity.StockStatusLowStock:
			s.LowStock++
		case entity.StockStatusOutOfStock:
			s.OutOfStock++
		case entity.StockStatusNeedsRestock:
			s.NeedsRestock++
		}
	}
	out := make([]repository.BranchSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byBranch[id])
	}
	return out, nil
}

var _ repository.InventoryRepository = (*inventoryRepo)(nil)
