package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func toMovementResponse(m *entity.StockMovement) *dto.StockMovementResponse {
	if m == nil {
		return nil
	}
	return &dto.StockMovementResponse{
		ID:               m.ID,
		BranchID:         m.BranchID,
		ProductID:        m.ProductID,
		UserID:           m.UserID,
		Quantity:         m.Quantity,
		Type:             string(m.Type),
		ReferenceID:      m.ReferenceID,
		Notes:            m.Notes,
		CostPerUnit:      m.CostPerUnit,
		TotalCost:        m.TotalCost,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		CreatedAt:        m.CreatedAt,
	}
}

func toRecordResponse(r *entity.InventoryRecord) *dto.InventoryRecordResponse {
	return &dto.InventoryRecordResponse{
		BranchID:          r.BranchID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.AvailableQuantity(),
		AverageCost:       r.AverageCost,
		LastUpdated:       r.LastUpdated,
	}
}

func toViewResponse(v *entity.InventoryView) dto.InventoryRecordResponse {
	out := *toRecordResponse(&v.InventoryRecord)
	out.BranchName = v.BranchName
	out.SKU = v.SKU
	out.ProductName = v.ProductName
	out.StockStatus = domaininv.ViewStatus(v)
	return out
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		})
	}
	return &dto.TransferResponse{
		ID:            t.ID,
		CompanyID:     t.CompanyID,
		FromBranchID:  t.FromBranchID,
		ToBranchID:    t.ToBranchID,
		UserID:        t.UserID,
		Status:        string(t.Status),
		TransferDate:  t.TransferDate,
		CompletedDate: t.CompletedDate,
		CompletedBy:   t.CompletedBy,
		Notes:         t.Notes,
		TotalQuantity: t.TotalQuantity(),
		Items:         items,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
