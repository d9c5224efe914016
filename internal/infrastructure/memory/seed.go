package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Identificadores fijos del conjunto de demostración.
const (
	DemoCompanyID     = "00000000-0000-0000-0000-00000000c001"
	DemoMainBranchID  = "00000000-0000-0000-0000-00000000b001"
	DemoNorthBranchID = "00000000-0000-0000-0000-00000000b002"
	DemoAdminID       = "00000000-0000-0000-0000-00000000a001"
	DemoClerkID       = "00000000-0000-0000-0000-00000000a002"
	DemoSellerID      = "00000000-0000-0000-0000-00000000a003"
)

// SeedDemo carga una empresa con dos sucursales, tres usuarios y un catálogo corto
// para el modo de desarrollo sin base de datos.
func SeedDemo(s *Store) {
	s.AddBranch(entity.Branch{ID: DemoMainBranchID, CompanyID: DemoCompanyID, Name: "Principal", IsActive: true})
	s.AddBranch(entity.Branch{ID: DemoNorthBranchID, CompanyID: DemoCompanyID, Name: "Norte", IsActive: true})

	s.AddUser(User{ID: DemoAdminID, CompanyID: DemoCompanyID, Role: entity.RoleAdmin, Active: true})
	s.AddUser(User{ID: DemoClerkID, CompanyID: DemoCompanyID, Role: entity.RoleBodeguero, Active: true})
	s.AddUser(User{ID: DemoSellerID, CompanyID: DemoCompanyID, Role: entity.RoleVendedor, Active: true})

	for _, p := range []struct {
		id, sku, name     string
		minStock, reorder int64
		cost              string
	}{
		{"00000000-0000-0000-0000-0000000000d1", "CAFE-500", "Café molido 500 g", 5, 10, "12500"},
		{"00000000-0000-0000-0000-0000000000d2", "AZUC-1K", "Azúcar 1 kg", 10, 20, "4200"},
		{"00000000-0000-0000-0000-0000000000d3", "LECHE-1L", "Leche entera 1 L", 12, 24, "3900.50"},
	} {
		s.AddProduct(entity.Product{
			ID:            p.id,
			CompanyID:     DemoCompanyID,
			SKU:           p.sku,
			Name:          p.name,
			MinStockLevel: decimal.NewFromInt(p.minStock),
			ReorderPoint:  decimal.NewFromInt(p.reorder),
			Cost:          decimal.RequireFromString(p.cost),
		})
	}
}
