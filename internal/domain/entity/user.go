package entity

// Roles válidos para los usuarios (definidos por el sistema de identidad externo).
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Grupos de roles usados por las operaciones de inventario.
var (
	RolesStockManagers = []string{RoleAdmin, RoleBodeguero}
	RolesStockUsers    = []string{RoleAdmin, RoleBodeguero, RoleVendedor}
)
