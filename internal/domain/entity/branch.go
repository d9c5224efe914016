package entity

// Branch representa una sucursal (física o virtual) con inventario propio.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
}
