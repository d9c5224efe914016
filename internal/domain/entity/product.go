package entity

import "github.com/shopspring/decimal"

// Product es la vista mínima del catálogo que necesita el inventario.
// El catálogo es un colaborador externo; aquí solo se leen umbrales y costo.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string
	Name          string
	MinStockLevel decimal.Decimal
	ReorderPoint  decimal.Decimal
	Cost          decimal.Decimal // costo de catálogo, semilla del costo promedio
}
