package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores por defecto de Product.
const (
	DefaultMinStockLevel = 10
	DefaultUnit          = "pcs"
)

// Product representa un producto del catálogo.
// StockQuantity solo se modifica a través del motor de ledger (ver application/inventory).
type Product struct {
	ID            string
	Name          string
	Description   string
	SKU           string  // único
	Barcode       *string // único, opcional
	CategoryID    string
	CategoryName  string // solo lectura (JOIN), vacío en escrituras
	Price         decimal.Decimal
	Cost          decimal.Decimal
	StockQuantity int // nunca negativo
	MinStockLevel int
	Unit          string
	ImageURL      string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock indica si el producto está en o por debajo de su mínimo.
func (p *Product) IsLowStock() bool {
	return p.IsActive && p.StockQuantity <= p.MinStockLevel
}
