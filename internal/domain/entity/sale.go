package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod método de pago si la venta no indica uno.
const DefaultPaymentMethod = "cash"

// Sale es una venta confirmada. No tiene estados: o existe completa o no existe.
// FinalAmount = TotalAmount - Discount + Tax, sin recorte (puede ser negativo).
type Sale struct {
	ID            string
	SaleNumber    string // SALE-YYYYMMDDHHMMSS
	TotalAmount   decimal.Decimal
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	FinalAmount   decimal.Decimal
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
	Items         []SalesItem
}

// SalesItem línea de una venta. Inmutable una vez creada.
type SalesItem struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string // solo lectura (JOIN)
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal // Quantity × UnitPrice
}
