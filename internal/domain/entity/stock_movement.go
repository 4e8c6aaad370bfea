package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIn         = "in"         // entrada: suma
	MovementTypeOut        = "out"        // salida: resta
	MovementTypeAdjustment = "adjustment" // ajuste: fija el valor absoluto
)

// StockMovement es un registro append-only del ledger: cada cambio de
// Product.StockQuantity produce exactamente uno, en la misma transacción.
type StockMovement struct {
	ID            string
	ProductID     string
	ProductName   string // solo lectura (JOIN)
	MovementType  string
	Quantity      int
	PreviousStock int
	NewStock      int
	ReferenceID   *string // venta o devolución que originó el movimiento
	Notes         string
	CreatedAt     time.Time
}
