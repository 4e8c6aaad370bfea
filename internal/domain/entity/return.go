package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una devolución.
const (
	ReturnStatusPending   = "pending"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
	ReturnStatusCompleted = "completed"
	ReturnStatusRefunded  = "refunded"
)

// Condición física del ítem devuelto. Solo "good" vuelve al stock.
const (
	ItemConditionGood      = "good"
	ItemConditionDamaged   = "damaged"
	ItemConditionDefective = "defective"
)

// ValidReturnStatus indica si s es un estado conocido.
func ValidReturnStatus(s string) bool {
	switch s {
	case ReturnStatusPending, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusCompleted, ReturnStatusRefunded:
		return true
	}
	return false
}

// ValidItemCondition indica si c es una condición conocida.
func ValidItemCondition(c string) bool {
	return c == ItemConditionGood || c == ItemConditionDamaged || c == ItemConditionDefective
}

// Return es una devolución de productos, opcionalmente ligada a una venta.
type Return struct {
	ID             string
	ReturnNumber   string // RET-YYYYMMDD-XXXXXXXX
	OriginalSaleID *string
	TotalAmount    decimal.Decimal
	RefundMethod   string
	Reason         string
	Status         string
	CreatedAt      time.Time
	ProcessedAt    *time.Time // se fija al aprobar
	Items          []ReturnItem
}

// ReturnItem línea de una devolución.
type ReturnItem struct {
	ID          string
	ReturnID    string
	ProductID   string
	ProductName string // solo lectura (JOIN)
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Condition   string
}
