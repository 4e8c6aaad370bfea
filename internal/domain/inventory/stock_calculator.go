package inventory

import (
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
)

// NextStock calcula el stock resultante de aplicar un movimiento (servicio de dominio).
//
//	in:         nuevo = anterior + cantidad
//	out:        nuevo = anterior - cantidad  (ErrInsufficientStock si queda negativo)
//	adjustment: nuevo = cantidad             (valor absoluto, no delta)
func NextStock(previous int, movementType string, quantity int) (int, error) {
	if quantity < 0 {
		return previous, domain.Invalid("cantidad negativa: %d", quantity)
	}
	switch movementType {
	case entity.MovementTypeIn:
		return previous + quantity, nil
	case entity.MovementTypeOut:
		next := previous - quantity
		if next < 0 {
			return previous, domain.ErrInsufficientStock
		}
		return next, nil
	case entity.MovementTypeAdjustment:
		return quantity, nil
	}
	return previous, domain.Invalid("tipo de movimiento inválido: %q", movementType)
}
