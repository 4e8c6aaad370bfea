package entity

import "time"

// Category agrupa productos. ProductCount e IsActive se derivan al consultar
// (IsActive = tiene al menos un producto), no se guardan.
type Category struct {
	ID           string
	Name         string // único
	Description  string
	ProductCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive devuelve true si la categoría tiene productos asociados.
func (c *Category) IsActive() bool { return c.ProductCount > 0 }
