package entity

import "time"

// Setting par clave/valor de configuración global (valor siempre texto).
type Setting struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   *time.Time
}
