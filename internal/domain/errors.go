package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// EntityError envuelve un error de dominio e identifica la entidad que lo provocó
// (ej. qué producto no tenía stock). errors.Is sigue funcionando contra el sentinel.
type EntityError struct {
	Err    error
	Entity string // product, sale, return, category, setting...
	ID     string
	Detail string
}

func (e *EntityError) Error() string {
	msg := e.Err.Error()
	if e.Entity != "" {
		msg += ": " + e.Entity
		if e.ID != "" {
			msg += " " + e.ID
		}
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *EntityError) Unwrap() error { return e.Err }

// NotFound construye un ErrNotFound para la entidad indicada.
func NotFound(entity, id string) error {
	return &EntityError{Err: ErrNotFound, Entity: entity, ID: id}
}

// Invalid construye un ErrInvalidInput con detalle legible.
func Invalid(format string, args ...any) error {
	return &EntityError{Err: ErrInvalidInput, Detail: fmt.Sprintf(format, args...)}
}

// Duplicate construye un ErrDuplicate para el campo único indicado.
func Duplicate(entity, field, value string) error {
	return &EntityError{Err: ErrDuplicate, Entity: entity, ID: value, Detail: field + " ya existe"}
}

// Conflict construye un ErrConflict con detalle.
func Conflict(entity, id, detail string) error {
	return &EntityError{Err: ErrConflict, Entity: entity, ID: id, Detail: detail}
}

// InsufficientStock indica qué producto no alcanza la cantidad pedida.
func InsufficientStock(productID, productName string, available, requested int) error {
	return &EntityError{
		Err:    ErrInsufficientStock,
		Entity: "product",
		ID:     productID,
		Detail: fmt.Sprintf("%s: disponible %d, solicitado %d", productName, available, requested),
	}
}
