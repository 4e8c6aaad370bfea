// Package memory implementa los puertos de persistencia en memoria.
// Se usa en los tests de casos de uso y como backend de desarrollo (DB_DRIVER=memory).
//
// Las transacciones trabajan sobre una copia del estado que solo reemplaza al
// original si la función termina sin error, así un Rollback no deja rastro.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	movements  []entity.StockMovement
	sales      map[string]entity.Sale
	returns    map[string]entity.Return
	settings   map[string]entity.Setting
	users      map[string]entity.User
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		categories: map[string]entity.Category{},
		sales:      map[string]entity.Sale{},
		returns:    map[string]entity.Return{},
		settings:   map[string]entity.Setting{},
		users:      map[string]entity.User{},
	}
}

// clone copia profunda: los slices de ítems se copian para que la tx no
// modifique el estado confirmado.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.sales {
		v.Items = append([]entity.SalesItem(nil), v.Items...)
		c.sales[k] = v
	}
	for k, v := range s.returns {
		v.Items = append([]entity.ReturnItem(nil), v.Items...)
		c.returns[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// with ejecuta fn sobre el estado de la tx si existe, o sobre el confirmado con el lock tomado.
func (s *Store) with(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Run ejecuta fn con repositorios sobre una copia del estado; la copia se
// confirma solo si fn devuelve nil. Las transacciones se serializan.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.data.clone()
	if err := fn(s.repositories(tx)); err != nil {
		return err
	}
	s.data = tx
	return nil
}

func (s *Store) repositories(tx *state) repository.Repositories {
	return repository.Repositories{
		Products:   &ProductRepo{s: s, tx: tx},
		Categories: &CategoryRepo{s: s, tx: tx},
		Movements:  &MovementRepo{s: s, tx: tx},
		Sales:      &SaleRepo{s: s, tx: tx},
		Returns:    &ReturnRepo{s: s, tx: tx},
		Settings:   &SettingRepo{s: s, tx: tx},
	}
}

// Repositories devuelve los repositorios fuera de transacción.
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(nil)
}

// Users devuelve el repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Analytics devuelve el repositorio de consultas de lectura.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
