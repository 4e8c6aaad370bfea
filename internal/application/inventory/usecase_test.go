package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, store *memory.Store, id string, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Repositories().Products.Create(context.Background(), &entity.Product{
		ID:            id,
		Name:          "Producto " + id,
		SKU:           "SKU-" + id,
		Price:         decimal.NewFromInt(5),
		StockQuantity: stock,
		MinStockLevel: 2,
		Unit:          entity.DefaultUnit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func newMovementUC(store *memory.Store) *inventory.RegisterMovementUseCase {
	repos := store.Repositories()
	return inventory.NewRegisterMovementUseCase(store, inventory.NewEngine(), repos.Movements, repos.Products, zerolog.Nop())
}

func currentStock(t *testing.T, store *memory.Store, id string) int {
	t.Helper()
	p, err := store.Repositories().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func TestRegisterMovement_TiposDeMovimiento(t *testing.T) {
	tests := []struct {
		name     string
		movType  string
		quantity int
		want     int
	}{
		{"entrada suma", entity.MovementTypeIn, 5, 15},
		{"salida resta", entity.MovementTypeOut, 4, 6},
		{"salida hasta cero", entity.MovementTypeOut, 10, 0},
		{"ajuste fija el valor absoluto", entity.MovementTypeAdjustment, 3, 3},
		{"ajuste a cero", entity.MovementTypeAdjustment, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			seedProduct(t, store, "p1", 10)

			mov, err := newMovementUC(store).RegisterMovement(context.Background(), dto.RegisterMovementRequest{
				ProductID: "p1", MovementType: tt.movType, Quantity: tt.quantity, Notes: "conteo",
			})
			require.NoError(t, err)
			assert.Equal(t, 10, mov.PreviousStock)
			assert.Equal(t, tt.want, mov.NewStock)
			assert.Equal(t, tt.want, currentStock(t, store, "p1"))
		})
	}
}

func TestRegisterMovement_SalidaInsuficienteNoPersiste(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 3)
	uc := newMovementUC(store)

	_, err := uc.RegisterMovement(context.Background(), dto.RegisterMovementRequest{
		ProductID: "p1", MovementType: entity.MovementTypeOut, Quantity: 4,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ee *domain.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "p1", ee.ID)

	assert.Equal(t, 3, currentStock(t, store, "p1"))
	history, err := uc.ProductHistory(context.Background(), "p1", dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 3)
	uc := newMovementUC(store)

	_, err := uc.RegisterMovement(context.Background(), dto.RegisterMovementRequest{ProductID: "p1", MovementType: "transfer", Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterMovement(context.Background(), dto.RegisterMovementRequest{ProductID: "p1", MovementType: entity.MovementTypeIn, Quantity: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.RegisterMovement(context.Background(), dto.RegisterMovementRequest{ProductID: "nada", MovementType: entity.MovementTypeIn, Quantity: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = uc.ProductHistory(context.Background(), "nada", dto.PageRequest{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// El historial debe reconstruir el stock actual encadenando previous/new.
func TestProductHistory_CadenaConsistente(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 0)
	uc := newMovementUC(store)
	ctx := context.Background()

	steps := []dto.RegisterMovementRequest{
		{ProductID: "p1", MovementType: entity.MovementTypeIn, Quantity: 20},
		{ProductID: "p1", MovementType: entity.MovementTypeOut, Quantity: 5},
		{ProductID: "p1", MovementType: entity.MovementTypeAdjustment, Quantity: 12},
		{ProductID: "p1", MovementType: entity.MovementTypeOut, Quantity: 2},
	}
	for _, s := range steps {
		_, err := uc.RegisterMovement(ctx, s)
		require.NoError(t, err)
	}

	history, err := uc.ProductHistory(ctx, "p1", dto.PageRequest{Limit: 50})
	require.NoError(t, err)
	require.Len(t, history, len(steps))

	prev := 0
	for _, m := range history {
		assert.Equal(t, prev, m.PreviousStock)
		prev = m.NewStock
	}
	assert.Equal(t, currentStock(t, store, "p1"), prev)
	assert.Equal(t, 10, prev)

	outs, err := uc.List(ctx, "p1", entity.MovementTypeOut, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, outs, 2)
}

func TestEngine_RollbackDeTransaccion(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 10)
	engine := inventory.NewEngine()
	ctx := context.Background()

	boom := errors.New("falla posterior")
	err := store.Run(ctx, func(repos repository.Repositories) error {
		stock, mov, err := engine.ApplyMovement(ctx, repos, inventory.MovementInput{
			ProductID: "p1", Type: entity.MovementTypeOut, Quantity: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, 6, stock)
		assert.Equal(t, 10, mov.PreviousStock)
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 10, currentStock(t, store, "p1"))
	movs, err := store.Repositories().Movements.ListByProduct(ctx, "p1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
}
