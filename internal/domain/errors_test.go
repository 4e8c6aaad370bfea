package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-inventario-api/internal/domain"
)

func TestEntityError_UnwrapAlSentinel(t *testing.T) {
	err := domain.InsufficientStock("p-1", "Arroz", 6, 7)
	wrapped := fmt.Errorf("sales.CreateSale: %w", err)

	assert.True(t, errors.Is(wrapped, domain.ErrInsufficientStock))
	assert.False(t, errors.Is(wrapped, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "p-1")
	assert.Contains(t, err.Error(), "disponible 6, solicitado 7")
}

func TestEntityError_ExtraeEntidad(t *testing.T) {
	var ee *domain.EntityError
	err := fmt.Errorf("capa: %w", domain.NotFound("sale", "s-9"))

	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, "sale", ee.Entity)
	assert.Equal(t, "s-9", ee.ID)
	assert.Equal(t, "recurso no encontrado: sale s-9", ee.Error())
}
