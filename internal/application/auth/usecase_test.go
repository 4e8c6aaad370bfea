package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario-api/internal/application/auth"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/domain"
	"github.com/jhoicas/pos-inventario-api/internal/domain/entity"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-inventario-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func newAuth() *auth.AuthUseCase {
	store := memory.NewStore()
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}, zerolog.Nop())
}

func TestRegister_PrimerUsuarioEsAdmin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Jefe@Tienda.com", Password: "secreto1", Role: entity.RoleVendedor}, "")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Equal(t, "jefe@tienda.com", u.Email)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "caja@tienda.com", Password: "secreto1"}, "")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	cajero, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "caja@tienda.com", Password: "secreto1"}, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, cajero.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "CAJA@tienda.com", Password: "secreto1"}, entity.RoleAdmin)
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@tienda.com", Password: "secreto1", Role: "root"}, entity.RoleAdmin)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRegister_Validaciones(t *testing.T) {
	uc := newAuth()
	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "sin-arroba", Password: "secreto1"}, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "a@b.com", Password: "123"}, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestLogin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "admin@tienda.com", Password: "secreto1"}, "")
	require.NoError(t, err)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "ADMIN@tienda.com", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	userID, role, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "admin@tienda.com", Password: "otra-clave"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@tienda.com", Password: "secreto1"})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
