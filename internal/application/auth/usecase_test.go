package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/testutil/memstore"
	"github.com/jhoicas/erp-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func setup(t *testing.T) (*AuthUseCase, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	require.NoError(t, s.Companies().Create(context.Background(), &entity.Company{
		ID: "c1", Name: "ACME", NIT: "900", Status: "active", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	uc := NewAuthUseCase(s.Users(), s.Companies(), JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "erp-api"}).
		WithHashCost(bcrypt.MinCost)
	return uc, s
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "Ana@Acme.co", Password: "secreto123", CompanyID: "c1", Role: entity.RoleComprador})
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.co", user.Email)
	assert.Equal(t, entity.RoleComprador, user.Role)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.co", Password: "secreto123"})
	require.NoError(t, err)
	claims, err := jwt.ParseClaims(secret, "erp-api", res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, entity.RoleComprador, claims.Role)
}

func TestRegister_Errores(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@a.co", Password: "secreto123", CompanyID: "c1"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@a.co", Password: "secreto123", CompanyID: "c1"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "b@a.co", Password: "secreto123", CompanyID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "c@a.co", Password: "secreto123", CompanyID: "c1", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@a.co", Password: "secreto123", CompanyID: "c1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@a.co", Password: "otro"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "x@a.co", Password: "otro"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegister_AdminSoloPrimerUsuario(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	first, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "jefe@acme.co", Password: "secreto123", CompanyID: "c1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, first.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "otro@acme.co", Password: "secreto123", CompanyID: "c1", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	second, err := uc.CreateUser(ctx, "c1", dto.CreateUserRequest{Email: "otro@acme.co", Password: "secreto123", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, second.Role)
	assert.Equal(t, "otro@acme.co", second.Name)
}

func TestLogin_UsuarioSuspendido(t *testing.T) {
	uc, s := setup(t)
	ctx := context.Background()
	user, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@a.co", Password: "secreto123", CompanyID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVendedor, user.Role)

	require.NoError(t, s.Users().UpdateStatus(ctx, &entity.User{ID: user.ID, Status: entity.UserStatusSuspended, UpdatedAt: time.Now()}))
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@a.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
