package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/jhoicas/erp-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase registro de usuarios con bcrypt y emisión de JWT HS256.
type AuthUseCase struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	jwtCfg    JWTConfig
	cost      int
	now       func() time.Time
}

func NewAuthUseCase(users repository.UserRepository, companies repository.CompanyRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{users: users, companies: companies, jwtCfg: jwtCfg, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithHashCost las pruebas usan bcrypt.MinCost.
func (uc *AuthUseCase) WithHashCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// RegisterUser alta pública. El primer usuario de la empresa puede ser admin; después el rol
// admin solo lo asigna otro admin con CreateUser.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleVendedor
	}
	if role == entity.RoleAdmin {
		existing, err := uc.users.ListByCompany(ctx, in.CompanyID, 1, 0)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: el rol admin lo asigna un administrador de la empresa", domain.ErrForbidden)
		}
	}
	return uc.create(ctx, in.CompanyID, in.Email, in.Password, in.Name, role)
}

// CreateUser alta hecha por un admin autenticado de companyID.
func (uc *AuthUseCase) CreateUser(ctx context.Context, companyID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	return uc.create(ctx, companyID, in.Email, in.Password, in.Name, in.Role)
}

func (uc *AuthUseCase) create(ctx context.Context, companyID, email, password, name, role string) (*dto.UserResponse, error) {
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, role)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	dup, err := uc.users.GetByEmailAndCompany(ctx, email, companyID)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	company, err := uc.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return UserResponse(user), nil
}

// Login ErrUserNotFound y ErrUnauthorized se responden igual para no revelar emails.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.CanLogin() {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.CompanyID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *UserResponse(user)}, nil
}

// UserResponse vista pública del usuario.
func UserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
