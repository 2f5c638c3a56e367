package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-api/internal/application/auth"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// UserUseCase administración de usuarios dentro de la empresa del token.
type UserUseCase struct {
	store repository.Store
	tx    repository.TxRunner
	auth  *auth.AuthUseCase
}

func NewUserUseCase(store repository.Store, tx repository.TxRunner, authUC *auth.AuthUseCase) *UserUseCase {
	return &UserUseCase{store: store, tx: tx, auth: authUC}
}

// GetByID nil si no existe o es de otra empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.owned(ctx, uc.store, companyID, id)
	if err != nil || user == nil {
		return nil, err
	}
	return auth.UserResponse(user), nil
}

func (uc *UserUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) (*dto.UserListResponse, error) {
	list, err := uc.store.Users().ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.UserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// Create alta por un admin; queda en auditoría con actorID.
func (uc *UserUseCase) Create(ctx context.Context, companyID, actorID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	out, err := uc.auth.CreateUser(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: actorID, EntityType: "user", EntityID: out.ID,
			Action: entity.AuditCreate, After: out, At: out.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus un admin no puede desactivarse a sí mismo.
func (uc *UserUseCase) UpdateStatus(ctx context.Context, companyID, actorID, id string, in dto.UpdateUserStatusRequest) (*dto.UserResponse, error) {
	if !entity.ValidUserStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if id == actorID && in.Status != entity.UserStatusActive {
		return nil, fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrForbidden)
	}
	var out *dto.UserResponse
	err := uc.tx.Run(ctx, func(s repository.Store) error {
		user, err := uc.owned(ctx, s, companyID, id)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrNotFound
		}
		before := auth.UserResponse(user)
		user.Status, user.UpdatedAt = in.Status, time.Now()
		if err := s.Users().UpdateStatus(ctx, user); err != nil {
			return err
		}
		out = auth.UserResponse(user)
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: actorID, EntityType: "user", EntityID: id,
			Action: entity.AuditStatus, Before: before, After: out, At: user.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *UserUseCase) owned(ctx context.Context, s repository.Store, companyID, id string) (*entity.User, error) {
	user, err := s.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID != companyID {
		return nil, nil
	}
	return user, nil
}
