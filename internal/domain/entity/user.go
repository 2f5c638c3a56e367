package entity

import (
	"slices"
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleBodeguero  = "bodeguero"
	RoleVendedor   = "vendedor"
	RoleComprador  = "comprador"
	RoleCalidad    = "calidad"
	RoleProduccion = "produccion"
)

// Roles en el orden en que se documentan en la API.
var Roles = []string{RoleAdmin, RoleBodeguero, RoleVendedor, RoleComprador, RoleCalidad, RoleProduccion}

func ValidRole(role string) bool { return slices.Contains(Roles, role) }

const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// ValidUserStatus informa si status es uno de los UserStatus*.
func ValidUserStatus(status string) bool {
	return status == UserStatusActive || status == UserStatusInactive || status == UserStatusSuspended
}

// User pertenece a una sola empresa; el email es único en todo el sistema.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanLogin solo usuarios activos obtienen token.
func (u *User) CanLogin() bool { return u.Status == UserStatusActive }
