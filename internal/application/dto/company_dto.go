package dto

import "time"

// CreateCompanyRequest alta pública de una empresa; el NIT es único.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	NIT     string `json:"nit" validate:"required,max=20"`
	Address string `json:"address" validate:"max=300"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// ActivateModulesRequest sin expires_at la activación no vence.
type ActivateModulesRequest struct {
	Modules   []string   `json:"modules" validate:"required,min=1,dive,oneof=inventory sales purchasing manufacturing quality"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CompanyModuleResponse estado de contratación de un módulo.
type CompanyModuleResponse struct {
	Module      string     `json:"module"`
	Active      bool       `json:"active"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CompanyResponse Modules son los vigentes hoy; ModuleDetails incluye vencidos y desactivados.
type CompanyResponse struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	NIT           string                  `json:"nit"`
	Address       string                  `json:"address"`
	Phone         string                  `json:"phone"`
	Email         string                  `json:"email"`
	Status        string                  `json:"status"`
	Modules       []string                `json:"modules,omitempty"`
	ModuleDetails []CompanyModuleResponse `json:"module_details,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
