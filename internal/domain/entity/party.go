package entity

import "time"

// Client cliente de la empresa. DeletedAt != nil indica borrado lógico.
type Client struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Supplier proveedor de la empresa. DeletedAt != nil indica borrado lógico.
type Supplier struct {
	ID               string
	CompanyID        string
	Name             string
	TaxID            string
	Email            string
	Phone            string
	Address          string
	PaymentTermsDays int
	LeadTimeDays     int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}
