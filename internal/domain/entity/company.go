package entity

import (
	"slices"
	"time"
)

// Company tenant; todo dato de negocio cuelga de un company_id.
type Company struct {
	ID        string
	Name      string
	NIT       string // identificación tributaria
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos contratables; mismo CHECK que company_modules.module_name.
const (
	ModuleInventory     = "inventory"
	ModuleSales         = "sales"
	ModulePurchasing    = "purchasing"
	ModuleManufacturing = "manufacturing"
	ModuleQuality       = "quality"
)

// AllModules se activan todos al crear la empresa.
var AllModules = []string{ModuleInventory, ModuleSales, ModulePurchasing, ModuleManufacturing, ModuleQuality}

// IsModule informa si name es un módulo conocido.
func IsModule(name string) bool { return slices.Contains(AllModules, name) }

// CompanyModule activación de un módulo; vigente si IsActive y ExpiresAt no ha pasado.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActiveAt vigencia del módulo en el instante dado.
func (m CompanyModule) ActiveAt(t time.Time) bool {
	return m.IsActive && (m.ExpiresAt == nil || m.ExpiresAt.After(t))
}

// ActiveModuleNames módulos vigentes en t, en el orden de AllModules.
func ActiveModuleNames(mods []CompanyModule, t time.Time) []string {
	var out []string
	for _, name := range AllModules {
		for _, m := range mods {
			if m.ModuleName == name && m.ActiveAt(t) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
