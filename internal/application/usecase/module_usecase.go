package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// DefaultModuleCacheTTL cuánto se reutiliza la lista de módulos de una empresa entre peticiones.
const DefaultModuleCacheTTL = 30 * time.Second

type cachedModules struct {
	mods    []entity.CompanyModule
	fetched time.Time
}

// ModuleService responde si una empresa tiene un módulo vigente. Lee company_modules una vez
// por empresa y TTL; Forget descarta la copia tras una activación.
type ModuleService struct {
	companies repository.CompanyRepository
	ttl       time.Duration
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cachedModules
}

func NewModuleService(companies repository.CompanyRepository) *ModuleService {
	return &ModuleService{
		companies: companies,
		ttl:       DefaultModuleCacheTTL,
		now:       time.Now,
		cache:     map[string]cachedModules{},
	}
}

// WithTTL ttl <= 0 desactiva la caché.
func (s *ModuleService) WithTTL(ttl time.Duration) *ModuleService {
	s.ttl = ttl
	return s
}

// HasActiveModule false sin error si no está contratado o venció; error solo ante fallas
// del repositorio o un nombre de módulo desconocido.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || !entity.IsModule(moduleName) {
		return false, fmt.Errorf("module: empresa %q o módulo %q inválido", companyID, moduleName)
	}
	mods, err := s.modules(ctx, companyID)
	if err != nil {
		return false, err
	}
	now := s.now()
	for _, m := range mods {
		if m.ModuleName == moduleName {
			return m.ActiveAt(now), nil
		}
	}
	return false, nil
}

// Forget invalida la caché de la empresa.
func (s *ModuleService) Forget(companyID string) {
	s.mu.Lock()
	delete(s.cache, companyID)
	s.mu.Unlock()
}

func (s *ModuleService) modules(ctx context.Context, companyID string) ([]entity.CompanyModule, error) {
	now := s.now()
	if s.ttl > 0 {
		s.mu.Lock()
		c, ok := s.cache[companyID]
		s.mu.Unlock()
		if ok && now.Sub(c.fetched) < s.ttl {
			return c.mods, nil
		}
	}
	mods, err := s.companies.ListModules(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("module: listar módulos: %w", err)
	}
	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[companyID] = cachedModules{mods: mods, fetched: now}
		s.mu.Unlock()
	}
	return mods, nil
}
