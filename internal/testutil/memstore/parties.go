package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	s := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), s) {
			return true
		}
	}
	return false
}

type clientRepo struct{ s *Store }

func (r clientRepo) Create(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.clients {
		if e.DeletedAt == nil && e.CompanyID == c.CompanyID && e.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.d.clients[c.ID] = *c
	return nil
}

func (r clientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.d.clients[id]; ok && c.DeletedAt == nil {
		return &c, nil
	}
	return nil, nil
}

func (r clientRepo) GetByTaxID(_ context.Context, companyID, taxID string) (*entity.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.d.clients {
		if c.DeletedAt == nil && c.CompanyID == companyID && c.TaxID == taxID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r clientRepo) List(_ context.Context, companyID, search string, limit, offset int) ([]*entity.Client, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Client
	for _, c := range r.s.d.clients {
		if c.DeletedAt == nil && c.CompanyID == companyID && matches(search, c.Name, c.TaxID) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r clientRepo) Update(_ context.Context, c *entity.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.clients[c.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	for _, e := range r.s.d.clients {
		if e.ID != c.ID && e.DeletedAt == nil && e.CompanyID == c.CompanyID && e.TaxID == c.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.d.clients[c.ID] = *c
	return nil
}

func (r clientRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.clients[id]
	if !ok || c.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	c.DeletedAt, c.UpdatedAt = &now, now
	r.s.d.clients[id] = c
	return nil
}

type supplierRepo struct{ s *Store }

func (r supplierRepo) Create(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.d.suppliers {
		if e.DeletedAt == nil && e.CompanyID == sp.CompanyID && e.TaxID == sp.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.d.suppliers[sp.ID] = *sp
	return nil
}

func (r supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sp, ok := r.s.d.suppliers[id]; ok && sp.DeletedAt == nil {
		return &sp, nil
	}
	return nil, nil
}

func (r supplierRepo) GetByTaxID(_ context.Context, companyID, taxID string) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.d.suppliers {
		if sp.DeletedAt == nil && sp.CompanyID == companyID && sp.TaxID == taxID {
			return &sp, nil
		}
	}
	return nil, nil
}

func (r supplierRepo) List(_ context.Context, companyID, search string, limit, offset int) ([]*entity.Supplier, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Supplier
	for _, sp := range r.s.d.suppliers {
		if sp.DeletedAt == nil && sp.CompanyID == companyID && matches(search, sp.Name, sp.TaxID) {
			out = append(out, &sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), len(out), nil
}

func (r supplierRepo) Update(_ context.Context, sp *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.d.suppliers[sp.ID]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	for _, e := range r.s.d.suppliers {
		if e.ID != sp.ID && e.DeletedAt == nil && e.CompanyID == sp.CompanyID && e.TaxID == sp.TaxID {
			return domain.ErrDuplicate
		}
	}
	r.s.d.suppliers[sp.ID] = *sp
	return nil
}

func (r supplierRepo) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.d.suppliers[id]
	if !ok || sp.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now().UTC()
	sp.DeletedAt, sp.UpdatedAt = &now, now
	r.s.d.suppliers[id] = sp
	return nil
}
