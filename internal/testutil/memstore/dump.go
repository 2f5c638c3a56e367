package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
)

// dumpRepo vuelca un subconjunto de tablas serializando las entidades como JSON.
type dumpRepo struct{ s *Store }

var dumpTables = []string{"companies", "warehouses", "products", "clients", "suppliers", "batches"}

func (r dumpRepo) Tables() []string { return append([]string(nil), dumpTables...) }

func exportRows[T any](m map[string]T, keep func(T) bool, fn func([]byte) error) (int, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := 0
	for _, k := range keys {
		v := m[k]
		if !keep(v) {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return n, err
		}
		if err := fn(b); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func importRow[T any](m map[string]T, row []byte, id func(T) string) (bool, error) {
	var v T
	if err := json.Unmarshal(row, &v); err != nil {
		return false, fmt.Errorf("%w: fila inválida: %v", domain.ErrInvalidInput, err)
	}
	if _, ok := m[id(v)]; ok {
		return false, nil
	}
	m[id(v)] = v
	return true, nil
}

func (r dumpRepo) ExportTable(_ context.Context, table, companyID string, fn func(row []byte) error) (int, error) {
	r.s.mu.Lock()
	d := r.s.d
	r.s.mu.Unlock()
	switch table {
	case "companies":
		return exportRows(d.companies, func(c entity.Company) bool { return c.ID == companyID }, fn)
	case "warehouses":
		return exportRows(d.warehouses, func(w entity.Warehouse) bool { return w.CompanyID == companyID }, fn)
	case "products":
		return exportRows(d.products, func(p entity.Product) bool { return p.CompanyID == companyID }, fn)
	case "clients":
		return exportRows(d.clients, func(c entity.Client) bool { return c.CompanyID == companyID }, fn)
	case "suppliers":
		return exportRows(d.suppliers, func(sp entity.Supplier) bool { return sp.CompanyID == companyID }, fn)
	case "batches":
		return exportRows(d.batches, func(b entity.Batch) bool { return b.CompanyID == companyID }, fn)
	}
	return 0, fmt.Errorf("%w: tabla %q fuera del volcado", domain.ErrInvalidInput, table)
}

func (r dumpRepo) ImportRow(_ context.Context, table string, row []byte) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d := r.s.d
	switch table {
	case "companies":
		return importRow(d.companies, row, func(c entity.Company) string { return c.ID })
	case "warehouses":
		return importRow(d.warehouses, row, func(w entity.Warehouse) string { return w.ID })
	case "products":
		return importRow(d.products, row, func(p entity.Product) string { return p.ID })
	case "clients":
		return importRow(d.clients, row, func(c entity.Client) string { return c.ID })
	case "suppliers":
		return importRow(d.suppliers, row, func(sp entity.Supplier) string { return sp.ID })
	case "batches":
		return importRow(d.batches, row, func(b entity.Batch) string { return b.ID })
	}
	return false, fmt.Errorf("%w: tabla %q fuera del volcado", domain.ErrInvalidInput, table)
}
