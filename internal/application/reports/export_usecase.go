// Package reports exportación de datasets tabulares a CSV y XLSX.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/procurement"
	"github.com/jhoicas/erp-api/internal/domain/repository"
)

// Datasets exportables.
const (
	DatasetStockBatches     = "stock_batches"
	DatasetPOReconciliation = "po_reconciliation"
	DatasetAuditLogs        = "audit_logs"
)

const (
	defaultFormat = "csv"
	scanPage      = 500
)

// Reconciler conciliación de una OC de la empresa.
type Reconciler interface {
	Reconcile(ctx context.Context, companyID, id string) (*procurement.Reconciliation, error)
}

// File archivo generado listo para descargar.
type File struct {
	Name        string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportUseCase arma la tabla del dataset y la serializa con el writer del formato pedido.
type ExportUseCase struct {
	store      repository.Store
	reconciler Reconciler
	writers    map[string]ports.TableWriter
	now        func() time.Time
}

// NewExportUseCase writers indexados por nombre de formato (csv, xlsx).
func NewExportUseCase(store repository.Store, reconciler Reconciler, writers map[string]ports.TableWriter) *ExportUseCase {
	return &ExportUseCase{store: store, reconciler: reconciler, writers: writers, now: time.Now}
}

// Export genera el archivo del dataset. Dataset o formato desconocido es ErrInvalidInput.
func (uc *ExportUseCase) Export(ctx context.Context, companyID, dataset string, q dto.ExportQuery) (*File, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = defaultFormat
	}
	w, ok := uc.writers[format]
	if !ok {
		return nil, fmt.Errorf("%w: formato de exportación %q no soportado", domain.ErrInvalidInput, q.Format)
	}

	var (
		tbl ports.Table
		err error
	)
	switch dataset {
	case DatasetStockBatches:
		tbl, err = uc.stockBatches(ctx, companyID, q)
	case DatasetPOReconciliation:
		tbl, err = uc.poReconciliation(ctx, companyID, q)
	case DatasetAuditLogs:
		tbl, err = uc.auditLogs(ctx, companyID, q)
	default:
		return nil, fmt.Errorf("%w: dataset %q desconocido", domain.ErrInvalidInput, dataset)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, tbl); err != nil {
		return nil, fmt.Errorf("exportar %s: %w", dataset, err)
	}
	return &File{
		Name:        fmt.Sprintf("%s_%s.%s", dataset, uc.now().Format("20060102_150405"), w.Format()),
		ContentType: w.ContentType(),
		Body:        buf.Bytes(),
		Rows:        len(tbl.Rows),
	}, nil
}

func (uc *ExportUseCase) stockBatches(ctx context.Context, companyID string, q dto.ExportQuery) (ports.Table, error) {
	tbl := ports.Table{
		Name: DatasetStockBatches,
		Columns: []string{"lote", "sku", "producto", "bodega", "estado", "recibido", "vence", "dias_para_vencer",
			"cantidad_recibida", "cantidad_disponible", "costo_unitario", "valor"},
	}
	now := uc.now()
	products := map[string]*entity.Product{}
	warehouses := map[string]string{}
	for offset := 0; ; offset += scanPage {
		batches, err := uc.store.Batches().List(ctx, repository.BatchFilter{
			CompanyID: companyID, WarehouseID: q.WarehouseID, Status: strings.ToUpper(q.Status), Limit: scanPage, Offset: offset,
		})
		if err != nil {
			return tbl, err
		}
		for _, b := range batches {
			p, ok := products[b.ProductID]
			if !ok {
				if p, err = uc.store.Products().GetByID(ctx, b.ProductID); err != nil {
					return tbl, err
				}
				products[b.ProductID] = p
			}
			wh, ok := warehouses[b.WarehouseID]
			if !ok {
				w, err := uc.store.Warehouses().GetByID(ctx, b.WarehouseID)
				if err != nil {
					return tbl, err
				}
				if w != nil {
					wh = w.Code
				}
				warehouses[b.WarehouseID] = wh
			}
			sku, name := "", ""
			if p != nil {
				sku, name = p.SKU, p.Name
			}
			expires, days := "", ""
			if b.ExpiresAt != nil {
				expires = b.ExpiresAt.Format("2006-01-02")
			}
			if left, ok := b.DaysToExpiry(now); ok {
				days = strconv.Itoa(int(math.Floor(left)))
			}
			tbl.Rows = append(tbl.Rows, []string{
				b.BatchNumber, sku, name, wh, b.Status, b.ReceivedAt.Format("2006-01-02"), expires, days,
				b.QtyReceived.String(), b.QtyAvailable.String(), b.UnitCost.StringFixed(2),
				b.QtyAvailable.Mul(b.UnitCost).StringFixed(2),
			})
		}
		if len(batches) < scanPage {
			return tbl, nil
		}
	}
}

func (uc *ExportUseCase) poReconciliation(ctx context.Context, companyID string, q dto.ExportQuery) (ports.Table, error) {
	tbl := ports.Table{
		Name: DatasetPOReconciliation,
		Columns: []string{"linea", "sku", "ordenado", "recibido", "aceptado", "rechazado", "pendiente", "exceso",
			"costo_oc", "costo_promedio_recibido", "variacion_precio", "estado"},
	}
	if q.POID == "" {
		return tbl, domain.NewValidationError(domain.Issue{Code: "PO_REQUIRED", Field: "po_id", Message: "se requiere la orden de compra"})
	}
	rec, err := uc.reconciler.Reconcile(ctx, companyID, q.POID)
	if err != nil {
		return tbl, err
	}
	tbl.Name = DatasetPOReconciliation + "_" + rec.Number
	for _, l := range rec.Lines {
		sku := l.ProductID
		if p, err := uc.store.Products().GetByID(ctx, l.ProductID); err != nil {
			return tbl, err
		} else if p != nil {
			sku = p.SKU
		}
		tbl.Rows = append(tbl.Rows, []string{
			strconv.Itoa(l.LineNo), sku, l.Ordered.String(), l.Received.String(), l.Accepted.String(),
			l.Rejected.String(), l.Pending.String(), l.Over.String(), l.POUnitCost.StringFixed(2),
			l.AvgReceivedCost.StringFixed(2), l.PriceVariance.StringFixed(2), l.Status,
		})
	}
	return tbl, nil
}

func (uc *ExportUseCase) auditLogs(ctx context.Context, companyID string, q dto.ExportQuery) (ports.Table, error) {
	tbl := ports.Table{
		Name:    DatasetAuditLogs,
		Columns: []string{"fecha", "usuario", "entidad", "entidad_id", "accion", "antes", "despues"},
	}
	from, err := parseDate(q.From, false)
	if err != nil {
		return tbl, err
	}
	to, err := parseDate(q.To, true)
	if err != nil {
		return tbl, err
	}
	for offset := 0; ; offset += scanPage {
		logs, err := uc.store.Audit().List(ctx, repository.AuditFilter{
			CompanyID: companyID, EntityType: q.EntityType, From: from, To: to, Limit: scanPage, Offset: offset,
		})
		if err != nil {
			return tbl, err
		}
		for _, l := range logs {
			tbl.Rows = append(tbl.Rows, []string{
				l.CreatedAt.UTC().Format(time.RFC3339), l.UserID, l.EntityType, l.EntityID, l.Action,
				string(l.Before), string(l.After),
			})
		}
		if len(logs) < scanPage {
			return tbl, nil
		}
	}
}

// parseDate YYYY-MM-DD o RFC3339; vacío = sin límite.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q inválida", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
