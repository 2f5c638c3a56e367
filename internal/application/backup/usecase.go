// Package backup volcado lógico por empresa: JSON lines comprimido con zstd en el almacenamiento de respaldos.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/klauspost/compress/zstd"
)

// KeyPrefix prefijo de las llaves de volcado en el almacenamiento.
const KeyPrefix = "dumps/"

// record una línea del volcado.
type record struct {
	Table string          `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// UseCase exporta e importa volcados.
type UseCase struct {
	dumps repository.DumpRunner
	blobs ports.BlobStore
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(dumps repository.DumpRunner, blobs ports.BlobStore) *UseCase {
	return &UseCase{dumps: dumps, blobs: blobs, now: time.Now}
}

// CompanyPrefix prefijo de los volcados de una empresa.
func CompanyPrefix(companyID string) string { return KeyPrefix + companyID + "/" }

// Export vuelca las tablas de la empresa en orden de FKs dentro de una sola transacción y sube el archivo.
func (uc *UseCase) Export(ctx context.Context, companyID string) (*dto.DumpResult, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: empresa requerida", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	res := &dto.DumpResult{
		Key:       CompanyPrefix(companyID) + now.Format("20060102T150405Z") + ".jsonl.zst",
		CompanyID: companyID,
		Rows:      map[string]int{},
	}

	// RunDump puede reintentar fn: cada intento arranca con buffer y conteos vacíos.
	var payload *bytes.Buffer
	err := uc.dumps.RunDump(ctx, func(d repository.DumpRepository) error {
		buf := &bytes.Buffer{}
		enc, err := zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("backup: zstd: %w", err)
		}
		defer enc.Close()
		rows := map[string]int{}
		lines := json.NewEncoder(enc)
		for _, table := range d.Tables() {
			n, err := d.ExportTable(ctx, table, companyID, func(row []byte) error {
				return lines.Encode(record{Table: table, Row: row})
			})
			if err != nil {
				return fmt.Errorf("backup: exportar %s: %w", table, err)
			}
			rows[table] = n
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("backup: zstd: %w", err)
		}
		payload, res.Rows = buf, rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.blobs.Put(ctx, res.Key, payload); err != nil {
		return nil, fmt.Errorf("backup: subir %s: %w", res.Key, err)
	}
	res.FinishedAt = uc.now().UTC()
	return res, nil
}

// Import reinserta un volcado en una transacción; las filas existentes se omiten.
// Con companyID no vacío solo acepta llaves de esa empresa.
func (uc *UseCase) Import(ctx context.Context, companyID, key string) (*dto.DumpResult, error) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return nil, fmt.Errorf("%w: llave de volcado %q", domain.ErrInvalidInput, key)
	}
	if companyID != "" && !strings.HasPrefix(key, CompanyPrefix(companyID)) {
		return nil, domain.ErrForbidden
	}
	res := &dto.DumpResult{Key: key, CompanyID: companyID}
	// Cada intento de RunDump relee el volcado desde el inicio.
	err := uc.dumps.RunDump(ctx, func(d repository.DumpRepository) error {
		rc, err := uc.blobs.Get(ctx, key)
		if err != nil {
			return err
		}
		defer rc.Close()
		dec, err := zstd.NewReader(rc)
		if err != nil {
			return fmt.Errorf("backup: zstd: %w", err)
		}
		defer dec.Close()

		res.Rows, res.Skipped = map[string]int{}, map[string]int{}
		allowed := d.Tables()
		lines := json.NewDecoder(dec)
		for line := 1; ; line++ {
			var rec record
			if err := lines.Decode(&rec); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("%w: línea %d del volcado: %v", domain.ErrInvalidInput, line, err)
			}
			if !slices.Contains(allowed, rec.Table) {
				return fmt.Errorf("%w: tabla %q no permitida (línea %d)", domain.ErrInvalidInput, rec.Table, line)
			}
			inserted, err := d.ImportRow(ctx, rec.Table, rec.Row)
			if err != nil {
				return fmt.Errorf("backup: importar %s línea %d: %w", rec.Table, line, err)
			}
			if inserted {
				res.Rows[rec.Table]++
			} else {
				res.Skipped[rec.Table]++
			}
		}
	})
	if err != nil {
		return nil, err
	}
	res.FinishedAt = uc.now().UTC()
	return res, nil
}

// List llaves de volcados de la empresa; companyID vacío lista todos.
func (uc *UseCase) List(ctx context.Context, companyID string) (*dto.DumpListResponse, error) {
	prefix := KeyPrefix
	if companyID != "" {
		prefix = CompanyPrefix(companyID)
	}
	keys, err := uc.blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return &dto.DumpListResponse{Keys: keys}, nil
}
