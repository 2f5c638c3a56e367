package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() ports.Table {
	return ports.Table{
		Name:    "stock_batches",
		Columns: []string{"sku", "lote", "disponible", "costo"},
		Rows: [][]string{
			{"007", "L-1", "12.5", "1000.25"},
			{"PAN-2", "L,2", "3", ""},
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().Write(&buf, sampleTable()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimPrefix(out, "\xEF\xBB\xBF"), "\n")
	assert.Equal(t, "sku,lote,disponible,costo", lines[0])
	assert.Equal(t, "007,L-1,12.5,1000.25", lines[1])
	assert.Equal(t, `PAN-2,"L,2",3,`, lines[2])
}

func TestCSVWriter_FilaConCeldasDeMas(t *testing.T) {
	tbl := sampleTable()
	tbl.Rows = append(tbl.Rows, []string{"a", "b", "c", "d", "e"})
	err := (&CSVWriter{}).Write(&bytes.Buffer{}, tbl)
	assert.Error(t, err)
}

func TestXLSXWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXWriter().Write(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("stock_batches")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"sku", "lote", "disponible", "costo"}, rows[0])
	assert.Equal(t, "007", rows[1][0])
	assert.Equal(t, "12.5", rows[1][2])
	assert.Equal(t, "L,2", rows[2][1])
}

func TestForFormat(t *testing.T) {
	w, err := ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, w.Format())

	w, err = ForFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, w.Format())

	_, err = ForFormat("pdf")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Datos", sheetName(""))
	assert.Equal(t, "a_b", sheetName("a/b"))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
}
