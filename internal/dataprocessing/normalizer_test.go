package dataprocessing

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// workbookBytes builds an in-memory .xlsx from rows; the first row is the
// header.
func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseWorkbook_CanonicalColumns(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"ORDEN", "TIPO DE ORDEN", "FECHA DE CREACIÓN", "PROVEEDOR", "ESTATUS DE USUARIO", "IMPORTE"},
		{"1001", "CORRECTIVO", "2025-03-03", "ACME", "ABIERTA", "1,500.50"},
		{"1002", "preventivo", "2024-07-01", "BETA", "cerrada", "$200"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)

	require.Len(t, ds.Orders, 2)
	assert.Empty(t, ds.Warnings)

	first := ds.Orders[0]
	assert.Equal(t, "1001", first.OrderID)
	assert.Equal(t, "CORRECTIVO", first.OrderType)
	require.NotNil(t, first.CreationDate)
	assert.Equal(t, 2025, first.CreationDate.Year())
	require.NotNil(t, first.Amount)
	assert.InDelta(t, 1500.50, *first.Amount, 1e-9)

	// Values are upper-cased for type and status
	second := ds.Orders[1]
	assert.Equal(t, "PREVENTIVO", second.OrderType)
	assert.Equal(t, "CERRADA", second.UserStatus)
	require.NotNil(t, second.Amount)
	assert.InDelta(t, 200, *second.Amount, 1e-9)
}

func TestParseWorkbook_HeaderNormalization(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"  orden ", "tipo  de   orden", "FECHA DE CREACION", "Proveedor", "estatus de usuario", " importe "},
		{"1", "CORRECTIVO", "2025-01-15", "ACME", "ABIERTA", "10"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)

	assert.Empty(t, ds.Warnings)
	assert.True(t, ds.Columns.OrderID)
	assert.True(t, ds.Columns.CreationDate)
	assert.True(t, ds.Columns.Amount)
}

func TestParseWorkbook_UnparsableCellsBecomeAbsent(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"ORDEN", "FECHA DE CREACIÓN", "PROVEEDOR", "IMPORTE"},
		{"1", "no-es-fecha", "ACME", "N/A"},
		{"2", "2025-02-02", "BETA", "33.5"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, ds.Orders, 2)

	// Row survives with absent fields, never an error
	assert.Nil(t, ds.Orders[0].CreationDate)
	assert.Nil(t, ds.Orders[0].Amount)
	assert.NotNil(t, ds.Orders[1].CreationDate)
	assert.NotNil(t, ds.Orders[1].Amount)
}

func TestParseWorkbook_MissingColumnsWarn(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"ORDEN", "PROVEEDOR"},
		{"1", "ACME"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)

	assert.False(t, ds.Columns.OrderType)
	assert.False(t, ds.Columns.Amount)
	assert.True(t, ds.Columns.Vendor)
	require.NotEmpty(t, ds.Warnings)
	joined := strings.Join(ds.Warnings, "\n")
	assert.Contains(t, joined, "TIPO DE ORDEN")
	assert.Contains(t, joined, "IMPORTE")
}

func TestParseWorkbook_ExtraColumnsPassThrough(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"ORDEN", "PROVEEDOR", "CENTRO DE COSTO"},
		{"1", "ACME", "CC-42"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)
	require.Len(t, ds.Orders, 1)
	assert.Equal(t, "CC-42", ds.Orders[0].Extra["CENTRO DE COSTO"])
}

func TestParseWorkbook_SkipsEmptyRows(t *testing.T) {
	buf := workbookBytes(t, [][]interface{}{
		{"ORDEN", "PROVEEDOR"},
		{"1", "ACME"},
		{"", ""},
		{"2", "BETA"},
	})

	ds, err := testNormalizer().ParseWorkbook(buf)
	require.NoError(t, err)
	assert.Len(t, ds.Orders, 2)
}

func TestParseWorkbook_UnreadableStream(t *testing.T) {
	_, err := testNormalizer().ParseWorkbook(strings.NewReader("definitely not a zip archive"))
	assert.Error(t, err)
}

func TestParseDate_Layouts(t *testing.T) {
	tests := []struct {
		value string
		year  int
	}{
		{"2025-03-03", 2025},
		{"2025-03-03 10:30:00", 2025},
		{"02/01/2006", 2006},
		{"45000", 2023}, // Excel serial
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			parsed, err := parseDate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.year, parsed.Year())
		})
	}

	_, err := parseDate("mañana")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"100", 100, true},
		{"1,500.50", 1500.50, true},
		{"$200", 200, true},
		{" $1,000 ", 1000, true},
		{"N/A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseAmount(tt.value)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "TIPO DE ORDEN", NormalizeHeader("  tipo  de   Orden "))
	assert.Equal(t, "", NormalizeHeader("   "))
}
