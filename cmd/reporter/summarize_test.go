package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ordenescli/pkg/contracts/domain"
)

func writeFixtureWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"ORDEN", "TIPO DE ORDEN", "FECHA DE CREACIÓN", "PROVEEDOR", "ESTATUS DE USUARIO", "IMPORTE"},
		{"1", "CORRECTIVO", "2025-03-03", "ACME", "ABIERTA", "100"},
		{"2", "CORRECTIVO", "2025-03-09", "ACME", "CERRADA", "50.25"},
		{"3", "PREVENTIVO", "2024-07-01", "BETA", "ABIERTA", "N/A"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "ordenes.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestRunSummarize(t *testing.T) {
	path := writeFixtureWorkbook(t)

	var out bytes.Buffer
	sel := domain.Selection{Types: []string{"CORRECTIVO"}, Year: 2025}
	require.NoError(t, runSummarize(&out, path, sel, "", "count"))

	text := out.String()
	assert.Contains(t, text, "Ordenes: 2 de 3")
	assert.Contains(t, text, "Importe total: 150.25")
	assert.Contains(t, text, "Proveedor principal: ACME")
	assert.Contains(t, text, domain.TotalVendorLabel)
}

func TestRunSummarize_NoMatch(t *testing.T) {
	path := writeFixtureWorkbook(t)

	var out bytes.Buffer
	err := runSummarize(&out, path, domain.Selection{Vendors: []string{"GAMMA"}}, "", "count")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows match")
}

func TestRunSummarize_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := runSummarize(&out, filepath.Join(t.TempDir(), "missing.xlsx"), domain.Selection{}, "", "count")
	assert.Error(t, err)
}

func TestRunSummarize_WorkbookOutput(t *testing.T) {
	path := writeFixtureWorkbook(t)
	outPath := filepath.Join(t.TempDir(), "resumen.xlsx")

	var out bytes.Buffer
	require.NoError(t, runSummarize(&out, path, domain.Selection{}, outPath, "count"))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Ordenes")
	assert.Contains(t, f.GetSheetList(), "Importes")
	assert.Contains(t, f.GetSheetList(), "Detalle")
}

func TestRunSummarize_CSVOutput(t *testing.T) {
	path := writeFixtureWorkbook(t)
	outPath := filepath.Join(t.TempDir(), "resumen.csv")

	var out bytes.Buffer
	require.NoError(t, runSummarize(&out, path, domain.Selection{}, outPath, "amount"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), domain.TotalVendorLabel)
	assert.Contains(t, string(data), "150.25")
}
