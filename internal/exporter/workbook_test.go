package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ordenescli/pkg/contracts/domain"
)

func sampleResult() *domain.ReportResult {
	return &domain.ReportResult{
		DatasetID: "ds-1",
		CountTable: domain.SummaryTable{
			Columns: []string{"ABIERTA", "CERRADA", domain.TotalOrdersColumn},
			Rows: []domain.SummaryRow{
				{Vendor: "ACME", Cells: []float64{2, 1}, Total: 3},
				{Vendor: "BETA", Cells: []float64{1, 0}, Total: 1},
				{Vendor: domain.TotalVendorLabel, Cells: []float64{3, 1}, Total: 4, Pinned: true},
			},
		},
		AmountTable: domain.SummaryTable{
			Columns: []string{"ABIERTA", "CERRADA", domain.TotalAmountColumn},
			Rows: []domain.SummaryRow{
				{Vendor: "ACME", Cells: []float64{120.5, 30.25}, Total: 150.75},
				{Vendor: "BETA", Cells: []float64{10, 0}, Total: 10},
				{Vendor: domain.TotalVendorLabel, Cells: []float64{130.5, 30.25}, Total: 160.75, Pinned: true},
			},
		},
		RowCount: 4,
	}
}

func TestWorkbook_SummarySheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, sampleResult(), WorkbookOptions{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{SheetCount, SheetAmount}, f.GetSheetList())

	// Header row of the count sheet
	rows, err := f.GetRows(SheetCount)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{domain.ColumnVendor, "ABIERTA", "CERRADA", domain.TotalOrdersColumn}, rows[0])

	// Vendor rows sorted as given, total row last
	require.Len(t, rows, 4)
	assert.Equal(t, "ACME", rows[1][0])
	assert.Equal(t, domain.TotalVendorLabel, rows[3][0])
	assert.Equal(t, "4", rows[3][3])
}

func TestWorkbook_AmountValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, sampleResult(), WorkbookOptions{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetAmount, "B2")
	require.NoError(t, err)
	assert.Equal(t, "120.5", v)
}

func TestWorkbook_DetailSheets(t *testing.T) {
	created := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	amt := 99.5
	orders := []domain.Order{
		{OrderID: "1", OrderType: "CORRECTIVO", CreationDate: &created, Vendor: "ACME", UserStatus: "ABIERTA", Amount: &amt},
		{OrderID: "2", OrderType: "CORRECTIVO", Vendor: "BETA", UserStatus: "CERRADA"},
	}

	var buf bytes.Buffer
	opts := WorkbookOptions{
		DetailOrders: orders,
		VendorLabel:  "ACME",
		VendorOrders: orders[:1],
	}
	require.NoError(t, Workbook(&buf, sampleResult(), opts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), SheetDetail)
	assert.Contains(t, f.GetSheetList(), SheetVendorDetail)

	rows, err := f.GetRows(SheetDetail)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-03", rows[1][2])

	// Absent date and amount render as empty cells
	assert.Equal(t, "2", rows[2][0])
	assert.LessOrEqual(t, len(rows[2]), 6)
}
