package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ordenescli/pkg/contracts/domain"
)

// Sheet names in the exported workbook.
const (
	SheetCount        = "Ordenes"
	SheetAmount       = "Importes"
	SheetDetail       = "Detalle"
	SheetVendorDetail = "Detalle_Proveedor"
)

// WorkbookOptions controls the optional detail sheets.
type WorkbookOptions struct {
	DetailOrders []domain.Order
	VendorLabel  string
	VendorOrders []domain.Order
}

// Workbook writes the report result as an .xlsx workbook. The count and
// amount summaries always go out; detail sheets are added when the options
// carry rows for them.
func Workbook(w io.Writer, res *domain.ReportResult, opts WorkbookOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, SheetCount, res.CountTable, true); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetCount, err)
	}
	if err := writeSummarySheet(f, SheetAmount, res.AmountTable, false); err != nil {
		return fmt.Errorf("write %s sheet: %w", SheetAmount, err)
	}

	if len(opts.DetailOrders) > 0 {
		if err := writeDetailSheet(f, SheetDetail, opts.DetailOrders); err != nil {
			return fmt.Errorf("write %s sheet: %w", SheetDetail, err)
		}
	}
	if len(opts.VendorOrders) > 0 {
		if err := writeDetailSheet(f, SheetVendorDetail, opts.VendorOrders); err != nil {
			return fmt.Errorf("write %s sheet: %w", SheetVendorDetail, err)
		}
	}

	// Drop the default sheet excelize creates
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(SheetCount); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeSummarySheet lays out one pivot table: header row with the vendor
// column, status columns and the total column, followed by vendor rows and
// the TOTAL GENERAL row last.
func writeSummarySheet(f *excelize.File, sheet string, table domain.SummaryTable, asInt bool) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(table.Columns)+1)
	header = append(header, domain.ColumnVendor)
	for _, c := range table.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		out := make([]interface{}, 0, len(row.Cells)+2)
		out = append(out, row.Vendor)
		for _, c := range row.Cells {
			out = append(out, cellValue(c, asInt))
		}
		out = append(out, cellValue(row.Total, asInt))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &out); err != nil {
			return err
		}
	}
	return nil
}

// writeDetailSheet lays out raw order rows with the canonical columns.
func writeDetailSheet(f *excelize.File, sheet string, orders []domain.Order) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(domain.CanonicalColumns))
	for _, c := range domain.CanonicalColumns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, o := range orders {
		row := []interface{}{
			o.OrderID,
			o.OrderType,
			formatDate(o),
			o.Vendor,
			o.UserStatus,
			formatAmount(o),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(v float64, asInt bool) interface{} {
	if asInt {
		return int64(v)
	}
	return v
}

func formatDate(o domain.Order) interface{} {
	if o.CreationDate == nil {
		return ""
	}
	return o.CreationDate.Format("2006-01-02")
}

func formatAmount(o domain.Order) interface{} {
	if o.Amount == nil {
		return ""
	}
	return *o.Amount
}
