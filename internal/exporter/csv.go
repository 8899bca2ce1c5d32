package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"ordenescli/pkg/contracts/domain"
)

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding
	BOMPrefix bool
	// AsInt renders cells without decimals (count summaries)
	AsInt bool
}

// SummaryCSV writes one summary table as CSV: header row with the vendor
// column, status columns and the total column, then the table rows with
// the TOTAL GENERAL row last.
func SummaryCSV(w io.Writer, table domain.SummaryTable, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, domain.ColumnVendor)
	header = append(header, table.Columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range table.Rows {
		record := make([]string, 0, len(row.Cells)+2)
		record = append(record, row.Vendor)
		for _, c := range row.Cells {
			record = append(record, formatCell(c, opts.AsInt))
		}
		record = append(record, formatCell(row.Total, opts.AsInt))
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

func formatCell(v float64, asInt bool) string {
	if asInt {
		return formatInt(int64(v))
	}
	return formatFloat(v)
}
