package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ordenescli/internal/errors"
	"ordenescli/pkg/contracts/domain"
)

// dateLayouts are the textual date formats accepted in the creation-date
// column. Excel serial numbers are handled separately.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01-02-06",
	"1/2/06 15:04",
	"02.01.2006",
	time.RFC3339,
}

// columnAliases maps accepted header spellings to canonical labels, keyed by
// the normalized (trimmed, upper-cased, space-collapsed) form.
var columnAliases = map[string]string{
	"ORDEN":              domain.ColumnOrderID,
	"TIPO DE ORDEN":      domain.ColumnOrderType,
	"FECHA DE CREACIÓN":  domain.ColumnCreationDate,
	"FECHA DE CREACION":  domain.ColumnCreationDate,
	"PROVEEDOR":          domain.ColumnVendor,
	"ESTATUS DE USUARIO": domain.ColumnUserStatus,
	"IMPORTE":            domain.ColumnAmount,
}

// Normalizer turns a raw uploaded workbook into a typed Dataset. Header
// labels are trimmed and upper-cased before matching; date and amount cells
// are coerced with per-cell failures becoming absent values.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a workbook normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// ParseWorkbook reads the first data sheet of an .xlsx stream and returns
// the normalized dataset. An unreadable workbook or a workbook without a
// header row is the only fatal condition; every per-cell or per-column
// problem degrades into an absent value or a warning.
func (n *Normalizer) ParseWorkbook(r io.Reader) (*domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	rows, sheet, err := n.firstDataSheet(f)
	if err != nil {
		return nil, err
	}

	header := rows[0]
	columnMap := make(map[string]int)
	extraCols := make(map[int]string)
	for j, label := range header {
		norm := NormalizeHeader(label)
		if norm == "" {
			continue
		}
		if canonical, ok := columnAliases[norm]; ok {
			if _, seen := columnMap[canonical]; !seen {
				columnMap[canonical] = j
			}
			continue
		}
		// Unrecognized columns pass through untouched.
		extraCols[j] = norm
	}

	ds := &domain.Dataset{
		Columns: domain.ColumnSet{
			OrderID:      hasColumn(columnMap, domain.ColumnOrderID),
			OrderType:    hasColumn(columnMap, domain.ColumnOrderType),
			CreationDate: hasColumn(columnMap, domain.ColumnCreationDate),
			Vendor:       hasColumn(columnMap, domain.ColumnVendor),
			UserStatus:   hasColumn(columnMap, domain.ColumnUserStatus),
			Amount:       hasColumn(columnMap, domain.ColumnAmount),
		},
	}
	ds.Warnings = missingColumnWarnings(ds.Columns)

	getCell := func(row []string, canonical string) (string, bool) {
		idx, ok := columnMap[canonical]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		order := domain.Order{}
		if v, ok := getCell(row, domain.ColumnOrderID); ok {
			order.OrderID = v
		}
		if v, ok := getCell(row, domain.ColumnOrderType); ok {
			order.OrderType = strings.ToUpper(v)
		}
		if v, ok := getCell(row, domain.ColumnVendor); ok {
			order.Vendor = v
		}
		if v, ok := getCell(row, domain.ColumnUserStatus); ok {
			order.UserStatus = strings.ToUpper(v)
		}
		if v, ok := getCell(row, domain.ColumnCreationDate); ok && v != "" {
			if t, perr := parseDate(v); perr == nil {
				order.CreationDate = &t
			} else {
				n.logger.Debug("unparsable creation date",
					slog.Int("row", i+1),
					slog.String("value", v))
			}
		}
		if v, ok := getCell(row, domain.ColumnAmount); ok && v != "" {
			if amt, perr := parseAmount(v); perr == nil {
				order.Amount = &amt
			} else {
				n.logger.Debug("unparsable amount",
					slog.Int("row", i+1),
					slog.String("value", v))
			}
		}
		for j, name := range extraCols {
			if j < len(row) && strings.TrimSpace(row[j]) != "" {
				if order.Extra == nil {
					order.Extra = make(map[string]string)
				}
				order.Extra[name] = strings.TrimSpace(row[j])
			}
		}

		ds.Orders = append(ds.Orders, order)
	}

	n.logger.Info("workbook parsed",
		slog.String("sheet", sheet),
		slog.Int("rows", len(ds.Orders)),
		slog.Int("warnings", len(ds.Warnings)))

	return ds, nil
}

// firstDataSheet finds the first sheet with at least a header row.
func (n *Normalizer) firstDataSheet(f *excelize.File) ([][]string, string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(rows) >= 1 && !isEmptyRow(rows[0]) {
			return rows, name, nil
		}
	}
	return nil, "", errors.NewParsingError("workbook contains no data sheet", nil)
}

// NormalizeHeader trims surrounding whitespace, collapses interior runs and
// upper-cases a column label.
func NormalizeHeader(label string) string {
	return strings.ToUpper(strings.Join(strings.Fields(label), " "))
}

func hasColumn(columnMap map[string]int, canonical string) bool {
	_, ok := columnMap[canonical]
	return ok
}

func missingColumnWarnings(cols domain.ColumnSet) []string {
	var warnings []string
	add := func(present bool, label, feature string) {
		if !present {
			warnings = append(warnings,
				fmt.Sprintf("column %q not found: %s disabled", label, feature))
		}
	}
	add(cols.OrderType, domain.ColumnOrderType, "order-type filter")
	add(cols.CreationDate, domain.ColumnCreationDate, "period filter")
	add(cols.Vendor, domain.ColumnVendor, "vendor breakdown")
	add(cols.UserStatus, domain.ColumnUserStatus, "status breakdown")
	add(cols.Amount, domain.ColumnAmount, "amount summary")
	return warnings
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts the textual layouts above plus raw Excel serials.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseAmount tolerates thousands separators and currency prefixes.
func parseAmount(value string) (float64, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	return strconv.ParseFloat(cleaned, 64)
}
