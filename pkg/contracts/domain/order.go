package domain

import (
	"time"
)

// Canonical column labels recognized in uploaded workbooks. Header matching
// is case-insensitive and whitespace-insensitive against these names.
const (
	ColumnOrderID      = "ORDEN"
	ColumnOrderType    = "TIPO DE ORDEN"
	ColumnCreationDate = "FECHA DE CREACIÓN"
	ColumnVendor       = "PROVEEDOR"
	ColumnUserStatus   = "ESTATUS DE USUARIO"
	ColumnAmount       = "IMPORTE"
)

// CanonicalColumns lists every recognized column label.
var CanonicalColumns = []string{
	ColumnOrderID,
	ColumnOrderType,
	ColumnCreationDate,
	ColumnVendor,
	ColumnUserStatus,
	ColumnAmount,
}

// TotalVendorLabel is the synthetic grand-total row appended to summaries.
const TotalVendorLabel = "TOTAL GENERAL"

// Total column labels for the two summary variants.
const (
	TotalOrdersColumn = "TOTAL_ORDENES"
	TotalAmountColumn = "IMPORTE_TOTAL"
)

// Order represents one row of an uploaded maintenance-orders table.
// CreationDate and Amount are optional: a cell that fails coercion leaves
// the field absent rather than failing the upload.
type Order struct {
	OrderID      string                 `json:"order_id"`
	OrderType    string                 `json:"order_type,omitempty"`
	CreationDate *time.Time             `json:"creation_date,omitempty"`
	Vendor       string                 `json:"vendor,omitempty"`
	UserStatus   string                 `json:"user_status,omitempty"`
	Amount       *float64               `json:"amount,omitempty"`
	Extra        map[string]string      `json:"extra,omitempty"`
}

// AmountOrZero returns the order amount, treating an absent amount as zero.
func (o Order) AmountOrZero() float64 {
	if o.Amount == nil {
		return 0
	}
	return *o.Amount
}

// Dataset is a normalized uploaded table plus the set of canonical columns
// actually present. A missing canonical column disables only the features
// that depend on it; the disabling is surfaced through Warnings.
type Dataset struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Orders     []Order   `json:"orders"`
	Columns    ColumnSet `json:"columns"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// ColumnSet records which canonical columns exist in the source table.
type ColumnSet struct {
	OrderID      bool `json:"order_id"`
	OrderType    bool `json:"order_type"`
	CreationDate bool `json:"creation_date"`
	Vendor       bool `json:"vendor"`
	UserStatus   bool `json:"user_status"`
	Amount       bool `json:"amount"`
}

// Selection holds the filter selectors a user has chosen. An empty selector
// is the identity for its filter. Year 0 means no period filter.
type Selection struct {
	Types    []string `json:"types,omitempty"`
	Year     int      `json:"year,omitempty" validate:"gte=0"`
	Months   []int    `json:"months,omitempty" validate:"dive,gte=1,lte=12"`
	Vendors  []string `json:"vendors,omitempty"`
	Statuses []string `json:"statuses,omitempty"`

	// Extended detail view selectors.
	DetailVendor   string   `json:"detail_vendor,omitempty"`
	DetailStatuses []string `json:"detail_statuses,omitempty"`
}

// IsZero reports whether no selector is set at all.
func (s Selection) IsZero() bool {
	return len(s.Types) == 0 && s.Year == 0 && len(s.Months) == 0 &&
		len(s.Vendors) == 0 && len(s.Statuses) == 0
}

// SummaryTable is a two-dimensional pivot: one row per vendor plus the
// TOTAL GENERAL row (always last), one column per status plus the total
// column (always last in Columns).
type SummaryTable struct {
	// Columns holds the status labels in display order; the final entry is
	// the total column label.
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// SummaryRow is one vendor row of a summary table. Cells align with
// SummaryTable.Columns.
type SummaryRow struct {
	Vendor string    `json:"vendor"`
	Cells  []float64 `json:"cells"`
	Total  float64   `json:"total"`
	// Pinned marks the synthetic grand-total row, which stays last
	// regardless of sorting.
	Pinned bool `json:"pinned,omitempty"`
}

// Cell returns the value for a status column, zero when the column is not
// present in the table.
func (t *SummaryTable) Cell(vendor, column string) float64 {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}
	for _, row := range t.Rows {
		if row.Vendor == vendor {
			if idx < len(row.Cells) {
				return row.Cells[idx]
			}
			// The total column sits after the status cells.
			return row.Total
		}
	}
	return 0
}

// TotalRow returns the pinned TOTAL GENERAL row, or nil when absent.
func (t *SummaryTable) TotalRow() *SummaryRow {
	for i := range t.Rows {
		if t.Rows[i].Pinned {
			return &t.Rows[i]
		}
	}
	return nil
}

// KPISet holds the four scalar indicators derived from a filtered table.
type KPISet struct {
	TotalOrders        int     `json:"total_orders"`
	TotalAmount        float64 `json:"total_amount"`
	TopVendor          string  `json:"top_vendor"`
	AvgOrdersPerVendor float64 `json:"avg_orders_per_vendor"`
}

// ReportResult is the output of one full pipeline run over a dataset:
// KPIs plus the count and amount summaries for the current selection.
type ReportResult struct {
	DatasetID   string       `json:"dataset_id"`
	Selection   Selection    `json:"selection"`
	KPIs        KPISet       `json:"kpis"`
	CountTable  SummaryTable `json:"count_table"`
	AmountTable SummaryTable `json:"amount_table"`
	RowCount    int          `json:"row_count"`
}

// FilterOptions enumerates the selector values available for a dataset,
// with the defaults the UI should preselect.
type FilterOptions struct {
	Types           []string `json:"types"`
	DefaultTypes    []string `json:"default_types"`
	Years           []int    `json:"years"`
	DefaultYear     int      `json:"default_year"`
	Months          []int    `json:"months"`
	DefaultMonths   []int    `json:"default_months"`
	Vendors         []string `json:"vendors"`
	Statuses        []string `json:"statuses"`
	Warnings        []string `json:"warnings,omitempty"`
}
