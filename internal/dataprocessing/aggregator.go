package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"ordenescli/pkg/contracts/domain"
)

// Aggregation selects the cell function for a pivot summary.
type Aggregation int

const (
	// AggregateCount counts rows per (vendor, status) cell. Rows with an
	// absent amount still count.
	AggregateCount Aggregation = iota
	// AggregateAmount sums amounts per cell, treating absent amounts as
	// zero, and rounds every cell to two decimals.
	AggregateAmount
)

// BuildSummary cross-tabulates the filtered rows by (vendor, status) and
// appends the total column and the TOTAL GENERAL row. Missing combinations
// fill with zero so totals stay arithmetically consistent. Vendor rows are
// sorted descending by total (stable, so equal totals keep first-encountered
// order); the total row is computed before sorting and pinned last.
//
// Callers must not invoke BuildSummary on an empty subset; the service
// layer short-circuits to its no-data state first.
func BuildSummary(orders []domain.Order, agg Aggregation) (domain.SummaryTable, error) {
	if len(orders) == 0 {
		return domain.SummaryTable{}, fmt.Errorf("summary requested for empty subset")
	}

	statuses := distinctStatuses(orders)
	vendors := distinctVendors(orders)

	statusIdx := make(map[string]int, len(statuses))
	for i, s := range statuses {
		statusIdx[s] = i
	}

	cells := make(map[string][]float64, len(vendors))
	for _, v := range vendors {
		cells[v] = make([]float64, len(statuses))
	}
	for _, o := range orders {
		row := cells[o.Vendor]
		j := statusIdx[o.UserStatus]
		switch agg {
		case AggregateCount:
			row[j]++
		case AggregateAmount:
			row[j] += o.AmountOrZero()
		}
	}

	totalColumn := TotalOrdersColumnFor(agg)
	table := domain.SummaryTable{
		Columns: append(append([]string{}, statuses...), totalColumn),
	}

	grand := make([]float64, len(statuses))
	var grandTotal float64
	for _, v := range vendors {
		row := domain.SummaryRow{Vendor: v, Cells: cells[v]}
		for j, c := range row.Cells {
			row.Total += c
			grand[j] += c
		}
		grandTotal += row.Total
		table.Rows = append(table.Rows, row)
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Total > table.Rows[j].Total
	})

	table.Rows = append(table.Rows, domain.SummaryRow{
		Vendor: domain.TotalVendorLabel,
		Cells:  grand,
		Total:  grandTotal,
		Pinned: true,
	})

	if agg == AggregateAmount {
		roundTable(&table)
	}
	return table, nil
}

// TotalOrdersColumnFor maps an aggregation to its total-column label.
func TotalOrdersColumnFor(agg Aggregation) string {
	if agg == AggregateAmount {
		return domain.TotalAmountColumn
	}
	return domain.TotalOrdersColumn
}

// distinctStatuses returns the status values present in the subset, sorted
// for a stable column order.
func distinctStatuses(orders []domain.Order) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range orders {
		if _, ok := seen[o.UserStatus]; !ok {
			seen[o.UserStatus] = struct{}{}
			out = append(out, o.UserStatus)
		}
	}
	sort.Strings(out)
	return out
}

// distinctVendors preserves first-encountered order so the pre-sort row
// order (and therefore tie-breaking) is deterministic.
func distinctVendors(orders []domain.Order) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range orders {
		if _, ok := seen[o.Vendor]; !ok {
			seen[o.Vendor] = struct{}{}
			out = append(out, o.Vendor)
		}
	}
	return out
}

func roundTable(t *domain.SummaryTable) {
	for i := range t.Rows {
		for j := range t.Rows[i].Cells {
			t.Rows[i].Cells[j] = round2(t.Rows[i].Cells[j])
		}
		t.Rows[i].Total = round2(t.Rows[i].Total)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
