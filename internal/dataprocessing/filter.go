package dataprocessing

import (
	"ordenescli/pkg/contracts/domain"
)

// ApplyFilters returns the subset of dataset rows matching every selector in
// the selection. Each filter is independent and a no-op when its selector is
// empty or its source column is absent, so applying the same selection twice
// (or reordering the filters) yields the same subset.
func ApplyFilters(ds *domain.Dataset, sel domain.Selection) []domain.Order {
	out := make([]domain.Order, 0, len(ds.Orders))
	for _, o := range ds.Orders {
		if matches(ds.Columns, o, sel) {
			out = append(out, o)
		}
	}
	return out
}

func matches(cols domain.ColumnSet, o domain.Order, sel domain.Selection) bool {
	if cols.OrderType && len(sel.Types) > 0 && !containsString(sel.Types, o.OrderType) {
		return false
	}
	if cols.CreationDate && sel.Year != 0 {
		// Rows with an absent date are excluded once the period filter is
		// active.
		if o.CreationDate == nil {
			return false
		}
		if o.CreationDate.Year() != sel.Year {
			return false
		}
		if len(sel.Months) > 0 && !containsInt(sel.Months, int(o.CreationDate.Month())) {
			return false
		}
	}
	if cols.Vendor && len(sel.Vendors) > 0 && !containsString(sel.Vendors, o.Vendor) {
		return false
	}
	if cols.UserStatus && len(sel.Statuses) > 0 && !containsString(sel.Statuses, o.UserStatus) {
		return false
	}
	return true
}

// VendorDetail narrows an already-filtered subset to a single vendor, with
// an optional status multi-select of its own.
func VendorDetail(orders []domain.Order, vendor string, statuses []string) []domain.Order {
	if vendor == "" {
		return nil
	}
	out := make([]domain.Order, 0)
	for _, o := range orders {
		if o.Vendor != vendor {
			continue
		}
		if len(statuses) > 0 && !containsString(statuses, o.UserStatus) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
