package dataprocessing

import (
	"ordenescli/pkg/contracts/domain"
)

// ComputeKPIs derives the four scalar indicators from a filtered subset.
// Absent amounts contribute zero; TopVendor is a stable argmax (ties go to
// the vendor encountered first) and falls back to "-" for an empty subset.
func ComputeKPIs(orders []domain.Order) domain.KPISet {
	kpis := domain.KPISet{
		TotalOrders: len(orders),
		TopVendor:   "-",
	}

	counts := make(map[string]int)
	var vendorOrder []string
	for _, o := range orders {
		kpis.TotalAmount += o.AmountOrZero()
		if _, seen := counts[o.Vendor]; !seen {
			vendorOrder = append(vendorOrder, o.Vendor)
		}
		counts[o.Vendor]++
	}

	best := 0
	for _, v := range vendorOrder {
		if counts[v] > best {
			best = counts[v]
			kpis.TopVendor = v
		}
	}

	if len(vendorOrder) > 0 {
		kpis.AvgOrdersPerVendor = float64(kpis.TotalOrders) / float64(len(vendorOrder))
	}
	return kpis
}
