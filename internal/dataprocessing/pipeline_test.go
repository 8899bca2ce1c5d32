package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordenescli/pkg/contracts/domain"
)

// TestPipeline_FilterAggregateKPI runs the full in-memory pipeline on a small
// well-known table and cross-checks every stage against the others.
func TestPipeline_FilterAggregateKPI(t *testing.T) {
	ds := &domain.Dataset{
		Columns: domain.ColumnSet{
			OrderID: true, OrderType: true, CreationDate: true,
			Vendor: true, UserStatus: true, Amount: true,
		},
		Orders: []domain.Order{
			orderAt("1", "CORRECTIVO", "A", "ABIERTA", datePtr(2025, time.March, 5), amountPtr(100)),
			orderAt("2", "CORRECTIVO", "A", "CERRADA", datePtr(2025, time.March, 10), amountPtr(50)),
			orderAt("3", "PREVENTIVO", "B", "ABIERTA", datePtr(2025, time.March, 12), amountPtr(30)),
		},
	}

	subset := ApplyFilters(ds, domain.Selection{
		Types:  []string{"CORRECTIVO"},
		Year:   2025,
		Months: []int{3},
	})
	require.Len(t, subset, 2)

	counts, err := BuildSummary(subset, AggregateCount)
	require.NoError(t, err)
	amounts, err := BuildSummary(subset, AggregateAmount)
	require.NoError(t, err)
	kpis := ComputeKPIs(subset)

	assert.Equal(t, float64(1), counts.Cell("A", "ABIERTA"))
	assert.Equal(t, float64(1), counts.Cell("A", "CERRADA"))
	assert.Equal(t, float64(2), counts.Cell("A", domain.TotalOrdersColumn))
	assert.Equal(t, float64(2), counts.Cell(domain.TotalVendorLabel, domain.TotalOrdersColumn))

	assert.Equal(t, 2, kpis.TotalOrders)
	assert.InDelta(t, 150, kpis.TotalAmount, 1e-9)
	assert.Equal(t, "A", kpis.TopVendor)
	assert.InDelta(t, 2.0, kpis.AvgOrdersPerVendor, 1e-9)

	// The pivot totals and the KPIs describe the same subset.
	assert.InDelta(t, float64(kpis.TotalOrders), counts.TotalRow().Total, 1e-9)
	assert.InDelta(t, kpis.TotalAmount, amounts.TotalRow().Total, 0.01)
}
