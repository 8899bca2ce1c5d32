package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ordenescli/pkg/contracts/domain"
)

func TestComputeKPIs(t *testing.T) {
	kpis := ComputeKPIs(aggregatorFixture())

	assert.Equal(t, 3, kpis.TotalOrders)
	assert.InDelta(t, 150.25, kpis.TotalAmount, 1e-9)
	assert.Equal(t, "ACME", kpis.TopVendor)
	assert.InDelta(t, 1.5, kpis.AvgOrdersPerVendor, 1e-9)
}

func TestComputeKPIs_Empty(t *testing.T) {
	kpis := ComputeKPIs(nil)

	assert.Zero(t, kpis.TotalOrders)
	assert.Zero(t, kpis.TotalAmount)
	assert.Equal(t, "-", kpis.TopVendor)
	assert.Zero(t, kpis.AvgOrdersPerVendor)
}

func TestComputeKPIs_TopVendorTie(t *testing.T) {
	orders := []domain.Order{
		orderAt("1", "CORRECTIVO", "ZETA", "ABIERTA", datePtr(2025, time.January, 1), amountPtr(5)),
		orderAt("2", "CORRECTIVO", "ALFA", "ABIERTA", datePtr(2025, time.January, 2), amountPtr(5)),
	}

	// Ties resolve to the vendor encountered first.
	kpis := ComputeKPIs(orders)
	assert.Equal(t, "ZETA", kpis.TopVendor)
}

func TestComputeKPIs_AbsentAmountsCountAsZero(t *testing.T) {
	orders := []domain.Order{
		orderAt("1", "CORRECTIVO", "ACME", "ABIERTA", nil, nil),
		orderAt("2", "CORRECTIVO", "ACME", "ABIERTA", nil, amountPtr(40)),
	}

	kpis := ComputeKPIs(orders)
	assert.Equal(t, 2, kpis.TotalOrders)
	assert.InDelta(t, 40, kpis.TotalAmount, 1e-9)
	assert.InDelta(t, 2, kpis.AvgOrdersPerVendor, 1e-9)
}
