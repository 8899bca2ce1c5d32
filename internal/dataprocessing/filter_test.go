package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordenescli/pkg/contracts/domain"
)

func orderAt(id, orderType, vendor, status string, date *time.Time, amount *float64) domain.Order {
	return domain.Order{
		OrderID:      id,
		OrderType:    orderType,
		Vendor:       vendor,
		UserStatus:   status,
		CreationDate: date,
		Amount:       amount,
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func amountPtr(v float64) *float64 { return &v }

func filterFixture() *domain.Dataset {
	return &domain.Dataset{
		Columns: domain.ColumnSet{
			OrderID:      true,
			OrderType:    true,
			CreationDate: true,
			Vendor:       true,
			UserStatus:   true,
			Amount:       true,
		},
		Orders: []domain.Order{
			orderAt("1", "CORRECTIVO", "ACME", "ABIERTA", datePtr(2025, time.March, 3), amountPtr(100)),
			orderAt("2", "CORRECTIVO", "ACME", "CERRADA", datePtr(2025, time.April, 9), amountPtr(50)),
			orderAt("3", "PREVENTIVO", "BETA", "ABIERTA", datePtr(2024, time.July, 1), nil),
			orderAt("4", "CORRECTIVO", "BETA", "ABIERTA", nil, amountPtr(25)),
		},
	}
}

func TestApplyFilters_EmptySelectionIsIdentity(t *testing.T) {
	ds := filterFixture()
	out := ApplyFilters(ds, domain.Selection{})
	assert.Len(t, out, len(ds.Orders))
}

func TestApplyFilters_Selectors(t *testing.T) {
	ds := filterFixture()

	tests := []struct {
		name string
		sel  domain.Selection
		want []string
	}{
		{
			name: "order type",
			sel:  domain.Selection{Types: []string{"PREVENTIVO"}},
			want: []string{"3"},
		},
		{
			name: "year excludes absent dates",
			sel:  domain.Selection{Year: 2025},
			want: []string{"1", "2"},
		},
		{
			name: "months only apply within the year",
			sel:  domain.Selection{Year: 2025, Months: []int{3}},
			want: []string{"1"},
		},
		{
			name: "vendor multi-select",
			sel:  domain.Selection{Vendors: []string{"BETA"}},
			want: []string{"3", "4"},
		},
		{
			name: "status",
			sel:  domain.Selection{Statuses: []string{"CERRADA"}},
			want: []string{"2"},
		},
		{
			name: "combined",
			sel: domain.Selection{
				Types:    []string{"CORRECTIVO"},
				Year:     2025,
				Vendors:  []string{"ACME"},
				Statuses: []string{"ABIERTA"},
			},
			want: []string{"1"},
		},
		{
			name: "no match",
			sel:  domain.Selection{Vendors: []string{"GAMMA"}},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyFilters(ds, tt.sel)
			ids := make([]string, 0, len(out))
			for _, o := range out {
				ids = append(ids, o.OrderID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestApplyFilters_AbsentColumnDisablesFilter(t *testing.T) {
	ds := filterFixture()
	ds.Columns.OrderType = false

	// With the column gone the type selector is inert.
	out := ApplyFilters(ds, domain.Selection{Types: []string{"PREVENTIVO"}})
	assert.Len(t, out, len(ds.Orders))
}

func TestApplyFilters_Idempotent(t *testing.T) {
	ds := filterFixture()
	sel := domain.Selection{Types: []string{"CORRECTIVO"}, Year: 2025}

	once := ApplyFilters(ds, sel)
	again := ApplyFilters(&domain.Dataset{Columns: ds.Columns, Orders: once}, sel)
	assert.Equal(t, once, again)
}

func TestApplyFilters_Commutative(t *testing.T) {
	ds := filterFixture()
	byType := domain.Selection{Types: []string{"CORRECTIVO"}}
	byPeriod := domain.Selection{Year: 2025, Months: []int{3, 4}}

	typeFirst := ApplyFilters(&domain.Dataset{Columns: ds.Columns,
		Orders: ApplyFilters(ds, byType)}, byPeriod)
	periodFirst := ApplyFilters(&domain.Dataset{Columns: ds.Columns,
		Orders: ApplyFilters(ds, byPeriod)}, byType)

	assert.Equal(t, typeFirst, periodFirst)
	require.Len(t, typeFirst, 2)
}

func TestVendorDetail(t *testing.T) {
	orders := filterFixture().Orders

	detail := VendorDetail(orders, "BETA", nil)
	require.Len(t, detail, 2)

	detail = VendorDetail(orders, "BETA", []string{"ABIERTA"})
	require.Len(t, detail, 2)

	detail = VendorDetail(orders, "ACME", []string{"CERRADA"})
	require.Len(t, detail, 1)
	assert.Equal(t, "2", detail[0].OrderID)

	assert.Nil(t, VendorDetail(orders, "", nil))
	assert.Empty(t, VendorDetail(orders, "GAMMA", nil))
}
