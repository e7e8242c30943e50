package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/expirywise/backend-go/internal/domain"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestBootstrapAction(t *testing.T) {
	tests := []struct {
		name string
		item domain.InventoryItem
		want domain.Action
	}{
		{
			name: "expired disposes",
			item: domain.InventoryItem{RiskLevel: domain.RiskExpired},
			want: domain.ActionDispose,
		},
		{
			name: "high risk discounts",
			item: domain.InventoryItem{RiskLevel: domain.RiskHigh},
			want: domain.ActionDiscount,
		},
		{
			name: "slow old stock bundles",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 5,
				StockAge:              intPtr(200),
			},
			want: domain.ActionBundle,
		},
		{
			name: "slow but fresh stock does not bundle",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 5,
				StockAge:              intPtr(100),
			},
			want: domain.ActionMonitor,
		},
		{
			name: "remote warehouse relocates",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 15,
				WarehouseLocation:     "5F-12",
			},
			want: domain.ActionRelocate,
		},
		{
			name: "warehouse nine relocates",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 15,
				WarehouseLocation:     "9A",
			},
			want: domain.ActionRelocate,
		},
		{
			name: "bundle beats relocate",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 5,
				StockAge:              intPtr(200),
				WarehouseLocation:     "5F-12",
			},
			want: domain.ActionBundle,
		},
		{
			name: "healthy stock monitors",
			item: domain.InventoryItem{
				RiskLevel:             domain.RiskLow,
				InventoryTurnoverRate: 15,
				WarehouseLocation:     "1A",
			},
			want: domain.ActionMonitor,
		},
		{
			name: "unknown risk level monitors",
			item: domain.InventoryItem{RiskLevel: domain.RiskLevel("Medium")},
			want: domain.ActionMonitor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BootstrapAction(&tt.item))
		})
	}
}

func TestBootstrapDiscount(t *testing.T) {
	t.Run("zero for non-discount actions", func(t *testing.T) {
		it := domain.InventoryItem{RiskLevel: domain.RiskExpired, StockQuantity: 100}
		for _, action := range []domain.Action{domain.ActionDispose, domain.ActionBundle, domain.ActionRelocate, domain.ActionMonitor} {
			assert.Equal(t, 0.0, BootstrapDiscount(&it, action))
		}
	})

	t.Run("urgency and overstock combine", func(t *testing.T) {
		it := domain.InventoryItem{
			RiskLevel:        domain.RiskHigh,
			StockQuantity:    100,
			DaysUntilExpiry:  intPtr(10),
			ForecastedDemand: floatPtr(40),
		}
		// urgency (30-10)/30, overstock (100-40)/100.
		want := 5 + (20.0/30.0)*25 + 0.6*20
		assert.InDelta(t, want, BootstrapDiscount(&it, domain.ActionDiscount), 1e-9)
	})

	t.Run("floor at five", func(t *testing.T) {
		it := domain.InventoryItem{
			StockQuantity:    10,
			DaysUntilExpiry:  intPtr(365),
			ForecastedDemand: floatPtr(500),
		}
		assert.Equal(t, 5.0, BootstrapDiscount(&it, domain.ActionDiscount))
	})

	t.Run("cap at fifty", func(t *testing.T) {
		it := domain.InventoryItem{
			StockQuantity:   1000,
			DaysUntilExpiry: intPtr(0),
		}
		assert.Equal(t, 50.0, BootstrapDiscount(&it, domain.ActionDiscount))
	})

	t.Run("bounds hold across inputs", func(t *testing.T) {
		items := []domain.InventoryItem{
			{StockQuantity: 0},
			{StockQuantity: 1, DaysUntilExpiry: intPtr(-400)},
			{StockQuantity: 1e6, ForecastedDemand: floatPtr(0)},
			{StockQuantity: 3, DaysUntilExpiry: intPtr(29), ForecastedDemand: floatPtr(2.5)},
		}
		for _, it := range items {
			d := BootstrapDiscount(&it, domain.ActionDiscount)
			assert.GreaterOrEqual(t, d, 5.0)
			assert.LessOrEqual(t, d, 50.0)
		}
	})
}
