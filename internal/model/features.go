package model

import (
	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

// NumericFeature extracts a named numeric feature from an item. Nullable
// derived features read as 0 when absent so tree traversal never sees NaN.
// The second return reports whether the name is a known feature at all.
func NumericFeature(it *domain.InventoryItem, name string) (float64, bool) {
	switch name {
	case dataset.ColStockQuantity:
		return it.StockQuantity, true
	case dataset.ColReorderLevel:
		return it.ReorderLevel, true
	case dataset.ColReorderQuantity:
		return it.ReorderQuantity, true
	case dataset.ColUnitPrice:
		return it.UnitPrice, true
	case dataset.ColSalesVolume:
		return it.SalesVolume, true
	case dataset.ColTurnoverRate:
		return it.InventoryTurnoverRate, true
	case dataset.ColDaysUntilExpiry:
		return floatOfIntPtr(it.DaysUntilExpiry), true
	case dataset.ColStockAge:
		return floatOfIntPtr(it.StockAge), true
	case dataset.ColStockValue:
		return floatOfPtr(it.StockValue), true
	case dataset.ColShelfLife:
		return floatOfIntPtr(it.ShelfLife), true
	case dataset.ColRemainingShelfRatio:
		return floatOfPtr(it.RemainingShelfLifeRatio), true
	case dataset.ColForecastedDemand:
		return floatOfPtr(it.ForecastedDemand), true
	}
	return 0, false
}

func floatOfPtr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func floatOfIntPtr(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
