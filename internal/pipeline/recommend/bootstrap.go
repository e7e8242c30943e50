package recommend

import (
	"strings"

	"github.com/expirywise/backend-go/internal/domain"
)

// BootstrapAction assigns the rule-based action label that the learned
// classifier is trained to approximate. Priority order, first match wins;
// any risk level outside the known taxonomy defaults to Monitor.
func BootstrapAction(it *domain.InventoryItem) domain.Action {
	switch it.RiskLevel {
	case domain.RiskExpired:
		return domain.ActionDispose
	case domain.RiskHigh:
		return domain.ActionDiscount
	case domain.RiskLow:
		if it.InventoryTurnoverRate < 10 && it.StockAge != nil && *it.StockAge > 180 {
			return domain.ActionBundle
		}
		if strings.HasPrefix(it.WarehouseLocation, "5") || strings.HasPrefix(it.WarehouseLocation, "9") {
			return domain.ActionRelocate
		}
		return domain.ActionMonitor
	default:
		return domain.ActionMonitor
	}
}

// BootstrapDiscount computes the rule-based discount percentage for rows
// whose bootstrap action is Discount; everything else gets zero. The value
// combines expiry urgency with the overstock ratio and is clamped to
// [5, 50].
func BootstrapDiscount(it *domain.InventoryItem, action domain.Action) float64 {
	if action != domain.ActionDiscount {
		return 0
	}

	var daysUntilExpiry float64
	if it.DaysUntilExpiry != nil {
		daysUntilExpiry = float64(*it.DaysUntilExpiry)
	}
	urgency := maxFloat(0, 30-daysUntilExpiry) / 30

	var forecast float64
	if it.ForecastedDemand != nil {
		forecast = *it.ForecastedDemand
	}
	stockFactor := (it.StockQuantity - forecast) / maxFloat(1, it.StockQuantity)

	discount := 5 + urgency*25 + stockFactor*20
	if discount < 5 {
		discount = 5
	}
	if discount > 50 {
		discount = 50
	}
	return discount
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
