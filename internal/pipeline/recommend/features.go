package recommend

import (
	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/model"
)

// FeatureColumns is the feature contract shared by the action classifier
// and the discount regressor: the numeric feature set plus the encoded
// risk level appended last.
var FeatureColumns = []string{
	dataset.ColStockQuantity,
	dataset.ColReorderLevel,
	dataset.ColReorderQuantity,
	dataset.ColUnitPrice,
	dataset.ColSalesVolume,
	dataset.ColTurnoverRate,
	dataset.ColDaysUntilExpiry,
	dataset.ColStockAge,
	dataset.ColStockValue,
	dataset.ColShelfLife,
	dataset.ColRemainingShelfRatio,
	dataset.ColForecastedDemand,
}

func riskLabelEncoder() *model.LabelEncoder {
	return model.NewLabelEncoder([]string{
		string(domain.RiskExpired),
		string(domain.RiskHigh),
		string(domain.RiskLow),
	})
}

func actionLabelEncoder() *model.LabelEncoder {
	classes := make([]string, 0, 5)
	for _, a := range domain.Actions() {
		classes = append(classes, string(a))
	}
	return model.NewLabelEncoder(classes)
}

// featureVector builds one row of the training/inference matrix. Unknown
// risk levels encode past the known codes rather than failing.
func featureVector(it *domain.InventoryItem, risks *model.LabelEncoder) []float64 {
	x := make([]float64, 0, len(FeatureColumns)+1)
	for _, name := range FeatureColumns {
		v, _ := model.NumericFeature(it, name)
		x = append(x, v)
	}

	code, err := risks.Encode(string(it.RiskLevel))
	if err != nil {
		code = len(risks.Classes)
	}
	x = append(x, float64(code))
	return x
}
