package model

import (
	"fmt"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

// ExpiryFeatureColumns is the numeric feature contract of the expiry
// classifier, in training order. Category joins these as one-hot columns.
var ExpiryFeatureColumns = []string{
	dataset.ColShelfLife,
	dataset.ColStockQuantity,
	dataset.ColStockValue,
	dataset.ColSalesVolume,
	dataset.ColTurnoverRate,
	dataset.ColUnitPrice,
	dataset.ColDaysUntilExpiry,
	dataset.ColRemainingShelfRatio,
	dataset.ColStockAge,
}

// ExpiryModel is the trained expiry classifier together with its feature
// and label contracts. The artifact is immutable once loaded.
type ExpiryModel struct {
	Encoder         *OneHotEncoder  `json:"encoder"`
	NumericFeatures []string        `json:"numeric_features"`
	Labels          *LabelEncoder   `json:"labels"`
	Tree            *TreeClassifier `json:"tree"`
}

// TrainExpiryModel fits the expiry classifier on items that carry an
// Expiry_Class label. Items without a label are ignored.
func TrainExpiryModel(items []domain.InventoryItem) (*ExpiryModel, error) {
	labels := expiryLabelEncoder()

	var labeled []domain.InventoryItem
	for _, it := range items {
		if it.ExpiryClass != "" {
			labeled = append(labeled, it)
		}
	}
	if len(labeled) == 0 {
		return nil, fmt.Errorf("no rows with %s labels to train on", dataset.ColExpiryClass)
	}

	encoder := NewOneHotEncoder(dataset.ColCategory)
	rows := make([]map[string]string, len(labeled))
	for i, it := range labeled {
		rows[i] = map[string]string{dataset.ColCategory: it.Category}
	}
	encoder.Fit(rows)

	m := &ExpiryModel{
		Encoder:         encoder,
		NumericFeatures: append([]string(nil), ExpiryFeatureColumns...),
		Labels:          labels,
	}

	X := make([][]float64, len(labeled))
	y := make([]int, len(labeled))
	for i, it := range labeled {
		X[i] = m.featureVector(&it)
		code, err := labels.Encode(string(it.ExpiryClass))
		if err != nil {
			return nil, err
		}
		y[i] = code
	}

	m.Tree = FitClassifier(X, y, len(labels.Classes))
	return m, nil
}

// LoadExpiryModel reads the expiry model artifact from disk.
func LoadExpiryModel(path string) (*ExpiryModel, error) {
	var m ExpiryModel
	if err := LoadArtifact(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Predict returns an expiry class per item. Categories unseen at training
// time encode to all-zero indicators and still yield a prediction.
func (m *ExpiryModel) Predict(items []domain.InventoryItem) []domain.ExpiryClass {
	out := make([]domain.ExpiryClass, len(items))
	for i := range items {
		code := m.Tree.Predict(m.featureVector(&items[i]))
		out[i] = domain.ExpiryClass(m.Labels.Decode(code))
	}
	return out
}

func (m *ExpiryModel) featureVector(it *domain.InventoryItem) []float64 {
	x := m.Encoder.Transform(map[string]string{dataset.ColCategory: it.Category})
	for _, name := range m.NumericFeatures {
		v, _ := NumericFeature(it, name)
		x = append(x, v)
	}
	return x
}

func expiryLabelEncoder() *LabelEncoder {
	classes := make([]string, 0, 3)
	for _, c := range domain.ExpiryClasses() {
		classes = append(classes, string(c))
	}
	return NewLabelEncoder(classes)
}
