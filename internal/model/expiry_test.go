package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirywise/backend-go/internal/domain"
)

func intPtr(v int) *int { return &v }

func trainingItems() []domain.InventoryItem {
	return []domain.InventoryItem{
		{Category: "Dairy", StockQuantity: 5, DaysUntilExpiry: intPtr(-10), ExpiryClass: domain.ExpiryExpired},
		{Category: "Dairy", StockQuantity: 8, DaysUntilExpiry: intPtr(-3), ExpiryClass: domain.ExpiryExpired},
		{Category: "Dairy", StockQuantity: 12, DaysUntilExpiry: intPtr(5), ExpiryClass: domain.ExpiryNearExpiry},
		{Category: "Produce", StockQuantity: 30, DaysUntilExpiry: intPtr(12), ExpiryClass: domain.ExpiryNearExpiry},
		{Category: "Grains", StockQuantity: 200, DaysUntilExpiry: intPtr(400), ExpiryClass: domain.ExpiryNotExpired},
		{Category: "Grains", StockQuantity: 90, DaysUntilExpiry: intPtr(250), ExpiryClass: domain.ExpiryNotExpired},
	}
}

func TestTrainExpiryModelReproducesLabels(t *testing.T) {
	items := trainingItems()
	m, err := TrainExpiryModel(items)
	require.NoError(t, err)

	got := m.Predict(items)
	for i, it := range items {
		assert.Equal(t, it.ExpiryClass, got[i], "row %d", i)
	}
}

func TestTrainExpiryModelIgnoresUnlabeledRows(t *testing.T) {
	items := append(trainingItems(), domain.InventoryItem{Category: "Dairy", StockQuantity: 1})
	m, err := TrainExpiryModel(items)
	require.NoError(t, err)
	require.NotNil(t, m.Tree)
}

func TestTrainExpiryModelRequiresLabels(t *testing.T) {
	_, err := TrainExpiryModel([]domain.InventoryItem{
		{Category: "Dairy", StockQuantity: 1},
	})
	assert.Error(t, err)
}

func TestExpiryModelArtifactRoundTrip(t *testing.T) {
	items := trainingItems()
	m, err := TrainExpiryModel(items)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "models", "expiry_model.json")
	require.NoError(t, SaveArtifact(path, m))

	loaded, err := LoadExpiryModel(path)
	require.NoError(t, err)
	assert.Equal(t, m.NumericFeatures, loaded.NumericFeatures)
	assert.Equal(t, m.Encoder.Columns, loaded.Encoder.Columns)

	got := loaded.Predict(items)
	for i, it := range items {
		assert.Equal(t, it.ExpiryClass, got[i], "row %d", i)
	}
}

func TestExpiryModelPredictsUnseenCategory(t *testing.T) {
	m, err := TrainExpiryModel(trainingItems())
	require.NoError(t, err)

	got := m.Predict([]domain.InventoryItem{
		{Category: "Frozen", StockQuantity: 5, DaysUntilExpiry: intPtr(-10)},
	})
	require.Len(t, got, 1)
	assert.Contains(t, domain.ExpiryClasses(), got[0])
}

func TestLoadExpiryModelMissingArtifact(t *testing.T) {
	_, err := LoadExpiryModel(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var notFound *domain.ModelNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
