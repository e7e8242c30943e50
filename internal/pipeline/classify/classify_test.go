package classify

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
	"github.com/expirywise/backend-go/internal/model"
)

func intPtr(v int) *int { return &v }

func labeledItems() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ProductID: "P1", Category: "Dairy", StockQuantity: 5, DaysUntilExpiry: intPtr(-10), ExpiryClass: domain.ExpiryExpired},
		{ProductID: "P2", Category: "Dairy", StockQuantity: 12, DaysUntilExpiry: intPtr(5), ExpiryClass: domain.ExpiryNearExpiry},
		{ProductID: "P3", Category: "Grains", StockQuantity: 200, DaysUntilExpiry: intPtr(400), ExpiryClass: domain.ExpiryNotExpired},
	}
}

func writeProcessed(t *testing.T, path string, items []domain.InventoryItem) {
	t.Helper()
	table := dataset.ItemsToTable(items, dataset.WriteOptions{ExpiryClass: true})
	require.NoError(t, table.WriteCSV(path))
}

func trainModel(t *testing.T, path string) {
	t.Helper()
	m, err := model.TrainExpiryModel(labeledItems())
	require.NoError(t, err)
	require.NoError(t, model.SaveArtifact(path, m))
}

func TestStagePredictsUnlabeledRows(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")
	modelPath := filepath.Join(dir, "expiry_model.json")
	trainModel(t, modelPath)

	items := append(labeledItems(),
		domain.InventoryItem{ProductID: "P4", Category: "Dairy", StockQuantity: 6, DaysUntilExpiry: intPtr(-8)},
	)
	writeProcessed(t, processed, items)

	require.NoError(t, New(processed, modelPath).Run(context.Background()))

	table, err := dataset.ReadCSV(processed)
	require.NoError(t, err)
	got, err := dataset.ItemsFromTable(table)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Labeled rows keep their labels; the unlabeled one is filled in.
	assert.Equal(t, domain.ExpiryExpired, got[0].ExpiryClass)
	assert.Equal(t, domain.ExpiryNearExpiry, got[1].ExpiryClass)
	assert.Equal(t, domain.ExpiryNotExpired, got[2].ExpiryClass)
	assert.Equal(t, domain.ExpiryExpired, got[3].ExpiryClass)
}

func TestStageSkipsModelWhenFullyLabeled(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")
	writeProcessed(t, processed, labeledItems())

	// No model artifact on disk: a fully labeled table must not need one.
	stage := New(processed, filepath.Join(dir, "missing_model.json"))
	assert.NoError(t, stage.Run(context.Background()))
}

func TestStageMissingModelArtifact(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")

	items := labeledItems()
	items[0].ExpiryClass = ""
	writeProcessed(t, processed, items)

	err := New(processed, filepath.Join(dir, "missing_model.json")).Run(context.Background())
	require.Error(t, err)

	var notFound *domain.ModelNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStageMissingFeatureColumns(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")
	modelPath := filepath.Join(dir, "expiry_model.json")
	trainModel(t, modelPath)

	table := dataset.NewTable([]string{dataset.ColProductID, dataset.ColExpiryClass})
	table.Append([]string{"P1", ""})
	require.NoError(t, table.WriteCSV(processed))

	err := New(processed, modelPath).Run(context.Background())
	require.Error(t, err)

	var mismatch *domain.FeatureMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Missing, dataset.ColStockQuantity)
}
