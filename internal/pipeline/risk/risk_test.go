package risk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestAssignRisk(t *testing.T) {
	tests := []struct {
		name     string
		class    domain.ExpiryClass
		stock    float64
		forecast *float64
		want     domain.RiskLevel
	}{
		{
			name:     "expired wins over everything",
			class:    domain.ExpiryExpired,
			stock:    10,
			forecast: floatPtr(1),
			want:     domain.RiskExpired,
		},
		{
			name:     "forecast below stock is overstock",
			class:    domain.ExpiryNotExpired,
			stock:    100,
			forecast: floatPtr(40),
			want:     domain.RiskHigh,
		},
		{
			name:     "forecast covering stock is low",
			class:    domain.ExpiryNearExpiry,
			stock:    10,
			forecast: floatPtr(25),
			want:     domain.RiskLow,
		},
		{
			name:  "missing forecast falls through to low",
			class: domain.ExpiryNotExpired,
			stock: 1000,
			want:  domain.RiskLow,
		},
		{
			name:     "forecast equal to stock is low",
			class:    domain.ExpiryNotExpired,
			stock:    50,
			forecast: floatPtr(50),
			want:     domain.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignRisk(tt.class, tt.stock, tt.forecast))
		})
	}
}

func writeProcessed(t *testing.T, path string, items []domain.InventoryItem) {
	t.Helper()
	table := dataset.ItemsToTable(items, dataset.WriteOptions{ExpiryClass: true})
	require.NoError(t, table.WriteCSV(path))
}

func TestStageJoinsForecast(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")
	forecastPath := filepath.Join(dir, "all_products_forecast.csv")
	output := filepath.Join(dir, "risk_scores.csv")

	writeProcessed(t, processed, []domain.InventoryItem{
		{ProductID: "P1", ProductName: "Milk", StockQuantity: 100, ExpiryClass: domain.ExpiryNotExpired},
		{ProductID: "P2", ProductName: "Rice", StockQuantity: 10, ExpiryClass: domain.ExpiryNotExpired},
		{ProductID: "P3", ProductName: "Eggs", StockQuantity: 5, ExpiryClass: domain.ExpiryExpired},
	})

	// Per-product rows are date-ordered; the last row is the horizon end.
	forecast := dataset.NewTable([]string{dataset.ColDS, dataset.ColYhat, dataset.ColProductName})
	forecast.Append([]string{"2025-06-01", "80", "Milk"})
	forecast.Append([]string{"2025-06-02", "40", "Milk"})
	forecast.Append([]string{"2025-06-01", "90", "Rice"})
	require.NoError(t, forecast.WriteCSV(forecastPath))

	require.NoError(t, New(processed, forecastPath, output).Run(context.Background()))

	table, err := dataset.ReadCSV(output)
	require.NoError(t, err)
	items, err := dataset.ItemsFromTable(table)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byName := make(map[string]domain.InventoryItem)
	for _, it := range items {
		byName[it.ProductName] = it
	}

	// Milk: final horizon point 40 < stock 100.
	assert.Equal(t, domain.RiskHigh, byName["Milk"].RiskLevel)
	require.NotNil(t, byName["Milk"].ForecastedDemand)
	assert.Equal(t, 40.0, *byName["Milk"].ForecastedDemand)

	// Rice: forecast 90 covers stock 10.
	assert.Equal(t, domain.RiskLow, byName["Rice"].RiskLevel)

	// Eggs: expired regardless of the missing forecast.
	assert.Equal(t, domain.RiskExpired, byName["Eggs"].RiskLevel)
	assert.Nil(t, byName["Eggs"].ForecastedDemand)
}

func TestStageMissingForecastArtifact(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "processed.csv")
	output := filepath.Join(dir, "risk_scores.csv")

	writeProcessed(t, processed, []domain.InventoryItem{
		{ProductID: "P1", ProductName: "Milk", StockQuantity: 100, ExpiryClass: domain.ExpiryNotExpired},
		{ProductID: "P2", ProductName: "Eggs", StockQuantity: 5, ExpiryClass: domain.ExpiryExpired},
	})

	stage := New(processed, filepath.Join(dir, "missing.csv"), output)
	require.NoError(t, stage.Run(context.Background()))

	table, err := dataset.ReadCSV(output)
	require.NoError(t, err)
	items, err := dataset.ItemsFromTable(table)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Without any forecast every non-expired row degrades to Low.
	assert.Equal(t, domain.RiskLow, items[0].RiskLevel)
	assert.Equal(t, domain.RiskExpired, items[1].RiskLevel)
}
