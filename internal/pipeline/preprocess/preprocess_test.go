package preprocess

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

var testToday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func writeInput(t *testing.T, dir string, rows []string) string {
	t.Helper()
	header := "Product_ID,Product_Name,Category,Supplier_Name,Warehouse_Location," +
		"Stock_Quantity,Reorder_Level,Reorder_Quantity,Unit_Price,Sales_Volume," +
		"Inventory_Turnover_Rate,Date_Received,Last_Order_Date,Expiration_Date,Expiry_Class\n"
	content := header
	for _, r := range rows {
		content += r + "\n"
	}
	path := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runPreprocess(t *testing.T, rows []string) []domain.InventoryItem {
	t.Helper()
	dir := t.TempDir()
	input := writeInput(t, dir, rows)
	output := filepath.Join(dir, "processed.csv")

	require.NoError(t, New(input, output, testToday).Run(context.Background()))

	table, err := dataset.ReadCSV(output)
	require.NoError(t, err)
	items, err := dataset.ItemsFromTable(table)
	require.NoError(t, err)
	return items
}

func TestPreprocessDerivedFeatures(t *testing.T) {
	items := runPreprocess(t, []string{
		`P1,Milk,Dairy,FreshCo,1A,20,5,10,"$2.50",100,12,2025-05-01,2025-05-20,2025-06-11,Not_Expired`,
	})
	require.Len(t, items, 1)
	it := items[0]

	require.NotNil(t, it.DaysUntilExpiry)
	assert.Equal(t, 10, *it.DaysUntilExpiry)

	require.NotNil(t, it.StockAge)
	assert.Equal(t, 31, *it.StockAge)

	require.NotNil(t, it.StockValue)
	assert.Equal(t, 50.0, *it.StockValue)

	require.NotNil(t, it.ShelfLife)
	assert.Equal(t, 41, *it.ShelfLife)

	require.NotNil(t, it.RemainingShelfLifeRatio)
	assert.InDelta(t, 10.0/41.0, *it.RemainingShelfLifeRatio, 1e-9)

	assert.Equal(t, domain.ExpiryNotExpired, it.ExpiryClass)
}

func TestPreprocessCurrencyCleaning(t *testing.T) {
	items := runPreprocess(t, []string{
		`P1,Cheese,Dairy,FreshCo,1A,3,1,2,"$1,250.75",10,5,2025-05-01,,2025-09-01,`,
	})
	require.Len(t, items, 1)
	assert.Equal(t, 1250.75, items[0].UnitPrice)
}

func TestPreprocessRatioClampedAndNullable(t *testing.T) {
	t.Run("expired stock clamps to zero", func(t *testing.T) {
		items := runPreprocess(t, []string{
			`P1,Yogurt,Dairy,FreshCo,1A,5,1,2,2,10,5,2025-01-01,,2025-05-01,Expired`,
		})
		require.NotNil(t, items[0].RemainingShelfLifeRatio)
		assert.Equal(t, 0.0, *items[0].RemainingShelfLifeRatio)
	})

	t.Run("zero shelf life yields null ratio", func(t *testing.T) {
		items := runPreprocess(t, []string{
			`P1,Yogurt,Dairy,FreshCo,1A,5,1,2,2,10,5,2025-05-01,,2025-05-01,Expired`,
		})
		require.NotNil(t, items[0].ShelfLife)
		assert.Equal(t, 0, *items[0].ShelfLife)
		assert.Nil(t, items[0].RemainingShelfLifeRatio)
	})

	t.Run("unparseable dates yield null derived features", func(t *testing.T) {
		items := runPreprocess(t, []string{
			`P1,Yogurt,Dairy,FreshCo,1A,5,1,2,2,10,5,bad-date,,also-bad,`,
		})
		assert.Nil(t, items[0].DateReceived)
		assert.Nil(t, items[0].DaysUntilExpiry)
		assert.Nil(t, items[0].StockAge)
		assert.Nil(t, items[0].ShelfLife)
		require.NotNil(t, items[0].StockValue)
	})
}

func TestPreprocessDropsDuplicatesAndUnknownClasses(t *testing.T) {
	row := `P1,Milk,Dairy,FreshCo,1A,20,5,10,2.5,100,12,2025-05-01,,2025-06-11,Fresh-ish`
	items := runPreprocess(t, []string{row, row, row})

	require.Len(t, items, 1)
	// Labels outside the known set are blanked for the classifier.
	assert.Equal(t, domain.ExpiryClass(""), items[0].ExpiryClass)
}

func TestPreprocessMissingDateColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(path, []byte("Product_ID,Stock_Quantity\nP1,5\n"), 0644))

	err := New(path, filepath.Join(dir, "out.csv"), testToday).Run(context.Background())
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestPreprocessBadPriceFailsRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []string{
		`P1,Milk,Dairy,FreshCo,1A,20,5,10,abc,100,12,2025-05-01,,2025-06-11,`,
	})

	err := New(input, filepath.Join(dir, "out.csv"), testToday).Run(context.Background())
	require.Error(t, err)

	var parseErr *domain.DataParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, dataset.ColUnitPrice, parseErr.Column)
}

func TestPreprocessIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, []string{
		`P1,Milk,Dairy,FreshCo,1A,20,5,10,"$2.50",100,12,2025-05-01,2025-05-20,2025-06-11,Not_Expired`,
		`P2,Rice,Grains,AgriSup,2B,500,50,100,1.1,800,30,2024-11-15,2025-04-01,2026-11-15,Not_Expired`,
	})

	first := filepath.Join(dir, "first.csv")
	require.NoError(t, New(input, first, testToday).Run(context.Background()))

	second := filepath.Join(dir, "second.csv")
	require.NoError(t, New(first, second, testToday).Run(context.Background()))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
