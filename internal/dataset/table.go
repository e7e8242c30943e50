// Package dataset reads and writes the tabular artifacts the pipeline
// stages exchange. Every artifact is a row-oriented CSV with a header
// naming each column; stage boundaries validate the columns they need.
package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/expirywise/backend-go/internal/domain"
)

// Column names shared across artifacts.
const (
	ColProductID         = "Product_ID"
	ColProductName       = "Product_Name"
	ColCategory          = "Category"
	ColSupplierName      = "Supplier_Name"
	ColWarehouseLocation = "Warehouse_Location"
	ColStockQuantity     = "Stock_Quantity"
	ColReorderLevel      = "Reorder_Level"
	ColReorderQuantity   = "Reorder_Quantity"
	ColUnitPrice         = "Unit_Price"
	ColSalesVolume       = "Sales_Volume"
	ColTurnoverRate      = "Inventory_Turnover_Rate"
	ColDateReceived      = "Date_Received"
	ColLastOrderDate     = "Last_Order_Date"
	ColExpirationDate    = "Expiration_Date"

	ColDaysUntilExpiry     = "Days_Until_Expiry"
	ColStockAge            = "Stock_Age"
	ColStockValue          = "Stock_Value"
	ColShelfLife           = "Shelf_Life"
	ColRemainingShelfRatio = "Remaining_Shelf_Life_Ratio"

	ColExpiryClass      = "Expiry_Class"
	ColForecastedDemand = "Forecasted_Demand"
	ColRiskLevel        = "Risk_Level"

	ColDS               = "ds"
	ColYhat             = "yhat"
	ColYhatLower        = "yhat_lower"
	ColYhatUpper        = "yhat_upper"
	ColPredictedAction  = "Predicted_Action"
	ColPredictedDiscPct = "Predicted_Discount_Percent"
)

// Table is an in-memory CSV artifact: a header plus string rows.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable creates an empty table with the given header.
func NewTable(header []string) *Table {
	t := &Table{Header: append([]string(nil), header...)}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[h] = i
	}
}

// Col returns the position of a column, or -1 when absent.
func (t *Table) Col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists in the header.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the cell value at (row, column name), or "" when the column
// is absent or the row is ragged.
func (t *Table) Get(row int, name string) string {
	i := t.Col(name)
	if i < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Append adds a record. Short records are padded to the header width.
func (t *Table) Append(record []string) {
	for len(record) < len(t.Header) {
		record = append(record, "")
	}
	t.Rows = append(t.Rows, record)
}

// RequireColumns returns a SchemaError naming every column absent from the
// header. Columns merely containing empty values pass.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.Has(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}
	return nil
}

// ReadCSV loads a table from disk.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewTable(nil), nil
	}

	t := NewTable(records[0])
	for _, rec := range records[1:] {
		t.Append(rec)
	}
	return t, nil
}

// WriteCSV persists the table, creating parent directories as needed.
func (t *Table) WriteCSV(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
