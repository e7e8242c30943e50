package dataset

import (
	"strconv"
	"strings"
	"time"

	"github.com/expirywise/backend-go/internal/domain"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"02-01-2006",
	"2-1-2006",
	"01-02-2006",
}

// ParseDate parses a calendar date leniently, accepting "/" or "-"
// separators. Unparseable values return nil rather than an error.
func ParseDate(value string) *time.Time {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	v = strings.ReplaceAll(v, "/", "-")
	// Drop an attached time component if one is present.
	if i := strings.IndexAny(v, " T"); i > 0 {
		v = v[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// FormatFloat renders a float the way every artifact writes numerics:
// shortest representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// baseColumns is the fixed ordering of the cleaned table's input columns.
var baseColumns = []string{
	ColProductID, ColProductName, ColCategory, ColSupplierName, ColWarehouseLocation,
	ColStockQuantity, ColReorderLevel, ColReorderQuantity, ColUnitPrice,
	ColSalesVolume, ColTurnoverRate,
	ColDateReceived, ColLastOrderDate, ColExpirationDate,
}

// derivedColumns is the fixed ordering of the preprocessor's feature columns.
var derivedColumns = []string{
	ColDaysUntilExpiry, ColStockAge, ColStockValue, ColShelfLife, ColRemainingShelfRatio,
}

// WriteOptions controls which optional columns an items table carries.
type WriteOptions struct {
	ExpiryClass bool
	Risk        bool
}

// ItemsToTable renders items as an artifact table with a deterministic
// column order, so identical inputs produce byte-identical artifacts.
func ItemsToTable(items []domain.InventoryItem, opts WriteOptions) *Table {
	header := append([]string(nil), baseColumns...)
	header = append(header, derivedColumns...)
	if opts.ExpiryClass {
		header = append(header, ColExpiryClass)
	}
	if opts.Risk {
		header = append(header, ColForecastedDemand, ColRiskLevel)
	}

	t := NewTable(header)
	for _, it := range items {
		rec := []string{
			it.ProductID, it.ProductName, it.Category, it.SupplierName, it.WarehouseLocation,
			FormatFloat(it.StockQuantity), FormatFloat(it.ReorderLevel), FormatFloat(it.ReorderQuantity),
			FormatFloat(it.UnitPrice), FormatFloat(it.SalesVolume), FormatFloat(it.InventoryTurnoverRate),
			formatDate(it.DateReceived), formatDate(it.LastOrderDate), formatDate(it.ExpirationDate),
			formatIntPtr(it.DaysUntilExpiry), formatIntPtr(it.StockAge), formatFloatPtr(it.StockValue),
			formatIntPtr(it.ShelfLife), formatFloatPtr(it.RemainingShelfLifeRatio),
		}
		if opts.ExpiryClass {
			rec = append(rec, string(it.ExpiryClass))
		}
		if opts.Risk {
			rec = append(rec, formatFloatPtr(it.ForecastedDemand), string(it.RiskLevel))
		}
		t.Append(rec)
	}
	return t
}

// ItemsFromTable decodes an artifact table into typed items. Optional
// columns (Expiry_Class, Forecasted_Demand, Risk_Level) are read only when
// present; numeric parse failures surface as DataParseError.
func ItemsFromTable(t *Table) ([]domain.InventoryItem, error) {
	items := make([]domain.InventoryItem, 0, len(t.Rows))
	for i := range t.Rows {
		it := domain.InventoryItem{
			ProductID:         t.Get(i, ColProductID),
			ProductName:       t.Get(i, ColProductName),
			Category:          t.Get(i, ColCategory),
			SupplierName:      t.Get(i, ColSupplierName),
			WarehouseLocation: t.Get(i, ColWarehouseLocation),
		}

		var err error
		if it.StockQuantity, err = parseFloatCell(t, i, ColStockQuantity); err != nil {
			return nil, err
		}
		if it.ReorderLevel, err = parseFloatCell(t, i, ColReorderLevel); err != nil {
			return nil, err
		}
		if it.ReorderQuantity, err = parseFloatCell(t, i, ColReorderQuantity); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = parseFloatCell(t, i, ColUnitPrice); err != nil {
			return nil, err
		}
		if it.SalesVolume, err = parseFloatCell(t, i, ColSalesVolume); err != nil {
			return nil, err
		}
		if it.InventoryTurnoverRate, err = parseFloatCell(t, i, ColTurnoverRate); err != nil {
			return nil, err
		}

		it.DateReceived = ParseDate(t.Get(i, ColDateReceived))
		it.LastOrderDate = ParseDate(t.Get(i, ColLastOrderDate))
		it.ExpirationDate = ParseDate(t.Get(i, ColExpirationDate))

		if it.DaysUntilExpiry, err = parseIntPtrCell(t, i, ColDaysUntilExpiry); err != nil {
			return nil, err
		}
		if it.StockAge, err = parseIntPtrCell(t, i, ColStockAge); err != nil {
			return nil, err
		}
		if it.StockValue, err = parseFloatPtrCell(t, i, ColStockValue); err != nil {
			return nil, err
		}
		if it.ShelfLife, err = parseIntPtrCell(t, i, ColShelfLife); err != nil {
			return nil, err
		}
		if it.RemainingShelfLifeRatio, err = parseFloatPtrCell(t, i, ColRemainingShelfRatio); err != nil {
			return nil, err
		}

		if v := strings.TrimSpace(t.Get(i, ColExpiryClass)); v != "" {
			it.ExpiryClass = domain.ExpiryClass(v)
		}
		if it.ForecastedDemand, err = parseFloatPtrCell(t, i, ColForecastedDemand); err != nil {
			return nil, err
		}
		if v := strings.TrimSpace(t.Get(i, ColRiskLevel)); v != "" {
			it.RiskLevel = domain.RiskLevel(v)
		}

		items = append(items, it)
	}
	return items, nil
}

func parseFloatCell(t *Table, row int, col string) (float64, error) {
	v := strings.TrimSpace(t.Get(row, col))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.DataParseError{Column: col, Value: v, Row: row}
	}
	return f, nil
}

func parseFloatPtrCell(t *Table, row int, col string) (*float64, error) {
	v := strings.TrimSpace(t.Get(row, col))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, &domain.DataParseError{Column: col, Value: v, Row: row}
	}
	return &f, nil
}

func parseIntPtrCell(t *Table, row int, col string) (*int, error) {
	v := strings.TrimSpace(t.Get(row, col))
	if v == "" {
		return nil, nil
	}
	// Derived day counts are integers, but tolerate a float rendering.
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, &domain.DataParseError{Column: col, Value: v, Row: row}
	}
	n := int(f)
	return &n, nil
}
