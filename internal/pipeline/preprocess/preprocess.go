// Package preprocess cleans raw inventory snapshots and derives the
// time-based and value-based features every downstream stage depends on.
package preprocess

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

// Preprocessor turns a raw inventory CSV into the cleaned, feature-augmented
// artifact. Re-running on the same input and the same reference day yields a
// byte-identical artifact.
type Preprocessor struct {
	inputPath  string
	outputPath string
	today      time.Time
}

func New(inputPath, outputPath string, today time.Time) *Preprocessor {
	return &Preprocessor{
		inputPath:  inputPath,
		outputPath: outputPath,
		today:      normalizeDay(today),
	}
}

func (p *Preprocessor) Name() string { return "preprocess" }

func (p *Preprocessor) Run(ctx context.Context) error {
	raw, err := dataset.ReadCSV(p.inputPath)
	if err != nil {
		return err
	}

	if err := raw.RequireColumns(
		dataset.ColDateReceived,
		dataset.ColExpirationDate,
		dataset.ColLastOrderDate,
	); err != nil {
		return err
	}

	deduped := dropDuplicateRows(raw)
	if removed := len(raw.Rows) - len(deduped.Rows); removed > 0 {
		log.Info().Int("removed", removed).Msg("preprocess: dropped exact duplicate rows")
	}

	items, err := p.parseRows(deduped)
	if err != nil {
		return err
	}

	for i := range items {
		p.deriveFeatures(&items[i])
	}

	out := dataset.ItemsToTable(items, dataset.WriteOptions{ExpiryClass: deduped.Has(dataset.ColExpiryClass)})
	if err := out.WriteCSV(p.outputPath); err != nil {
		return err
	}

	log.Info().
		Int("rows", len(items)).
		Str("output", p.outputPath).
		Msg("preprocess: cleaned table written")
	return nil
}

// parseRows converts raw string rows into typed items. Unit_Price is
// normalized by stripping currency symbols and thousands separators first;
// any non-numeric residue fails the whole run.
func (p *Preprocessor) parseRows(t *dataset.Table) ([]domain.InventoryItem, error) {
	items := make([]domain.InventoryItem, 0, len(t.Rows))
	for i := range t.Rows {
		it := domain.InventoryItem{
			ProductID:         strings.TrimSpace(t.Get(i, dataset.ColProductID)),
			ProductName:       strings.TrimSpace(t.Get(i, dataset.ColProductName)),
			Category:          strings.TrimSpace(t.Get(i, dataset.ColCategory)),
			SupplierName:      strings.TrimSpace(t.Get(i, dataset.ColSupplierName)),
			WarehouseLocation: strings.TrimSpace(t.Get(i, dataset.ColWarehouseLocation)),
		}

		price, err := parsePrice(t.Get(i, dataset.ColUnitPrice), i)
		if err != nil {
			return nil, err
		}
		it.UnitPrice = price

		if it.StockQuantity, err = parseNumeric(t, i, dataset.ColStockQuantity); err != nil {
			return nil, err
		}
		if it.ReorderLevel, err = parseNumeric(t, i, dataset.ColReorderLevel); err != nil {
			return nil, err
		}
		if it.ReorderQuantity, err = parseNumeric(t, i, dataset.ColReorderQuantity); err != nil {
			return nil, err
		}
		if it.SalesVolume, err = parseNumeric(t, i, dataset.ColSalesVolume); err != nil {
			return nil, err
		}
		if it.InventoryTurnoverRate, err = parseNumeric(t, i, dataset.ColTurnoverRate); err != nil {
			return nil, err
		}

		it.DateReceived = dataset.ParseDate(t.Get(i, dataset.ColDateReceived))
		it.LastOrderDate = dataset.ParseDate(t.Get(i, dataset.ColLastOrderDate))
		it.ExpirationDate = dataset.ParseDate(t.Get(i, dataset.ColExpirationDate))

		if t.Has(dataset.ColExpiryClass) {
			it.ExpiryClass = normalizeExpiryClass(t.Get(i, dataset.ColExpiryClass))
		}

		items = append(items, it)
	}
	return items, nil
}

// deriveFeatures computes the derived columns in place. Every division is
// guarded: a zero or unknown denominator produces null, never a panic.
func (p *Preprocessor) deriveFeatures(it *domain.InventoryItem) {
	if it.ExpirationDate != nil {
		d := daysBetween(p.today, *it.ExpirationDate)
		it.DaysUntilExpiry = &d
	}
	if it.DateReceived != nil {
		d := daysBetween(*it.DateReceived, p.today)
		it.StockAge = &d
	}

	value := it.StockQuantity * it.UnitPrice
	it.StockValue = &value

	if it.DateReceived != nil && it.ExpirationDate != nil {
		life := daysBetween(*it.DateReceived, *it.ExpirationDate)
		it.ShelfLife = &life

		if life != 0 && it.DaysUntilExpiry != nil {
			ratio := clamp(float64(*it.DaysUntilExpiry)/float64(life), 0, 1)
			it.RemainingShelfLifeRatio = &ratio
		}
	}
}

func dropDuplicateRows(t *dataset.Table) *dataset.Table {
	out := dataset.NewTable(t.Header)
	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Append(append([]string(nil), row...))
	}
	return out
}

var currencyStripper = strings.NewReplacer("$", "", ",", "", " ", "")

func parsePrice(value string, row int) (float64, error) {
	v := currencyStripper.Replace(strings.TrimSpace(value))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.DataParseError{Column: dataset.ColUnitPrice, Value: value, Row: row}
	}
	return f, nil
}

func parseNumeric(t *dataset.Table, row int, col string) (float64, error) {
	v := strings.ReplaceAll(strings.TrimSpace(t.Get(row, col)), ",", "")
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.DataParseError{Column: col, Value: v, Row: row}
	}
	return f, nil
}

// normalizeExpiryClass keeps only values from the fixed category set;
// anything else becomes empty so the classifier fills it in later.
func normalizeExpiryClass(value string) domain.ExpiryClass {
	v := strings.TrimSpace(value)
	for _, c := range domain.ExpiryClasses() {
		if v == string(c) {
			return c
		}
	}
	return ""
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole days from a to b; negative when b is earlier.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
