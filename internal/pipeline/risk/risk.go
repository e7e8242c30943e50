// Package risk derives a discrete risk level per product from its expiry
// class and the relationship between forecasted demand and on-hand stock.
package risk

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

// AssignRisk maps one product's state to a risk level. Rules apply in
// strict order, first match wins:
//  1. Expired stock is Expired regardless of anything else.
//  2. A known forecast below on-hand stock means overstock: High.
//  3. Everything else, including a missing forecast, is Low.
func AssignRisk(expiryClass domain.ExpiryClass, stockQuantity float64, forecastedDemand *float64) domain.RiskLevel {
	if expiryClass == domain.ExpiryExpired {
		return domain.RiskExpired
	}
	if forecastedDemand != nil && *forecastedDemand < stockQuantity {
		return domain.RiskHigh
	}
	return domain.RiskLow
}

// Stage joins the cleaned table with the combined forecast and writes the
// risk-scored artifact.
type Stage struct {
	processedPath string
	forecastPath  string
	outputPath    string
}

func New(processedPath, forecastPath, outputPath string) *Stage {
	return &Stage{
		processedPath: processedPath,
		forecastPath:  forecastPath,
		outputPath:    outputPath,
	}
}

func (s *Stage) Name() string { return "risk" }

func (s *Stage) Run(ctx context.Context) error {
	t, err := dataset.ReadCSV(s.processedPath)
	if err != nil {
		return err
	}

	if err := t.RequireColumns(
		dataset.ColDateReceived,
		dataset.ColExpirationDate,
		dataset.ColLastOrderDate,
	); err != nil {
		return err
	}

	items, err := dataset.ItemsFromTable(t)
	if err != nil {
		return err
	}

	demand, err := s.loadForecastedDemand()
	if err != nil {
		return err
	}

	counts := make(map[domain.RiskLevel]int)
	for i := range items {
		if v, ok := demand[items[i].ProductName]; ok {
			d := v
			items[i].ForecastedDemand = &d
		}
		items[i].RiskLevel = AssignRisk(items[i].ExpiryClass, items[i].StockQuantity, items[i].ForecastedDemand)
		counts[items[i].RiskLevel]++
	}

	out := dataset.ItemsToTable(items, dataset.WriteOptions{ExpiryClass: true, Risk: true})
	if err := out.WriteCSV(s.outputPath); err != nil {
		return err
	}

	log.Info().
		Int("expired", counts[domain.RiskExpired]).
		Int("high", counts[domain.RiskHigh]).
		Int("low", counts[domain.RiskLow]).
		Str("output", s.outputPath).
		Msg("risk: risk levels assigned")
	return nil
}

// loadForecastedDemand reduces the combined forecast to one figure per
// product: the last point of its curve, i.e. the value at the end of the
// horizon. A missing forecast artifact is a degraded run, not an error;
// every product then scores with a null forecast.
func (s *Stage) loadForecastedDemand() (map[string]float64, error) {
	if _, err := os.Stat(s.forecastPath); os.IsNotExist(err) {
		log.Warn().Str("path", s.forecastPath).Msg("risk: forecast artifact not found, scoring with null forecasts")
		return map[string]float64{}, nil
	}

	t, err := dataset.ReadCSV(s.forecastPath)
	if err != nil {
		return nil, err
	}

	demand := make(map[string]float64)
	for i := range t.Rows {
		product := t.Get(i, dataset.ColProductName)
		if product == "" {
			continue
		}
		yhat, err := parseYhat(t, i)
		if err != nil {
			return nil, err
		}
		// Rows arrive in date order per product; the final assignment
		// is the horizon's last point.
		demand[product] = yhat
	}
	return demand, nil
}

func parseYhat(t *dataset.Table, row int) (float64, error) {
	v := strings.TrimSpace(t.Get(row, dataset.ColYhat))
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &domain.DataParseError{Column: dataset.ColYhat, Value: v, Row: row}
	}
	return f, nil
}
