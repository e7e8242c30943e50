// Package forecast produces per-product demand forecasts from the cleaned
// table's daily sales history. Products come out with one point per
// historical date plus a fixed horizon of future dates; products with too
// little history are skipped, never failed.
package forecast

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/domain"
)

// Stage generates the combined forecast artifact and one CSV per product.
type Stage struct {
	processedPath string
	forecastDir   string
	combinedPath  string
	cfg           config.ForecastConfig
}

func New(processedPath, forecastDir, combinedPath string, cfg config.ForecastConfig) *Stage {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	if cfg.MinObservations <= 0 {
		cfg.MinObservations = 5
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Stage{
		processedPath: processedPath,
		forecastDir:   forecastDir,
		combinedPath:  combinedPath,
		cfg:           cfg,
	}
}

func (s *Stage) Name() string { return "forecast" }

// Optional marks this stage as degradable: a forecast failure downgrades
// the run to null-forecast risk scoring instead of halting the pipeline.
func (s *Stage) Optional() bool { return true }

func (s *Stage) Run(ctx context.Context) error {
	if s.cfg.UseExisting {
		if _, err := os.Stat(s.combinedPath); err == nil {
			log.Info().Str("path", s.combinedPath).Msg("forecast: reusing existing combined forecast")
			return nil
		}
	}

	t, err := dataset.ReadCSV(s.processedPath)
	if err != nil {
		return err
	}
	items, err := dataset.ItemsFromTable(t)
	if err != nil {
		return err
	}

	byProduct := aggregateDailySales(items)

	products := make([]string, 0, len(byProduct))
	for p := range byProduct {
		products = append(products, p)
	}
	sort.Strings(products)

	if err := os.MkdirAll(s.forecastDir, 0755); err != nil {
		return err
	}

	// Per-product fits are independent; bound the fan-out and keep the
	// output order deterministic by collecting into fixed slots.
	results := make([][]domain.ForecastPoint, len(products))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			series := byProduct[product]
			if len(series) < s.cfg.MinObservations {
				insufficient := &domain.InsufficientDataError{Key: product, Points: len(series)}
				log.Warn().Err(insufficient).Msg("forecast: skipping product")
				return nil
			}

			points := forecastSeries(product, series, s.cfg.HorizonDays)
			if err := s.writeProductForecast(product, points); err != nil {
				return err
			}
			results[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var combined []domain.ForecastPoint
	for _, points := range results {
		combined = append(combined, points...)
	}
	if len(combined) == 0 {
		log.Warn().Msg("forecast: no product had enough history, combined artifact not written")
		return nil
	}

	if err := s.writeCombined(combined); err != nil {
		return err
	}

	log.Info().
		Int("products", len(products)).
		Int("rows", len(combined)).
		Str("path", s.combinedPath).
		Msg("forecast: combined forecast written")
	return nil
}

// aggregateDailySales sums Sales_Volume per (product, received date) and
// returns each product's series sorted by date. Rows without a received
// date carry no time information and are left out.
func aggregateDailySales(items []domain.InventoryItem) map[string][]observation {
	sums := make(map[string]map[time.Time]float64)
	for _, it := range items {
		if it.ProductName == "" || it.DateReceived == nil {
			continue
		}
		if sums[it.ProductName] == nil {
			sums[it.ProductName] = make(map[time.Time]float64)
		}
		sums[it.ProductName][*it.DateReceived] += it.SalesVolume
	}

	out := make(map[string][]observation, len(sums))
	for product, byDate := range sums {
		series := make([]observation, 0, len(byDate))
		for date, y := range byDate {
			series = append(series, observation{date: date, y: y})
		}
		sort.Slice(series, func(a, b int) bool { return series[a].date.Before(series[b].date) })
		out[product] = series
	}
	return out
}

// forecastSeries fits the model and evaluates it over every historical
// date plus horizonDays daily steps beyond the last observed date.
func forecastSeries(product string, series []observation, horizonDays int) []domain.ForecastPoint {
	m := fitTrendModel(series)

	dates := make([]time.Time, 0, len(series)+horizonDays)
	for _, obs := range series {
		dates = append(dates, obs.date)
	}
	last := series[len(series)-1].date
	for d := 1; d <= horizonDays; d++ {
		dates = append(dates, last.AddDate(0, 0, d))
	}

	points := make([]domain.ForecastPoint, 0, len(dates))
	for _, date := range dates {
		yhat, lower, upper := m.predict(date)
		points = append(points, domain.ForecastPoint{
			ProductName: product,
			Date:        date,
			Yhat:        yhat,
			YhatLower:   lower,
			YhatUpper:   upper,
		})
	}
	return points
}

func (s *Stage) writeProductForecast(product string, points []domain.ForecastPoint) error {
	t := dataset.NewTable([]string{dataset.ColDS, dataset.ColYhat, dataset.ColYhatLower, dataset.ColYhatUpper})
	for _, p := range points {
		t.Append([]string{
			p.Date.Format("2006-01-02"),
			dataset.FormatFloat(p.Yhat),
			dataset.FormatFloat(p.YhatLower),
			dataset.FormatFloat(p.YhatUpper),
		})
	}

	name := strings.ReplaceAll(product, "/", "_") + "_forecast.csv"
	return t.WriteCSV(filepath.Join(s.forecastDir, name))
}

func (s *Stage) writeCombined(points []domain.ForecastPoint) error {
	t := dataset.NewTable([]string{dataset.ColDS, dataset.ColYhat, dataset.ColProductName})
	for _, p := range points {
		t.Append([]string{
			p.Date.Format("2006-01-02"),
			dataset.FormatFloat(p.Yhat),
			p.ProductName,
		})
	}
	return t.WriteCSV(s.combinedPath)
}
