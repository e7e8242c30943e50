// Package pipeline orchestrates the risk-and-recommendation derivation
// chain. Stages run strictly in order; each one reads the previous stage's
// artifact from durable storage and writes its own before the next starts,
// so a failed stage leaves everything upstream intact for inspection.
package pipeline

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/pipeline/classify"
	"github.com/expirywise/backend-go/internal/pipeline/forecast"
	"github.com/expirywise/backend-go/internal/pipeline/preprocess"
	"github.com/expirywise/backend-go/internal/pipeline/recommend"
	"github.com/expirywise/backend-go/internal/pipeline/risk"
)

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// optional is implemented by stages whose failure degrades the run instead
// of halting it (the forecaster: risk scoring falls back to null forecasts).
type optional interface {
	Optional() bool
}

// Runner executes stages sequentially.
type Runner struct {
	stages []Stage
}

func NewRunner(stages ...Stage) *Runner {
	return &Runner{stages: stages}
}

// Run executes every stage in order. A failing optional stage logs a
// warning and the run continues; any other failure halts the pipeline.
func (r *Runner) Run(ctx context.Context) error {
	for _, stage := range r.stages {
		start := time.Now()
		log.Info().Str("stage", stage.Name()).Msg("pipeline: stage starting")

		if err := stage.Run(ctx); err != nil {
			if opt, ok := stage.(optional); ok && opt.Optional() {
				log.Warn().
					Err(err).
					Str("stage", stage.Name()).
					Msg("pipeline: optional stage failed, continuing degraded")
				continue
			}
			return pkgerrors.Wrapf(err, "stage %s failed", stage.Name())
		}

		log.Info().
			Str("stage", stage.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("pipeline: stage completed")
	}
	return nil
}

// Options tunes a full pipeline run.
type Options struct {
	// Today is the reference day for derived date features.
	Today time.Time
	// RefreshForecast forces recomputation even when a combined forecast
	// artifact already exists.
	RefreshForecast bool
}

// NewInventoryPipeline wires the full chain for one raw snapshot CSV:
// preprocess, classify, forecast, risk, recommend.
func NewInventoryPipeline(cfg *config.Config, inputPath string, opts Options) *Runner {
	today := opts.Today
	if today.IsZero() {
		today = time.Now()
	}

	forecastCfg := cfg.Forecast
	if opts.RefreshForecast {
		forecastCfg.UseExisting = false
	}

	paths := cfg.Paths
	return NewRunner(
		preprocess.New(inputPath, paths.ProcessedFile, today),
		classify.New(paths.ProcessedFile, paths.ExpiryModelFile),
		forecast.New(paths.ProcessedFile, paths.ForecastDir, paths.CombinedForecast, forecastCfg),
		risk.New(paths.ProcessedFile, paths.CombinedForecast, paths.RiskScoresFile),
		recommend.New(paths.RiskScoresFile, paths.RecommendationsFile, paths.ActionModelFile, paths.DiscountModelFile),
	)
}
