package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/pipeline"
	"github.com/expirywise/backend-go/internal/pipeline/classify"
	"github.com/expirywise/backend-go/internal/pipeline/forecast"
	"github.com/expirywise/backend-go/internal/pipeline/preprocess"
	"github.com/expirywise/backend-go/internal/pipeline/recommend"
	"github.com/expirywise/backend-go/internal/pipeline/risk"
	"github.com/expirywise/backend-go/pkg/logger"
)

func newInputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "input",
		Usage:    "Path to the raw inventory snapshot CSV",
		Required: true,
		EnvVars:  []string{"PIPELINE_INPUT"},
	}
}

func newTodayFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "today",
		Usage: "Reference date for derived features (YYYY-MM-DD, defaults to now)",
	}
}

func parseToday(c *cli.Context) (time.Time, error) {
	raw := c.String("today")
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --today value %q: %w", raw, err)
	}
	return t, nil
}

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "pipeline",
		Usage: "Inventory expiry-risk and recommendation pipeline",
		Before: func(c *cli.Context) error {
			if level := os.Getenv("LOG_LEVEL"); level != "" {
				logger.SetLevel(level)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the full chain: preprocess, classify, forecast, risk, recommend",
				Flags: []cli.Flag{
					newInputFlag(),
					newTodayFlag(),
					&cli.BoolFlag{
						Name:  "refresh-forecast",
						Usage: "Recompute forecasts even when a combined artifact exists",
					},
				},
				Action: runFullPipeline,
			},
			{
				Name:  "preprocess",
				Usage: "Clean a raw snapshot CSV and derive per-row features",
				Flags: []cli.Flag{newInputFlag(), newTodayFlag()},
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					today, err := parseToday(c)
					if err != nil {
						return err
					}
					stage := preprocess.New(c.String("input"), cfg.Paths.ProcessedFile, today)
					return stage.Run(c.Context)
				},
			},
			{
				Name:  "classify",
				Usage: "Fill missing expiry classes on the processed dataset",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					stage := classify.New(cfg.Paths.ProcessedFile, cfg.Paths.ExpiryModelFile)
					return stage.Run(c.Context)
				},
			},
			{
				Name:  "forecast",
				Usage: "Fit per-product demand forecasts from the processed dataset",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Ignore an existing combined forecast artifact",
					},
				},
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					forecastCfg := cfg.Forecast
					if c.Bool("refresh") {
						forecastCfg.UseExisting = false
					}
					stage := forecast.New(cfg.Paths.ProcessedFile, cfg.Paths.ForecastDir, cfg.Paths.CombinedForecast, forecastCfg)
					return stage.Run(c.Context)
				},
			},
			{
				Name:  "risk",
				Usage: "Assign risk levels from expiry class, stock and forecasted demand",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					stage := risk.New(cfg.Paths.ProcessedFile, cfg.Paths.CombinedForecast, cfg.Paths.RiskScoresFile)
					return stage.Run(c.Context)
				},
			},
			{
				Name:  "recommend",
				Usage: "Produce per-product actions and discounts from risk scores",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					stage := recommend.New(cfg.Paths.RiskScoresFile, cfg.Paths.RecommendationsFile,
						cfg.Paths.ActionModelFile, cfg.Paths.DiscountModelFile)
					return stage.Run(c.Context)
				},
			},
			newTrainExpiryCommand(),
			newSeedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("pipeline command failed")
	}
}

func runFullPipeline(c *cli.Context) error {
	cfg := config.Load()

	today, err := parseToday(c)
	if err != nil {
		return err
	}

	runner := pipeline.NewInventoryPipeline(cfg, c.String("input"), pipeline.Options{
		Today:           today,
		RefreshForecast: c.Bool("refresh-forecast"),
	})

	start := time.Now()
	if err := runner.Run(c.Context); err != nil {
		return err
	}

	logger.Log.Info().
		Dur("elapsed", time.Since(start)).
		Str("recommendations", cfg.Paths.RecommendationsFile).
		Msg("pipeline run completed")
	return nil
}
