package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/model"
	"github.com/expirywise/backend-go/pkg/logger"
)

func newTrainExpiryCommand() *cli.Command {
	return &cli.Command{
		Name:  "train-expiry",
		Usage: "Train the expiry classifier from a labeled processed CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Labeled processed CSV (defaults to the configured processed file)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Model artifact path (defaults to the configured model file)",
			},
		},
		Action: trainExpiryModel,
	}
}

func trainExpiryModel(c *cli.Context) error {
	cfg := config.Load()

	inputPath := c.String("input")
	if inputPath == "" {
		inputPath = cfg.Paths.ProcessedFile
	}
	outputPath := c.String("output")
	if outputPath == "" {
		outputPath = cfg.Paths.ExpiryModelFile
	}

	table, err := dataset.ReadCSV(inputPath)
	if err != nil {
		return fmt.Errorf("read training data: %w", err)
	}

	items, err := dataset.ItemsFromTable(table)
	if err != nil {
		return err
	}

	trained, err := model.TrainExpiryModel(items)
	if err != nil {
		return err
	}

	if err := model.SaveArtifact(outputPath, trained); err != nil {
		return err
	}

	logger.Log.Info().
		Int("rows", len(items)).
		Str("model", outputPath).
		Msg("expiry model trained")
	return nil
}
