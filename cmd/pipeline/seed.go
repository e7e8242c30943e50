package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/expirywise/backend-go/internal/config"
	"github.com/expirywise/backend-go/internal/dataset"
	"github.com/expirywise/backend-go/internal/types"
	"github.com/expirywise/backend-go/pkg/logger"
)

const createRecommendationsTable = `
CREATE TABLE IF NOT EXISTS recommendations (
    product_id TEXT PRIMARY KEY,
    product_name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    supplier_name TEXT NOT NULL DEFAULT '',
    stock_quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
    risk_level TEXT NOT NULL,
    predicted_action TEXT NOT NULL,
    predicted_discount_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertRecommendation = `
INSERT INTO recommendations (
    product_id, product_name, category, supplier_name,
    stock_quantity, risk_level, predicted_action, predicted_discount_percent, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
ON CONFLICT (product_id) DO UPDATE SET
    product_name = EXCLUDED.product_name,
    category = EXCLUDED.category,
    supplier_name = EXCLUDED.supplier_name,
    stock_quantity = EXCLUDED.stock_quantity,
    risk_level = EXCLUDED.risk_level,
    predicted_action = EXCLUDED.predicted_action,
    predicted_discount_percent = EXCLUDED.predicted_discount_percent,
    updated_at = NOW()`

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, types.DBKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(types.DBKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the recommendations artifact into Postgres for the dashboard API",
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{
				Name:  "file",
				Usage: "Recommendations CSV (defaults to the configured artifact path)",
			},
		},
		Before: initDB,
		After:  closeDB,
		Action: seedRecommendations,
	}
}

func seedRecommendations(c *cli.Context) error {
	db, ok := c.Context.Value(types.DBKey).(*sql.DB)
	if !ok || db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	path := c.String("file")
	if path == "" {
		path = config.Load().Paths.RecommendationsFile
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recommendations file: %w", err)
	}
	defer f.Close()

	if _, err := db.ExecContext(c.Context, createRecommendationsTable); err != nil {
		return fmt.Errorf("create recommendations table: %w", err)
	}

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{
		dataset.ColProductID, dataset.ColProductName, dataset.ColRiskLevel, dataset.ColPredictedAction,
	} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("recommendations file is missing column %s", required)
		}
	}

	field := func(record []string, name string) string {
		if idx, ok := col[name]; ok && idx < len(record) {
			return record[idx]
		}
		return ""
	}

	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(c.Context, upsertRecommendation)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read record: %w", err)
		}

		stock, _ := strconv.ParseFloat(field(record, dataset.ColStockQuantity), 64)
		discount, _ := strconv.ParseFloat(field(record, dataset.ColPredictedDiscPct), 64)

		if _, err := stmt.ExecContext(c.Context,
			field(record, dataset.ColProductID),
			field(record, dataset.ColProductName),
			field(record, dataset.ColCategory),
			field(record, dataset.ColSupplierName),
			stock,
			field(record, dataset.ColRiskLevel),
			field(record, dataset.ColPredictedAction),
			discount,
		); err != nil {
			return fmt.Errorf("upsert recommendation %s: %w", field(record, dataset.ColProductID), err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Log.Info().Int("rows", count).Str("file", path).Msg("recommendations seeded")
	return nil
}
