package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/invwatch/internal/cache"
	"github.com/andresuchdata/invwatch/internal/config"
	"github.com/andresuchdata/invwatch/internal/domain"
	"github.com/andresuchdata/invwatch/internal/export"
	"github.com/andresuchdata/invwatch/internal/loader"
	"github.com/andresuchdata/invwatch/internal/repository/sqlite"
	"github.com/andresuchdata/invwatch/internal/service"
	"github.com/andresuchdata/invwatch/internal/storage"
	"github.com/andresuchdata/invwatch/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "report",
		Usage: "Generate an inventory health report from the flat input files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "Reference date (YYYY-MM-DD), defaults to the newest snapshot",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: xlsx or csv",
				Value: "xlsx",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Limit the report to one category",
			},
			&cli.StringFlag{
				Name:  "warehouse",
				Usage: "Limit the report to one warehouse",
			},
			&cli.StringFlag{
				Name:  "sku",
				Usage: "Limit the report to one SKU",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload the report to the configured object storage",
			},
		},
		Action: runReport,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("report failed")
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel("release")

	format := c.String("format")
	if format != "xlsx" && format != "csv" {
		return fmt.Errorf("unknown format %q, expected xlsx or csv", format)
	}

	tables, err := loader.Load(loader.Paths{
		SKUMaster: cfg.Data.SKUMasterPath,
		Demand:    cfg.Data.DemandPath,
		Inventory: cfg.Data.InventoryPath,
		Txn:       cfg.Data.TxnPath,
	})
	if err != nil {
		return fmt.Errorf("load input files: %w", err)
	}

	db, err := sqlite.NewDB()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.Ingest(c.Context, tables); err != nil {
		return fmt.Errorf("ingest input tables: %w", err)
	}

	repo := sqlite.NewInventoryRepository(db)
	metricsSvc := service.NewMetricsService(repo, cache.NewNoopMetricsCache())
	forecastSvc := service.NewForecastService(repo)

	var date time.Time
	if raw := c.String("date"); raw != "" {
		date, err = time.Parse(domain.DateOnly, raw)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
	} else {
		dates, err := metricsSvc.GetAvailableDates(c.Context, 1)
		if err != nil {
			return fmt.Errorf("resolve reference date: %w", err)
		}
		if len(dates) == 0 {
			return fmt.Errorf("no inventory snapshots loaded")
		}
		date = dates[0]
	}

	filter := domain.Filter{
		Category:  c.String("category"),
		Warehouse: c.String("warehouse"),
		SKU:       c.String("sku"),
	}
	policy := cfg.Policy

	metrics, err := metricsSvc.GetMetrics(c.Context, date, filter, policy)
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}
	kpi, err := metricsSvc.GetKPI(c.Context, date, filter, policy)
	if err != nil {
		return fmt.Errorf("compute kpi: %w", err)
	}
	actions, err := metricsSvc.GetActions(c.Context, date, filter, policy)
	if err != nil {
		return fmt.Errorf("compute actions: %w", err)
	}
	forecastResult, err := forecastSvc.GetForecast(c.Context, date, filter, domain.DefaultForecastConfig())
	if err != nil {
		return fmt.Errorf("compute forecast: %w", err)
	}

	report := &export.Report{
		Date:     date,
		Policy:   policy,
		KPI:      kpi,
		Metrics:  metrics,
		Actions:  actions,
		Forecast: forecastResult,
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv"
		if err := report.WriteMetricsCSV(&buf); err != nil {
			return err
		}
	default:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if err := report.WriteXLSX(&buf); err != nil {
			return err
		}
	}

	filename := fmt.Sprintf("inventory_report_%s.%s", date.Format(domain.DateOnly), format)

	if err := os.MkdirAll(cfg.Export.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(cfg.Export.OutputDir, filename)
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Log.Info().Str("path", outPath).Int("skus", len(metrics)).Msg("report written")

	if c.Bool("upload") {
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Export.Endpoint,
			AccessKey: cfg.Export.AccessKey,
			SecretKey: cfg.Export.SecretKey,
			Bucket:    cfg.Export.Bucket,
			Region:    cfg.Export.Region,
			UseSSL:    cfg.Export.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("init upload client: %w", err)
		}
		key := "reports/" + filename
		if err := client.UploadObject(c.Context, key, buf.Bytes(), contentType); err != nil {
			return fmt.Errorf("upload report: %w", err)
		}
		logger.Log.Info().Str("key", key).Msg("report uploaded")
	}

	return nil
}
