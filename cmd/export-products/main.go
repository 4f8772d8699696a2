// Command export-products writes the active storefront catalog, with
// metafields, to a CSV file and, when export storage is enabled, to S3.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/ecommerce"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
	"github.com/homecooks/profitability/internal/infrastructure/storage"
)

func main() {
	var (
		output       string
		noMetafields bool
		logLevel     string
	)
	flag.StringVar(&output, "output", "", "Output file (default: shopify_products_<timestamp>.csv)")
	flag.BoolVar(&noMetafields, "no-metafields", false, "Skip product metafields")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(logger.CLIConfig(logLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, output, !noMetafields, log); err != nil {
		log.Error("Product export failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, output string, metafields bool, log *zap.Logger) error {
	if err := cfg.RequireShopify(); err != nil {
		return err
	}
	shopify, err := ecommerce.NewShopifyAdapter(ecommerce.ShopifyConfigFrom(cfg.Shopify), ecommerce.WithShopifyLogger(log))
	if err != nil {
		return err
	}

	svc := reportapp.NewProductExportService(shopify, reportapp.WithLogger(log))
	export, err := svc.Build(ctx, metafields)
	if err != nil {
		return err
	}
	if output != "" {
		export.Name = filepath.Base(output)
	}

	sinks, err := exportSinks(ctx, cfg.Export, filepath.Dir(output), log)
	if err != nil {
		return err
	}
	locations, err := svc.Publish(ctx, export, sinks...)
	if err != nil {
		return err
	}

	log.Info("Product export complete",
		zap.Int("products", export.Products),
		zap.Int("metafield_columns", len(export.MetafieldKeys)),
		zap.Int("metafield_errors", export.MetafieldErrors),
	)
	for _, loc := range locations {
		fmt.Println(loc)
	}
	return nil
}

// exportSinks always writes locally and adds S3 when export storage is enabled
func exportSinks(ctx context.Context, cfg config.ExportConfig, dir string, log *zap.Logger) ([]reportapp.ExportSink, error) {
	sinks := []reportapp.ExportSink{storage.NewLocalExporter(dir)}
	if !cfg.Enabled {
		return sinks, nil
	}
	s3, err := storage.NewS3Exporter(ctx, cfg, storage.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 exporter: %w", err)
	}
	return append(sinks, s3), nil
}
