// Command revenue-check compares the storefront's placed revenue for a week
// with what the dashboard counts as dispatched in the same week.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	reportapp "github.com/homecooks/profitability/internal/application/report"
	"github.com/homecooks/profitability/internal/bootstrap"
	"github.com/homecooks/profitability/internal/domain/report"
	"github.com/homecooks/profitability/internal/infrastructure/config"
	"github.com/homecooks/profitability/internal/infrastructure/logger"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		start    string
		end      string
		logLevel string
	)
	flag.StringVar(&start, "start", "", "First day YYYY-MM-DD (default: last Monday before this week)")
	flag.StringVar(&end, "end", "", "Last day YYYY-MM-DD (default: the Sunday after start)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(logger.CLIConfig(logLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	w, err := window(start, end, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, w, log); err != nil {
		log.Error("Revenue check failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, w report.Window, log *zap.Logger) error {
	platforms, err := bootstrap.NewPlatforms(cfg, log)
	if err != nil {
		return err
	}
	costs, err := bootstrap.NewCosts(cfg, platforms.Shopify, nil, log)
	if err != nil {
		return err
	}
	defer costs.Close()

	d2c := reportapp.NewD2CService(platforms.Shopify, platforms.Fulfillment, costs, nil, reportapp.WithLogger(log))
	check := reportapp.NewRevenueCheckService(platforms.Shopify, d2c)

	log.Info("Checking revenue",
		zap.String("start", w.Start.Format(dateLayout)),
		zap.String("end", w.End.Format(dateLayout)),
	)
	r, err := check.Check(ctx, w)
	if err != nil {
		return err
	}
	return r.WriteText(os.Stdout)
}

// window resolves the flags. Without flags it is the previous Monday..Sunday.
func window(start, end string, now time.Time) (report.Window, error) {
	if start == "" && end == "" {
		return reportapp.PreviousWeek(now), nil
	}
	if start == "" {
		return report.Window{}, errors.New("-start is required with -end")
	}
	s, err := time.ParseInLocation(dateLayout, start, now.Location())
	if err != nil {
		return report.Window{}, fmt.Errorf("invalid -start %q: %w", start, err)
	}
	e := s.AddDate(0, 0, 6)
	if end != "" {
		if e, err = time.ParseInLocation(dateLayout, end, now.Location()); err != nil {
			return report.Window{}, fmt.Errorf("invalid -end %q: %w", end, err)
		}
	}
	return report.NewWindow(s, e)
}
