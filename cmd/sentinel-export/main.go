// Command sentinel-export renders one hour's anchored Merkle batch into the
// regulator-facing XML envelope and writes it to stdout or a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sentineld/plcwatch/internal/anchor"
	"github.com/sentineld/plcwatch/internal/config"
	"github.com/sentineld/plcwatch/internal/export"
	"github.com/sentineld/plcwatch/internal/obsv"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	hourFlag := flag.String("hour", "", "UTC hour to export, RFC3339 (defaults to the top of the current hour)")
	outPath := flag.String("out", "", "output file path (defaults to stdout)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("sentinel-export: config load failed", "error", err)
		os.Exit(1)
	}

	hour := time.Now().UTC().Truncate(time.Hour)
	if *hourFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *hourFlag)
		if err != nil {
			slog.Error("sentinel-export: invalid -hour value", "error", err)
			os.Exit(1)
		}
		hour = parsed
	}

	ctx := context.Background()
	metrics := obsv.NewMetrics()

	store, err := anchor.NewDurableStore(ctx, cfg.Database.PostgresURL)
	if err != nil {
		slog.Error("sentinel-export: durable store unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	doc, err := export.RenderHour(ctx, store, hour, metrics)
	if err != nil {
		slog.Error("sentinel-export: render failed", "error", err, "hour", hour.Format(time.RFC3339))
		os.Exit(1)
	}

	if *outPath == "" {
		fmt.Println(string(doc))
		return
	}
	if err := os.WriteFile(*outPath, doc, 0o644); err != nil {
		slog.Error("sentinel-export: write output file failed", "error", err, "path", *outPath)
		os.Exit(1)
	}
	slog.Info("sentinel-export: wrote envelope", "path", *outPath, "hour", hour.Format(time.RFC3339))
}
