// Command sentinel-anchor runs the batch anchor: it consumes evidence
// messages, buffers them, and closes/anchors a Merkle batch at every UTC
// hour boundary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentineld/plcwatch/internal/anchor"
	"github.com/sentineld/plcwatch/internal/broker"
	"github.com/sentineld/plcwatch/internal/config"
	"github.com/sentineld/plcwatch/internal/obsv"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	metricsAddr := flag.String("metrics-addr", ":9090", "address to serve /metrics on")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("sentinel-anchor: config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := obsv.NewMetrics()

	store, err := anchor.NewDurableStore(ctx, cfg.Database.PostgresURL)
	if err != nil {
		slog.Error("sentinel-anchor: durable store unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var submitter anchor.ChainSubmitter
	if cfg.Chain.RPC != "" {
		s, err := anchor.NewSubmitter(ctx, cfg.Chain.RPC, cfg.Chain.PrivateKey, cfg.Chain.Contract, cfg.Chain.ChainID, cfg.Chain.GasLimit)
		if err != nil {
			slog.Error("sentinel-anchor: chain submitter unavailable", "error", err)
			os.Exit(1)
		}
		defer s.Close()
		submitter = s
	}

	a := anchor.New(store, submitter, metrics)

	source := broker.NewKafkaSource(cfg.Broker.Brokers, cfg.Broker.ProofTopic, "sentinel-anchor")
	defer source.Close()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		slog.Info("sentinel-anchor: metrics listening", "addr", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
			slog.Error("sentinel-anchor: metrics http server stopped", "error", err)
		}
	}()

	slog.Info("sentinel-anchor: started")
	runFlushLoop(ctx, a, source, metrics)
}

func runFlushLoop(ctx context.Context, a *anchor.Anchor, source broker.Source, metrics *obsv.Metrics) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("sentinel-anchor: shutting down, flushing remaining buffer")
			a.Shutdown(context.Background(), time.Now())
			return
		default:
		}

		payload, err := source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.Warn("sentinel-anchor: receive failed", "error", err)
			continue
		}

		var msg broker.EvidenceMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("sentinel-anchor: dropping malformed evidence message", "error", err)
			metrics.ParseErrorsTotal.Inc()
			continue
		}

		a.Ingest(ctx, time.Now(), payload)
	}
}
