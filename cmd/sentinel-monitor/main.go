// Command sentinel-monitor runs the streaming property monitor: it reads
// trace messages off the configured Kafka topic, ticks every configured
// property, and publishes evidence records for every verdict transition.
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

	"github.com/sentineld/plcwatch/internal/broker"
	"github.com/sentineld/plcwatch/internal/config"
	"github.com/sentineld/plcwatch/internal/infra"
	"github.com/sentineld/plcwatch/internal/monitor"
	"github.com/sentineld/plcwatch/internal/obsv"
	"github.com/sentineld/plcwatch/internal/operator"
	"github.com/sentineld/plcwatch/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	propertiesPath := flag.String("properties", "properties.yaml", "path to the configured property vector")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("sentinel-monitor: config load failed", "error", err)
		os.Exit(1)
	}

	props, err := config.LoadProperties(*propertiesPath)
	if err != nil {
		slog.Error("sentinel-monitor: properties load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := obsv.NewMetrics()

	var opts []monitor.Option
	opts = append(opts, monitor.WithMetrics(metrics))
	opts = append(opts, monitor.WithTickTimeout(time.Duration(cfg.Window.TickTimeoutMs)*time.Millisecond))
	opts = append(opts, monitor.WithClauseCapacity(cfg.Window.ClauseCapacity))

	if cfg.Snapshot.RedisAddr != "" {
		adapter, err := infra.NewGoRedisAdapter(cfg.Snapshot.RedisAddr, cfg.Snapshot.RedisPassword, cfg.Snapshot.RedisDB)
		if err != nil {
			slog.Warn("sentinel-monitor: redis unavailable, starting without restart continuity", "error", err)
		} else {
			defer adapter.Close()
			opts = append(opts, monitor.WithSnapshotStore(infra.NewRedisSnapshotStore(adapter)))
		}
	}

	m := monitor.NewMonitor(ctx, props, cfg.Window.Horizon, opts...)

	hub := operator.NewHub()
	go hub.Run()
	srv := operator.NewServer(operator.NewEvidenceRing(1000), m, hub)

	go serveHTTP(cfg.Operator.ListenAddr, srv.Router())

	source := broker.NewKafkaSource(cfg.Broker.Brokers, cfg.Broker.TraceTopic, cfg.Broker.GroupID)
	defer source.Close()
	sink := broker.NewKafkaSink(cfg.Broker.Brokers, cfg.Broker.ProofTopic)
	defer sink.Close()

	slog.Info("sentinel-monitor: started", "properties", len(props), "horizon", cfg.Window.Horizon)
	runIngestLoop(ctx, m, source, sink, srv, metrics)
}

func runIngestLoop(ctx context.Context, m *monitor.Monitor, source broker.Source, sink broker.Sink, srv *operator.Server, metrics *obsv.Metrics) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("sentinel-monitor: shutting down")
			return
		default:
		}

		payload, err := source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("sentinel-monitor: receive failed", "error", err)
			continue
		}

		var msg broker.TraceMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Warn("sentinel-monitor: dropping malformed trace message", "error", err)
			metrics.ParseErrorsTotal.Inc()
			continue
		}
		ts, numericTags, ok := msg.NumericTags()
		if !ok {
			slog.Warn("sentinel-monitor: dropping trace message missing ts or tags")
			metrics.ParseErrorsTotal.Inc()
			continue
		}

		sample := telemetry.Sample{}
		for name, value := range numericTags {
			if tag, ok := telemetry.ParseTagVar(name); ok {
				sample[tag] = value
			}
		}

		records := m.Ingest(ctx, ts, sample)
		srv.RecordEvidence(records)

		for _, rec := range records {
			out, err := json.Marshal(broker.EvidenceMessage{
				PropertyID: rec.PropertyID,
				StartTS:    rec.StartTS,
				EndTS:      rec.EndTS,
				TraceHash:  rec.TraceHash,
				CertHash:   rec.CertHash,
				Verdict:    rec.Verdict,
			})
			if err != nil {
				slog.Error("sentinel-monitor: failed to marshal evidence message", "error", err)
				continue
			}
			if err := sink.Send(ctx, out); err != nil {
				slog.Error("sentinel-monitor: failed to publish evidence message", "error", err)
			}
		}
	}
}

func serveHTTP(addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler)
	slog.Info("sentinel-monitor: operator surface listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("sentinel-monitor: operator http server stopped", "error", err)
	}
}
