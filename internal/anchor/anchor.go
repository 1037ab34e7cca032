package anchor

import (
	"context"
	"log/slog"
	"time"

	"github.com/sentineld/plcwatch/internal/circuitbreaker"
	"github.com/sentineld/plcwatch/internal/obsv"
)

// RowWriter persists one closed batch. *DurableStore implements this.
type RowWriter interface {
	Insert(ctx context.Context, ts time.Time, root [rootSize]byte, txhash string, dag []byte) (int64, error)
}

// BatchReader serves the export surface. *DurableStore
// implements this.
type BatchReader interface {
	BatchForHour(ctx context.Context, hour time.Time) (MerkleBatch, bool, error)
}

// ChainSubmitter submits a Merkle root to the external chain. *Submitter
// implements this.
type ChainSubmitter interface {
	Submit(ctx context.Context, root [rootSize]byte) (string, error)
}

// Anchor is the batch anchor driver: an in-memory FIFO of
// evidence byte blobs, flushed exactly once per hour boundary.
type Anchor struct {
	store     RowWriter
	submitter ChainSubmitter
	breakers  *circuitbreaker.AnchorCircuitBreakers
	metrics   *obsv.Metrics

	buffer        [][]byte
	lastFlushHour time.Time // zero until the first flush
}

// New wraps an already-opened durable store and the chain submitter in the
// anchor's circuit breakers.
// A nil submitter is accepted for local/dev runs that only exercise the
// Merkle+store path without a live chain RPC.
func New(store RowWriter, submitter ChainSubmitter, metrics *obsv.Metrics) *Anchor {
	return &Anchor{
		store:     store,
		submitter: submitter,
		breakers:  circuitbreaker.NewAnchorCircuitBreakers(),
		metrics:   metrics,
	}
}

// Ingest appends bytes to the buffer. The first time wall-clock now enters
// a new UTC hour relative to the last flush, the buffer is flushed before
// payload is appended, so payload opens the next batch. The gate uses the
// robust rule of comparing last-flush hour to current hour rather than the
// fragile "minute==0 and second<5" rule.
func (a *Anchor) Ingest(ctx context.Context, now time.Time, payload []byte) {
	currentHour := now.UTC().Truncate(time.Hour)
	if a.lastFlushHour.IsZero() {
		a.lastFlushHour = currentHour
	} else if currentHour.After(a.lastFlushHour) {
		a.Flush(ctx, now)
	}

	a.buffer = append(a.buffer, payload)
}

// Flush closes the current buffer into a Merkle batch, submits it to the
// chain, and records it durably. On chain-submission failure the drained
// batch is retained (not dropped) and retried on the next call.
func (a *Anchor) Flush(ctx context.Context, now time.Time) {
	if len(a.buffer) == 0 {
		return
	}

	start := time.Now()
	batch := a.buffer
	hour := now.UTC().Truncate(time.Hour)

	tree := Build(batch)

	txhash, err := a.submit(ctx, tree.Root)
	if err != nil {
		slog.Error("anchor: chain submission failed, retaining batch for retry", "error", err, "leaves", len(batch))
		if a.metrics != nil {
			a.metrics.AnchorSubmitFailureTotal.Inc()
			a.metrics.AnchorSubmitRetryTotal.Inc()
		}
		a.lastFlushHour = hour
		return // buffer retained: batch is NOT cleared
	}

	a.buffer = nil
	a.lastFlushHour = hour

	if _, err := a.writeRow(ctx, hour, tree.Root, txhash, tree.DAG); err != nil {
		slog.Error("anchor: durable store write failed, batch lost", "error", err, "leaves", len(batch))
		if a.metrics != nil {
			a.metrics.BatchLossTotal.Inc()
		}
		return
	}

	if a.metrics != nil {
		a.metrics.BatchesFlushedTotal.Inc()
		a.metrics.MerkleLeavesTotal.Add(float64(len(batch)))
		a.metrics.FlushDuration.Observe(time.Since(start).Seconds())
	}
}

// Shutdown drains the buffer with one final flush at the current wall
// clock.
func (a *Anchor) Shutdown(ctx context.Context, now time.Time) {
	a.Flush(ctx, now)
}

func (a *Anchor) submit(ctx context.Context, root [rootSize]byte) (string, error) {
	if a.submitter == nil {
		return "", nil
	}
	return circuitbreaker.ExecuteWithFallback(
		a.breakers.ChainSubmit,
		func() (string, error) { return a.submitter.Submit(ctx, root) },
		func(err error) (string, error) { return "", err },
	)
}

func (a *Anchor) writeRow(ctx context.Context, hour time.Time, root [rootSize]byte, txhash string, dag []byte) (int64, error) {
	return circuitbreaker.ExecuteWithFallback(
		a.breakers.DurableWrite,
		func() (int64, error) { return a.store.Insert(ctx, hour, root, txhash, dag) },
		func(err error) (int64, error) { return 0, err },
	)
}
