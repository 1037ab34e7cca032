package anchor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	rows []storedRow
	fail bool
}

type storedRow struct {
	ts     time.Time
	root   [rootSize]byte
	txhash string
	dag    []byte
}

func (f *fakeStore) Insert(_ context.Context, ts time.Time, root [rootSize]byte, txhash string, dag []byte) (int64, error) {
	if f.fail {
		return 0, errors.New("durable store unavailable")
	}
	f.rows = append(f.rows, storedRow{ts: ts, root: root, txhash: txhash, dag: dag})
	return int64(len(f.rows)), nil
}

type fakeSubmitter struct {
	fail bool
}

func (f *fakeSubmitter) Submit(_ context.Context, root [rootSize]byte) (string, error) {
	if f.fail {
		return "", errors.New("chain rpc unavailable")
	}
	return "0xdeadbeef", nil
}

// Scenario 6: three evidence blobs within the hour, cross the
// boundary, expect exactly one row whose root matches and whose dag is
// 32*6 bytes (3 leaves + 2 level-1 nodes + 1 root).
func TestAnchorHourlyFlush(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	submitter := &fakeSubmitter{}
	a := New(store, submitter, nil)

	hour := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a.Ingest(ctx, hour.Add(10*time.Minute), []byte("blob-0"))
	a.Ingest(ctx, hour.Add(20*time.Minute), []byte("blob-1"))
	a.Ingest(ctx, hour.Add(30*time.Minute), []byte("blob-2"))

	nextHour := hour.Add(time.Hour).Add(2 * time.Second)
	a.Ingest(ctx, nextHour, []byte("blob-3"))

	require.Len(t, store.rows, 1)
	row := store.rows[0]
	assert.Equal(t, rootSize*6, len(row.dag))

	expected := Build([][]byte{[]byte("blob-0"), []byte("blob-1"), []byte("blob-2")})
	assert.Equal(t, expected.Root, row.root)
}

func TestAnchorEmptyFlushIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	a := New(store, &fakeSubmitter{}, nil)

	a.Flush(ctx, time.Now())

	assert.Empty(t, store.rows)
}

// Retention on chain-submission failure: the
// drained batch must survive and be retried at the next boundary, not be
// lost.
func TestAnchorRetainsBatchOnChainFailure(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	failing := &fakeSubmitter{fail: true}
	a := New(store, failing, nil)

	hour := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	a.Ingest(ctx, hour.Add(10*time.Minute), []byte("blob-0"))
	nextHour := hour.Add(time.Hour).Add(2 * time.Second)
	a.Ingest(ctx, nextHour, []byte("blob-1"))

	assert.Empty(t, store.rows, "no row written while chain submission keeps failing")
	assert.Len(t, a.buffer, 2, "both blobs retained across the failed boundary")

	failing.fail = false
	a.Flush(ctx, nextHour.Add(time.Minute))

	require.Len(t, store.rows, 1)
	assert.Equal(t, 2, leafCountFromDAG(store.rows[0].dag))
}

func TestAnchorShutdownFlushesRemainder(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	a := New(store, &fakeSubmitter{}, nil)

	a.Ingest(ctx, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), []byte("blob-0"))
	a.Shutdown(ctx, time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC))

	require.Len(t, store.rows, 1)
}
