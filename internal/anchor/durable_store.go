package anchor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// MerkleBatch mirrors the Merkle batch's durable fields, plus a LeafCount
// convenience field used by the export surface.
type MerkleBatch struct {
	ID        int64
	TS        time.Time
	Root      [rootSize]byte
	TxHash    string
	DAG       []byte
	LeafCount int
}

// DurableStore is the anchor's durable row store, grounded on the
// teacher's "ensure table exists, then ExecContext" idiom against the same
// lib/pq driver.
type DurableStore struct {
	db *sql.DB
}

// NewDurableStore opens postgresURL and ensures merkle_batches exists.
// A connection failure here is fatal at startup — the caller decides how
// to exit.
func NewDurableStore(ctx context.Context, postgresURL string) (*DurableStore, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("anchor: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("anchor: ping postgres: %w", err)
	}

	const ddl = `
CREATE TABLE IF NOT EXISTS merkle_batches (
	id     BIGSERIAL PRIMARY KEY,
	ts     TIMESTAMPTZ NOT NULL,
	root   BYTEA NOT NULL,
	txhash TEXT NOT NULL,
	dag    BYTEA NOT NULL
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("anchor: ensure merkle_batches table: %w", err)
	}

	return &DurableStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *DurableStore) Close() error {
	return s.db.Close()
}

// Insert records one closed batch.
func (s *DurableStore) Insert(ctx context.Context, ts time.Time, root [rootSize]byte, txhash string, dag []byte) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO merkle_batches (ts, root, txhash, dag) VALUES ($1, $2, $3, $4) RETURNING id`,
		ts, root[:], txhash, dag,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("anchor: insert merkle_batches: %w", err)
	}
	return id, nil
}

// BatchForHour selects the row for hour (truncated to the UTC hour),
// serving the export surface.
func (s *DurableStore) BatchForHour(ctx context.Context, hour time.Time) (MerkleBatch, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ts, root, txhash, dag FROM merkle_batches WHERE date_trunc('hour', ts) = $1`,
		hour.Truncate(time.Hour).UTC(),
	)

	var b MerkleBatch
	var root, dag []byte
	if err := row.Scan(&b.ID, &b.TS, &root, &b.TxHash, &dag); err != nil {
		if err == sql.ErrNoRows {
			return MerkleBatch{}, false, nil
		}
		return MerkleBatch{}, false, fmt.Errorf("anchor: query merkle_batches: %w", err)
	}
	copy(b.Root[:], root)
	b.DAG = dag
	b.LeafCount = leafCountFromDAG(dag)
	return b, true, nil
}

// leafCountFromDAG recovers the original leaf count from a DAG blob by
// inverting the level-size recurrence Build used to construct it: each
// level's size is ceil(previous/2) until a singleton root remains.
func leafCountFromDAG(dag []byte) int {
	total := len(dag) / rootSize
	if total == 0 {
		return 0
	}
	// Find leaf count n such that the cumulative level sizes sum to total.
	for n := 1; n <= total; n++ {
		sum, size := 0, n
		for size > 0 {
			sum += size
			if size == 1 {
				break
			}
			size = (size + 1) / 2
		}
		if sum == total {
			return n
		}
	}
	return 0
}
