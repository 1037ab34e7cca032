package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sentineld/plcwatch/internal/monitor"
)

// RedisSnapshotStore implements monitor.SnapshotStore on top of
// GoRedisAdapter: one JSON-encoded value per property, keyed by a fixed
// prefix so the monitor's keyspace doesn't collide with other Redis users.
type RedisSnapshotStore struct {
	adapter *GoRedisAdapter
	prefix  string
}

// NewRedisSnapshotStore wraps an already-connected GoRedisAdapter.
func NewRedisSnapshotStore(adapter *GoRedisAdapter) *RedisSnapshotStore {
	return &RedisSnapshotStore{adapter: adapter, prefix: "sentinel:snapshot:"}
}

func (s *RedisSnapshotStore) key(propertyID string) string {
	return s.prefix + propertyID
}

// Save persists state for propertyID.
func (s *RedisSnapshotStore) Save(ctx context.Context, propertyID string, state monitor.PropertyState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("infra: marshal snapshot: %w", err)
	}
	return s.adapter.Set(ctx, s.key(propertyID), b)
}

// Load returns the persisted state for propertyID, ok=false if none exists.
func (s *RedisSnapshotStore) Load(ctx context.Context, propertyID string) (monitor.PropertyState, bool, error) {
	b, err := s.adapter.Get(ctx, s.key(propertyID))
	if errors.Is(err, ErrNotFound) {
		return monitor.PropertyState{}, false, nil
	}
	if err != nil {
		return monitor.PropertyState{}, false, err
	}
	var state monitor.PropertyState
	if err := json.Unmarshal(b, &state); err != nil {
		return monitor.PropertyState{}, false, fmt.Errorf("infra: unmarshal snapshot: %w", err)
	}
	return state, true, nil
}
