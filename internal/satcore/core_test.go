package satcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sentineld/plcwatch/internal/telemetry"
)

func tick(t *testing.T, c *Core, delta []telemetry.Clause) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	return c.UnsatRecycle(ctx, delta)
}

func TestCoreSatWithNoClauses(t *testing.T) {
	c := New(6)
	assert.Equal(t, Sat, tick(t, c, nil))
}

func TestCoreUnsatOnBottom(t *testing.T) {
	c := New(6)
	assert.Equal(t, Unsat, tick(t, c, []telemetry.Clause{telemetry.Bottom()}))
	assert.NotEmpty(t, c.GetUnsatCore())
}

func TestCoreRecoversImmediatelyOnNextPassingDelta(t *testing.T) {
	// Reset-and-reassert: the window holds only the current tick's delta,
	// so a passing tick clears a prior violation right away rather than
	// waiting for cap ticks to evict it.
	c := New(3)
	assert.Equal(t, Unsat, tick(t, c, []telemetry.Clause{telemetry.Bottom()}))
	assert.Equal(t, Sat, tick(t, c, nil))
	assert.Empty(t, c.GetUnsatCore())
}

func TestCoreTruncatesOversizedDeltaToCap(t *testing.T) {
	c := New(2)
	delta := []telemetry.Clause{telemetry.Bottom(), telemetry.Bottom(), telemetry.Bottom()}
	tick(t, c, delta)
	assert.LessOrEqual(t, len(c.window), c.cap)
}

func TestGetUnsatCoreEmptyWhenNotUnsat(t *testing.T) {
	c := New(6)
	assert.Equal(t, Sat, tick(t, c, nil))
	assert.Empty(t, c.GetUnsatCore())
}

func TestWindowBoundInvariant(t *testing.T) {
	c := New(3)
	for i := 0; i < 10; i++ {
		tick(t, c, nil)
		assert.LessOrEqual(t, len(c.window), c.cap)
	}
}
