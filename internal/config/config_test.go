package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFileOrEnv(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:9092", cfg.Broker.Brokers)
	assert.Equal(t, "plc.trace", cfg.Broker.TraceTopic)
	assert.Equal(t, "sentinel.proofs", cfg.Broker.ProofTopic)
	assert.Equal(t, 6, cfg.Window.Horizon)
	assert.Equal(t, 100, cfg.Window.TickTimeoutMs)
	assert.Equal(t, 6, cfg.Window.ClauseCapacity)
	assert.Equal(t, uint64(80000), cfg.Chain.GasLimit)
	assert.Equal(t, int64(137), cfg.Chain.ChainID)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("WINDOW_HORIZON", "10")
	t.Setenv("ANCHOR_CHAIN_ID", "1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "broker-1:9092,broker-2:9092", cfg.Broker.Brokers)
	assert.Equal(t, 10, cfg.Window.Horizon)
	assert.Equal(t, int64(1), cfg.Chain.ChainID)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := Load("/no/such/sentinel-config.yaml")
	assert.NoError(t, err)
}
