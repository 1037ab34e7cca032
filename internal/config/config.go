// Package config loads sentinel configuration from an optional YAML base
// file plus environment-variable overrides, mirroring the override style
// used across the OCX backend: decode the file (if present), then let every
// recognized env var win.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// =============================================================================
// Sentinel Configuration
// =============================================================================

type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Window   WindowConfig   `yaml:"window"`
	Database DatabaseConfig `yaml:"database"`
	Chain    ChainConfig    `yaml:"chain"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Operator OperatorConfig `yaml:"operator"`
}

// BrokerConfig names the Kafka endpoints and topics carrying trace samples
// in and evidence records out.
type BrokerConfig struct {
	Brokers    string `yaml:"brokers"`
	TraceTopic string `yaml:"trace_topic"`
	ProofTopic string `yaml:"proof_topic"`
	GroupID    string `yaml:"group_id"`
}

// WindowConfig controls the property monitor's sliding window and per-tick
// solver budget.
type WindowConfig struct {
	Horizon        int `yaml:"horizon"`
	TickTimeoutMs  int `yaml:"tick_timeout_ms"`
	ClauseCapacity int `yaml:"clause_capacity"`
}

// DatabaseConfig is the anchor pipeline's durable store connection.
type DatabaseConfig struct {
	PostgresURL string `yaml:"postgres_url"`
}

// ChainConfig carries the parameters needed to submit anchor(bytes32) to
// the configured Polygon contract.
type ChainConfig struct {
	RPC        string `yaml:"rpc"`
	PrivateKey string `yaml:"private_key"`
	Contract   string `yaml:"contract"`
	GasLimit   uint64 `yaml:"gas_limit"`
	ChainID    int64  `yaml:"chain_id"`
}

// SnapshotConfig configures the optional Redis-backed restart-continuity
// store used by internal/monitor. Addr == "" disables it; the monitor then
// starts cold with the documented all-true initial verdict.
type SnapshotConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// OperatorConfig is the operator-facing HTTP/websocket surface.
type OperatorConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Load reads masterPath (if it exists) then applies environment overrides
// and defaults. A missing file is not an error — env vars and defaults
// alone are sufficient to run.
func Load(masterPath string) (*Config, error) {
	cfg := &Config{}

	if masterPath != "" {
		f, err := os.Open(masterPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else {
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overlays every recognized environment variable plus the
// ambient knobs layered on top of the core broker/window/chain settings.
func (c *Config) applyEnv() {
	c.Broker.Brokers = getEnv("KAFKA_BROKERS", c.Broker.Brokers)
	c.Broker.TraceTopic = getEnv("KAFKA_TRACE_TOPIC", c.Broker.TraceTopic)
	c.Broker.ProofTopic = getEnv("KAFKA_PROOF_TOPIC", c.Broker.ProofTopic)
	c.Broker.GroupID = getEnv("KAFKA_GROUP_ID", c.Broker.GroupID)

	if v := getEnvInt("WINDOW_HORIZON", 0); v > 0 {
		c.Window.Horizon = v
	}
	if v := getEnvInt("SENTINEL_TICK_TIMEOUT_MS", 0); v > 0 {
		c.Window.TickTimeoutMs = v
	}
	if v := getEnvInt("SENTINEL_CLAUSE_CAPACITY", 0); v > 0 {
		c.Window.ClauseCapacity = v
	}

	c.Database.PostgresURL = getEnv("PG_URL", c.Database.PostgresURL)

	c.Chain.RPC = getEnv("POLYGON_RPC", c.Chain.RPC)
	c.Chain.PrivateKey = getEnv("POLYGON_PRIVATE_KEY", c.Chain.PrivateKey)
	c.Chain.Contract = getEnv("ANCHOR_CONTRACT", c.Chain.Contract)
	if v := getEnvInt("ANCHOR_GAS_LIMIT", 0); v > 0 {
		c.Chain.GasLimit = uint64(v)
	}
	if v := getEnvInt("ANCHOR_CHAIN_ID", 0); v > 0 {
		c.Chain.ChainID = int64(v)
	}

	c.Snapshot.RedisAddr = getEnv("REDIS_ADDR", c.Snapshot.RedisAddr)
	c.Snapshot.RedisPassword = getEnv("REDIS_PASSWORD", c.Snapshot.RedisPassword)
	if v := getEnvInt("REDIS_DB", -1); v >= 0 {
		c.Snapshot.RedisDB = v
	}

	c.Operator.ListenAddr = getEnv("SENTINEL_OPERATOR_ADDR", c.Operator.ListenAddr)
}

// applyDefaults sets sensible defaults for zero-valued config fields.
func (c *Config) applyDefaults() {
	if c.Broker.Brokers == "" {
		c.Broker.Brokers = "localhost:9092"
	}
	if c.Broker.TraceTopic == "" {
		c.Broker.TraceTopic = "plc.trace"
	}
	if c.Broker.ProofTopic == "" {
		c.Broker.ProofTopic = "sentinel.proofs"
	}
	if c.Broker.GroupID == "" {
		c.Broker.GroupID = "sentinel-monitor"
	}
	if c.Window.Horizon == 0 {
		c.Window.Horizon = 6
	}
	if c.Window.TickTimeoutMs == 0 {
		c.Window.TickTimeoutMs = 100
	}
	if c.Window.ClauseCapacity == 0 {
		c.Window.ClauseCapacity = c.Window.Horizon
	}
	if c.Chain.GasLimit == 0 {
		c.Chain.GasLimit = 80000
	}
	if c.Chain.ChainID == 0 {
		c.Chain.ChainID = 137
	}
	if c.Operator.ListenAddr == "" {
		c.Operator.ListenAddr = ":8090"
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// loadYAML decodes path into v. Used by LoadProperties, which treats a
// missing file as an error, since a monitor with zero properties is never a
// valid run. Load opens its own file so that absence is not an error there.
func loadYAML(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewDecoder(f).Decode(v)
}
