package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Auction       AuctionConfig       `yaml:"auction"`
	Realtime      RealtimeConfig      `yaml:"realtime"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL      string `yaml:"url"`
	NKeySeed string `yaml:"nkey_seed"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	BidRatePerSec  float64  `yaml:"bid_rate_per_sec"`
	BidBurst       int      `yaml:"bid_burst"`
}

// JWTConfig holds JWT verification configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// AuctionConfig holds defaults used when a team's budget row is first seeded.
type AuctionConfig struct {
	StartingBalance int64  `yaml:"starting_balance"`
	RosterSlotsMax  int    `yaml:"roster_slots_max"`
	CurrencyTrack   string `yaml:"currency_track"`
	SettlementMode  string `yaml:"settlement_mode"`
}

// RealtimeConfig selects the cross-instance relay for round events.
type RealtimeConfig struct {
	Backend        string   `yaml:"backend"` // bus|redis
	SubscriberBuf  int      `yaml:"subscriber_buffer"`
	AllowedOrigins []string `yaml:"-"`
}

// RedisConfig holds Redis configuration for the redis relay backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig holds the roster assignment sink configuration.
// No brokers means assignments are only logged.
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	RosterTopic string   `yaml:"roster_topic"`
}

// QueueConfig holds River worker configuration.
type QueueConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxWorkers int  `yaml:"max_workers"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("NATS_NKEY_SEED"); v != "" {
		cfg.NATS.NKeySeed = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.DefaultTTL = d
		}
	}
	if v := os.Getenv("AUCTION_STARTING_BALANCE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Auction.StartingBalance = n
		}
	}
	if v := os.Getenv("AUCTION_ROSTER_SLOTS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auction.RosterSlotsMax = n
		}
	}
	if v := os.Getenv("AUCTION_SETTLEMENT_MODE"); v != "" {
		cfg.Auction.SettlementMode = v
	}
	if v := os.Getenv("REALTIME_BACKEND"); v != "" {
		cfg.Realtime.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("QUEUE_ENABLED"); v != "" {
		cfg.Queue.Enabled = v == "true"
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.BidRatePerSec == 0 {
		cfg.HTTP.BidRatePerSec = 10
	}
	if cfg.HTTP.BidBurst == 0 {
		cfg.HTTP.BidBurst = 20
	}
	if cfg.Auction.StartingBalance == 0 {
		cfg.Auction.StartingBalance = 1000
	}
	if cfg.Auction.RosterSlotsMax == 0 {
		cfg.Auction.RosterSlotsMax = 25
	}
	if cfg.Auction.CurrencyTrack == "" {
		cfg.Auction.CurrencyTrack = "football"
	}
	if cfg.Auction.SettlementMode == "" {
		cfg.Auction.SettlementMode = "incremental"
	}
	if cfg.Realtime.Backend == "" {
		cfg.Realtime.Backend = "bus"
	}
	if cfg.Realtime.SubscriberBuf == 0 {
		cfg.Realtime.SubscriberBuf = 64
	}
	cfg.Realtime.AllowedOrigins = cfg.HTTP.AllowedOrigins
	if cfg.Kafka.RosterTopic == "" {
		cfg.Kafka.RosterTopic = "auction.roster.assignments"
	}
	if cfg.Queue.MaxWorkers == 0 {
		cfg.Queue.MaxWorkers = 25
	}
	if cfg.Observability.Environment == "" {
		cfg.Observability.Environment = "production"
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
