package config

import "time"

// Config is the root configuration for an indexer instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Chain    ChainConfig    `yaml:"chain"`
	Provider ProviderConfig `yaml:"provider"`
	Database DatabaseConfig `yaml:"database"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this indexer.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ChainConfig selects the asset being indexed and the earliest date the
// quote provider can answer for it.
type ChainConfig struct {
	Asset       string `yaml:"asset"`        // Provider market identifier (e.g. "glmr-usd")
	QuotesBegin string `yaml:"quotes_begin"` // ISO date; earlier transfers get the zero price
}

// ProviderConfig holds quote-provider settings.
type ProviderConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	Strategy     string        `yaml:"strategy"` // "point" or "bulk"
	Cooldown     time.Duration `yaml:"cooldown"` // Minimum gap between outbound calls
}

// DatabaseConfig holds the PostgreSQL connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// IndexerConfig holds batch processing settings.
type IndexerConfig struct {
	FeedPath  string `yaml:"feed_path"`  // JSONL replay file with decoded transfer events
	BatchSize int    `yaml:"batch_size"` // Events per processing cycle
}

// MetricsConfig holds the health/metrics HTTP server settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
