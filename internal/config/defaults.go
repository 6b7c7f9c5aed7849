package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAsset           = "glmr-usd"
	DefaultQuotesBegin     = "2022-01-12" // First day the provider has quotes for the asset
	DefaultProviderURL     = "https://api.cryptowat.ch/v2"
	DefaultProviderTimeout = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryBackoff    = 1 * time.Second
	DefaultStrategy        = "bulk"
	DefaultCooldown        = 5 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 10
	DefaultMinConns        = 2
	DefaultBatchSize       = 100
	DefaultMetricsPort     = 9090
	DefaultMetricsPath     = "/metrics"
)

func (c *Config) applyDefaults() {
	// Chain defaults
	if c.Chain.Asset == "" {
		c.Chain.Asset = DefaultAsset
	}
	if c.Chain.QuotesBegin == "" {
		c.Chain.QuotesBegin = DefaultQuotesBegin
	}

	// Provider defaults
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultProviderURL
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultProviderTimeout
	}
	if c.Provider.MaxRetries == 0 {
		c.Provider.MaxRetries = DefaultMaxRetries
	}
	if c.Provider.RetryBackoff == 0 {
		c.Provider.RetryBackoff = DefaultRetryBackoff
	}
	if c.Provider.Strategy == "" {
		c.Provider.Strategy = DefaultStrategy
	}
	if c.Provider.Cooldown == 0 {
		c.Provider.Cooldown = DefaultCooldown
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Indexer defaults
	if c.Indexer.BatchSize == 0 {
		c.Indexer.BatchSize = DefaultBatchSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
