package config

import (
	"errors"
	"fmt"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Chain.Asset == "" {
		return errors.New("chain.asset is required")
	}
	if _, err := model.ParseDay(c.Chain.QuotesBegin); err != nil {
		return fmt.Errorf("chain.quotes_begin: %w", err)
	}

	if c.Provider.Strategy != "point" && c.Provider.Strategy != "bulk" {
		return fmt.Errorf("provider.strategy must be \"point\" or \"bulk\", got %q", c.Provider.Strategy)
	}
	if c.Provider.Cooldown < 0 {
		return errors.New("provider.cooldown must be >= 0")
	}
	if c.Provider.MaxRetries < 0 {
		return errors.New("provider.max_retries must be >= 0")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Indexer.BatchSize < 1 {
		return errors.New("indexer.batch_size must be >= 1")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

// QuotesBegin returns the parsed quotes-begin cutoff day. Call only after
// Validate has succeeded.
func (c *Config) QuotesBegin() model.Day {
	return model.MustParseDay(c.Chain.QuotesBegin)
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
