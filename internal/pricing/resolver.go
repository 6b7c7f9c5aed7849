package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/glmrscan/transfer-indexer/internal/metrics"
	"github.com/glmrscan/transfer-indexer/internal/model"
	"github.com/glmrscan/transfer-indexer/internal/pricefeed"
)

// Strategy selects how cache misses are filled from the provider.
type Strategy string

const (
	// StrategyPoint fetches one date per provider call. Failures degrade to
	// the zero price for that call only.
	StrategyPoint Strategy = "point"

	// StrategyBulk warms the cache from the provider's full daily history in
	// one call. A failed warm aborts the batch.
	StrategyBulk Strategy = "bulk"
)

// Provider is the quote provider surface the resolver needs.
// *pricefeed.Client satisfies it.
type Provider interface {
	Quote(ctx context.Context, asset string, day model.Day) (decimal.Decimal, error)
	DailyQuotes(ctx context.Context, asset string) ([]pricefeed.DailyQuote, error)
}

// Config holds resolver settings.
type Config struct {
	Asset       string        // Provider market identifier
	Strategy    Strategy      // Miss-filling strategy
	QuotesBegin model.Day     // Days before this resolve to zero without I/O
	Cooldown    time.Duration // Minimum gap between outbound provider calls
}

// Resolver resolves a calendar day to the asset's market price.
//
// The zero price is the "no quote known" sentinel: it is returned for
// pre-cutoff days and on degraded point fetches, and cached for days the
// provider genuinely has no quote for. Missing prices never block balance
// accounting.
type Resolver struct {
	cfg      Config
	provider Provider
	cache    *Cache
	limiter  *rate.Limiter
	group    singleflight.Group
	logger   *slog.Logger
}

// NewResolver creates a resolver around the given cache. The cache is shared
// process-wide state owned by the caller; one resolver per process mutates it.
func NewResolver(cfg Config, provider Provider, cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.Cooldown > 0 {
		limit = rate.Every(cfg.Cooldown)
	}

	return &Resolver{
		cfg:      cfg,
		provider: provider,
		cache:    cache,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Resolve returns the quote for the given day.
//
// With the point strategy the returned error is always nil: unresolvable
// upstream failures degrade to the zero price so a stalled provider cannot
// block indexing. With the bulk strategy a failed warm is returned as an
// error and the whole batch must be retried.
func (r *Resolver) Resolve(ctx context.Context, day model.Day) (decimal.Decimal, error) {
	// The provider structurally cannot answer for pre-listing dates; skip
	// the fetch and leave the cache untouched.
	if day.Before(r.cfg.QuotesBegin) {
		return decimal.Zero, nil
	}

	if price, ok := r.cache.Get(day); ok {
		metrics.CacheHits.Inc()
		return price, nil
	}
	metrics.CacheMisses.Inc()

	if r.cfg.Strategy == StrategyBulk {
		return r.resolveBulk(ctx, day)
	}
	return r.resolvePoint(ctx, day)
}

// resolvePoint fetches exactly one date. Concurrent calls for the same day
// coalesce into one provider request.
func (r *Resolver) resolvePoint(ctx context.Context, day model.Day) (decimal.Decimal, error) {
	v, err, _ := r.group.Do(day.String(), func() (any, error) {
		// A coalesced caller may have filled the entry already.
		if price, ok := r.cache.Get(day); ok {
			return price, nil
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		metrics.ProviderRequests.WithLabelValues("point").Inc()
		price, err := r.provider.Quote(ctx, r.cfg.Asset, day)
		if err != nil {
			metrics.ProviderErrors.WithLabelValues("point").Inc()
			return nil, err
		}

		r.cache.Set(day, price)
		return price, nil
	})
	if err != nil {
		// Leave the day unpopulated so the next resolution retries, and
		// degrade this call to the zero sentinel.
		r.cache.Delete(day)
		r.logger.Warn("point quote fetch failed, using zero price",
			"asset", r.cfg.Asset,
			"day", day.String(),
			"err", err,
		)
		return decimal.Zero, nil
	}
	return v.(decimal.Decimal), nil
}

// resolveBulk warms the cache from the provider's full daily history.
// Concurrent misses share one warm call.
func (r *Resolver) resolveBulk(ctx context.Context, day model.Day) (decimal.Decimal, error) {
	_, err, _ := r.group.Do("bulk-warm", func() (any, error) {
		// A previous coalesced warm may already cover this day.
		if _, ok := r.cache.Get(day); ok {
			return nil, nil
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		metrics.ProviderRequests.WithLabelValues("bulk").Inc()
		quotes, err := r.provider.DailyQuotes(ctx, r.cfg.Asset)
		if err != nil {
			metrics.ProviderErrors.WithLabelValues("bulk").Inc()
			return nil, err
		}

		// The provider returns its whole retention window; only days we
		// have not seen yet are added.
		warmed := 0
		for _, q := range quotes {
			if r.cache.SetIfAbsent(q.Day, q.Open) {
				warmed++
			}
		}

		r.logger.Debug("price cache warmed",
			"asset", r.cfg.Asset,
			"fetched", len(quotes),
			"new", warmed,
			"cache_size", r.cache.Len(),
			"duration", time.Since(start),
		)
		return nil, nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("bulk quote warm: %w", err)
	}

	if price, ok := r.cache.Get(day); ok {
		return price, nil
	}

	// The warm succeeded but the provider has no quote for this day
	// (a gap or a pre-listing date past the cutoff). Pin the zero sentinel
	// so the miss cannot loop into repeated warms.
	r.cache.Set(day, decimal.Zero)
	return decimal.Zero, nil
}
