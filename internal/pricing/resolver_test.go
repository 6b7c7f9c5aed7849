package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glmrscan/transfer-indexer/internal/model"
	"github.com/glmrscan/transfer-indexer/internal/pricefeed"
)

var (
	cutoff  = model.MustParseDay("2022-01-12")
	listed  = model.MustParseDay("2022-02-01")
	preCut  = model.MustParseDay("2022-01-01")
	errDown = errors.New("provider down")
)

// fakeProvider counts calls and serves configurable results.
type fakeProvider struct {
	quoteCalls atomic.Int32
	dailyCalls atomic.Int32

	quoteFn func(day model.Day) (decimal.Decimal, error)
	dailyFn func() ([]pricefeed.DailyQuote, error)
}

func (f *fakeProvider) Quote(ctx context.Context, asset string, day model.Day) (decimal.Decimal, error) {
	f.quoteCalls.Add(1)
	if f.quoteFn == nil {
		return decimal.NewFromInt(7), nil
	}
	return f.quoteFn(day)
}

func (f *fakeProvider) DailyQuotes(ctx context.Context, asset string) ([]pricefeed.DailyQuote, error) {
	f.dailyCalls.Add(1)
	if f.dailyFn == nil {
		return nil, nil
	}
	return f.dailyFn()
}

func newResolver(t *testing.T, strategy Strategy, p Provider) (*Resolver, *Cache) {
	t.Helper()
	cache := NewCache()
	r := NewResolver(Config{
		Asset:       "glmr-usd",
		Strategy:    strategy,
		QuotesBegin: cutoff,
	}, p, cache, nil)
	return r, cache
}

func TestResolve_PreCutoffNeverHitsProvider(t *testing.T) {
	for _, strategy := range []Strategy{StrategyPoint, StrategyBulk} {
		p := &fakeProvider{}
		r, cache := newResolver(t, strategy, p)

		price, err := r.Resolve(context.Background(), preCut)
		if err != nil {
			t.Fatalf("[%s] Resolve() error = %v", strategy, err)
		}
		if !price.IsZero() {
			t.Errorf("[%s] price = %s, want 0", strategy, price)
		}
		if got := p.quoteCalls.Load() + p.dailyCalls.Load(); got != 0 {
			t.Errorf("[%s] provider calls = %d, want 0", strategy, got)
		}
		// Pre-cutoff results are not cached.
		if cache.Len() != 0 {
			t.Errorf("[%s] cache size = %d, want 0", strategy, cache.Len())
		}
	}
}

func TestResolve_PointCachesAndAvoidsSecondCall(t *testing.T) {
	p := &fakeProvider{}
	r, _ := newResolver(t, StrategyPoint, p)

	for i := 0; i < 3; i++ {
		price, err := r.Resolve(context.Background(), listed)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !price.Equal(decimal.NewFromInt(7)) {
			t.Errorf("price = %s, want 7", price)
		}
	}

	if got := p.quoteCalls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
}

func TestResolve_PointFailureDegradesWithoutPoisoning(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	p := &fakeProvider{quoteFn: func(day model.Day) (decimal.Decimal, error) {
		if fail.Load() {
			return decimal.Zero, errDown
		}
		return decimal.NewFromInt(7), nil
	}}
	r, cache := newResolver(t, StrategyPoint, p)

	// Failed fetch: zero price, nil error, nothing cached.
	price, err := r.Resolve(context.Background(), listed)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil (degraded)", err)
	}
	if !price.IsZero() {
		t.Errorf("price = %s, want 0", price)
	}
	if _, ok := cache.Get(listed); ok {
		t.Error("failed fetch populated the cache")
	}

	// Provider recovers: the next resolution retries and succeeds.
	fail.Store(false)
	price, err = r.Resolve(context.Background(), listed)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !price.Equal(decimal.NewFromInt(7)) {
		t.Errorf("price after recovery = %s, want 7", price)
	}
	if got := p.quoteCalls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}
}

func TestResolve_BulkWarmsWholeHistory(t *testing.T) {
	day2 := listed.Next()
	p := &fakeProvider{dailyFn: func() ([]pricefeed.DailyQuote, error) {
		return []pricefeed.DailyQuote{
			{Day: listed, Open: decimal.NewFromInt(7), Close: decimal.NewFromInt(8)},
			{Day: day2, Open: decimal.NewFromInt(9), Close: decimal.NewFromInt(10)},
		}, nil
	}}
	r, cache := newResolver(t, StrategyBulk, p)

	price, err := r.Resolve(context.Background(), listed)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	// The open price is the daily quote.
	if !price.Equal(decimal.NewFromInt(7)) {
		t.Errorf("price = %s, want 7", price)
	}

	// The second day is already warm: no further provider call.
	price, err = r.Resolve(context.Background(), day2)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !price.Equal(decimal.NewFromInt(9)) {
		t.Errorf("price = %s, want 9", price)
	}
	if got := p.dailyCalls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if cache.Len() != 2 {
		t.Errorf("cache size = %d, want 2", cache.Len())
	}
}

func TestResolve_BulkKeepsExistingEntries(t *testing.T) {
	p := &fakeProvider{dailyFn: func() ([]pricefeed.DailyQuote, error) {
		return []pricefeed.DailyQuote{
			{Day: listed, Open: decimal.NewFromInt(99)},
			{Day: listed.Next(), Open: decimal.NewFromInt(9)},
		}, nil
	}}
	r, cache := newResolver(t, StrategyBulk, p)

	// Pre-seeded entry must survive the warm.
	cache.Set(listed, decimal.NewFromInt(7))

	price, err := r.Resolve(context.Background(), listed.Next())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !price.Equal(decimal.NewFromInt(9)) {
		t.Errorf("price = %s, want 9", price)
	}

	kept, _ := cache.Get(listed)
	if !kept.Equal(decimal.NewFromInt(7)) {
		t.Errorf("pre-seeded entry = %s, want 7", kept)
	}
}

func TestResolve_BulkFailureIsHard(t *testing.T) {
	p := &fakeProvider{dailyFn: func() ([]pricefeed.DailyQuote, error) {
		return nil, errDown
	}}
	r, _ := newResolver(t, StrategyBulk, p)

	if _, err := r.Resolve(context.Background(), listed); !errors.Is(err, errDown) {
		t.Errorf("Resolve() error = %v, want wrapped %v", err, errDown)
	}
}

func TestResolve_BulkPinsZeroForUnquotedDay(t *testing.T) {
	// The warm succeeds but does not cover the requested day.
	p := &fakeProvider{dailyFn: func() ([]pricefeed.DailyQuote, error) {
		return []pricefeed.DailyQuote{{Day: listed, Open: decimal.NewFromInt(7)}}, nil
	}}
	r, cache := newResolver(t, StrategyBulk, p)

	gap := listed.Next()
	price, err := r.Resolve(context.Background(), gap)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !price.IsZero() {
		t.Errorf("price = %s, want 0", price)
	}

	// The zero is pinned: a second resolution must not warm again.
	if _, err := r.Resolve(context.Background(), gap); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := p.dailyCalls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if pinned, ok := cache.Get(gap); !ok || !pinned.IsZero() {
		t.Errorf("cache entry for gap day = (%v, %v), want pinned zero", pinned, ok)
	}
}

func TestResolve_ConcurrentMissesCoalesce(t *testing.T) {
	p := &fakeProvider{quoteFn: func(day model.Day) (decimal.Decimal, error) {
		time.Sleep(50 * time.Millisecond) // Keep the flight open while callers pile up
		return decimal.NewFromInt(7), nil
	}}
	r, _ := newResolver(t, StrategyPoint, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			price, err := r.Resolve(context.Background(), listed)
			if err != nil {
				t.Errorf("Resolve() error = %v", err)
				return
			}
			if !price.Equal(decimal.NewFromInt(7)) {
				t.Errorf("price = %s, want 7", price)
			}
		}()
	}
	wg.Wait()

	if got := p.quoteCalls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1 (coalesced)", got)
	}
}

func TestResolve_CooldownThrottlesOutboundCalls(t *testing.T) {
	p := &fakeProvider{}
	cache := NewCache()
	r := NewResolver(Config{
		Asset:       "glmr-usd",
		Strategy:    StrategyPoint,
		QuotesBegin: cutoff,
		Cooldown:    60 * time.Millisecond,
	}, p, cache, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), listed.Next()); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		cache.Delete(listed.Next()) // Force a provider call every time
	}

	// Three calls with a 60ms cooldown: the second and third wait.
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 120ms", elapsed)
	}
	if got := p.quoteCalls.Load(); got != 3 {
		t.Errorf("provider calls = %d, want 3", got)
	}
}
