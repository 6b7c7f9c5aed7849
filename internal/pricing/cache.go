package pricing

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/glmrscan/transfer-indexer/internal/model"
)

// Cache is the process-lifetime day-to-quote cache.
//
// Entries are removed only when a fetch for that day failed; there is no
// other eviction. The keyspace is bounded by calendar days since the asset's
// listing, so unbounded growth is accepted.
type Cache struct {
	mu     sync.Mutex
	quotes map[model.Day]decimal.Decimal
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{quotes: make(map[model.Day]decimal.Decimal)}
}

// Get returns the cached quote for the day, if present.
func (c *Cache) Get(day model.Day) (decimal.Decimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.quotes[day]
	return v, ok
}

// Set stores the quote for the day, overwriting any existing entry.
func (c *Cache) Set(day model.Day, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[day] = price
}

// SetIfAbsent stores the quote only when the day has no entry yet and
// reports whether it stored. Bulk warming uses this so already-cached days
// keep their value.
func (c *Cache) SetIfAbsent(day model.Day, price decimal.Decimal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.quotes[day]; ok {
		return false
	}
	c.quotes[day] = price
	return true
}

// Delete removes the entry for the day so the next resolution retries.
func (c *Cache) Delete(day model.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.quotes, day)
}

// Len returns the number of cached days.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.quotes)
}
