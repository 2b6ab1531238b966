package currency

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RateTable holds the rates quoted against one base currency. Codes are
// stored lowercase, as the upstream API returns them.
type RateTable struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Lookup returns the rate for code, ignoring zero rates.
func (t *RateTable) Lookup(code string) (decimal.Decimal, bool) {
	r, ok := t.Rates[normalize(code)]
	if !ok || r.IsZero() {
		return decimal.Zero, false
	}
	return r, true
}

// RateCache stores rate tables by base currency. Freshness is decided by the
// service from FetchedAt; implementations only store and return.
type RateCache interface {
	Get(ctx context.Context, base string) (*RateTable, bool, error)
	Set(ctx context.Context, table *RateTable) error
	Clear(ctx context.Context) error
}

// MemoryRateCache is a process-local RateCache.
type MemoryRateCache struct {
	mu     sync.RWMutex
	tables map[string]*RateTable
}

func NewMemoryRateCache() *MemoryRateCache {
	return &MemoryRateCache{tables: make(map[string]*RateTable)}
}

func (c *MemoryRateCache) Get(_ context.Context, base string) (*RateTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[normalize(base)]
	return t, ok, nil
}

func (c *MemoryRateCache) Set(_ context.Context, table *RateTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[normalize(table.Base)] = table
	return nil
}

func (c *MemoryRateCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables = make(map[string]*RateTable)
	return nil
}
