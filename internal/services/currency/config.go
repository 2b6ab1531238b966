package currency

import "time"

// Default configuration values
const (
	DefaultCacheTTL       = 2 * time.Hour
	DefaultHTTPTimeout    = 10 * time.Second
	DefaultBaseCurrency   = "usd"
	defaultFractionDigits = 2
	metricsCacheName      = "currency_rates"
)

// Config holds configuration for the conversion service
type Config struct {
	// CacheTTL is how long a fetched rate table is served before refetching.
	CacheTTL time.Duration
	// DefaultBase lists available currencies when no base is given.
	DefaultBase string
	// Now is the clock used for cache freshness. Defaults to time.Now.
	Now func() time.Time
}
