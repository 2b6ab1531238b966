// Package currency converts amounts between currencies using rates fetched
// per base currency and cached for a fixed time-to-live.
package currency

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/metrics"

	"github.com/shopspring/decimal"
)

// Service defines the currency conversion interface
type Service interface {
	// Rate returns how many units of to one unit of from buys.
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)

	// Convert converts a major-unit amount.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)

	// ConvertMinor converts an amount in minor units of from into minor units
	// of to, rounding half away from zero.
	ConvertMinor(ctx context.Context, amount int64, from, to string) (int64, error)

	// AvailableCurrencies lists the codes quoted against base.
	AvailableCurrencies(ctx context.Context, base string) ([]string, error)

	// ClearCache drops every cached rate table.
	ClearCache(ctx context.Context) error
}

type service struct {
	source  RateSource
	cache   RateCache
	config  Config
	metrics metrics.Collector
}

// NewService creates a new currency service
func NewService(source RateSource, cache RateCache, config Config, collector metrics.Collector) Service {
	if source == nil {
		panic("rate source is required")
	}
	if cache == nil {
		cache = NewMemoryRateCache()
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.DefaultBase == "" {
		config.DefaultBase = DefaultBaseCurrency
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &service{
		source:  source,
		cache:   cache,
		config:  config,
		metrics: metrics.OrNoop(collector),
	}
}

func (s *service) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if err := validatePair(from, to); err != nil {
		return decimal.Zero, err
	}

	from, to = normalize(from), normalize(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	direct, err := s.rates(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	if r, ok := direct.Lookup(to); ok {
		return r, nil
	}

	reverse, err := s.rates(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	if r, ok := reverse.Lookup(from); ok {
		return decimal.NewFromInt(1).Div(r), nil
	}

	return decimal.Zero, apperrors.Wrapf(apperrors.ErrConversionUnavailable,
		"no rate for %s/%s", strings.ToUpper(from), strings.ToUpper(to))
}

func (s *service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

func (s *service) ConvertMinor(ctx context.Context, amount int64, from, to string) (int64, error) {
	if err := validatePair(from, to); err != nil {
		return 0, err
	}
	if normalize(from) == normalize(to) {
		return amount, nil
	}

	major := decimal.NewFromInt(amount).Shift(-FractionDigits(from))
	converted, err := s.Convert(ctx, major, from, to)
	if err != nil {
		return 0, err
	}
	return converted.Shift(FractionDigits(to)).Round(0).IntPart(), nil
}

func (s *service) AvailableCurrencies(ctx context.Context, base string) ([]string, error) {
	if base == "" {
		base = s.config.DefaultBase
	}
	if !ValidCode(base) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", base)
	}

	table, err := s.rates(ctx, normalize(base))
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(table.Rates))
	for code := range table.Rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *service) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear rate cache: %w", err)
	}
	log.Printf("Currency rate cache cleared")
	return nil
}

// rates returns a fresh table for base, fetching it when the cached copy is
// missing or older than the TTL. Cache failures degrade to a fetch.
func (s *service) rates(ctx context.Context, base string) (*RateTable, error) {
	table, found, err := s.cache.Get(ctx, base)
	if err != nil {
		log.Printf("Rate cache read failed for %s: %v", base, err)
	}
	if found && s.config.Now().Sub(table.FetchedAt) < s.config.CacheTTL {
		s.metrics.RecordCacheHit(metricsCacheName)
		return table, nil
	}
	s.metrics.RecordCacheMiss(metricsCacheName)

	start := time.Now()
	fresh, err := s.source.Fetch(ctx, base)
	s.metrics.RecordOperationDuration("fetch_rates", time.Since(start))
	if err != nil {
		s.metrics.RecordError("fetch_rates", string(apperrors.KindConversionUnavailable))
		return nil, apperrors.Wrap(apperrors.ErrConversionUnavailable, err)
	}
	fresh.FetchedAt = s.config.Now()

	if err := s.cache.Set(ctx, fresh); err != nil {
		log.Printf("Rate cache write failed for %s: %v", base, err)
	}
	return fresh, nil
}

func validatePair(from, to string) error {
	if !ValidCode(from) {
		return apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", from)
	}
	if !ValidCode(to) {
		return apperrors.Wrapf(apperrors.ErrInvalidCurrency, "currency code %q", to)
	}
	return nil
}
