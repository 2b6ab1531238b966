package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultRateSourceURL serves one JSON document per base currency at
// {url}/{base}.json.
const DefaultRateSourceURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies"

// RateSource fetches the current rates for a base currency.
type RateSource interface {
	Fetch(ctx context.Context, base string) (*RateTable, error)
}

// HTTPRateSource reads rates from the fawazahmed0 currency API.
type HTTPRateSource struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewHTTPRateSource(baseURL string, timeout time.Duration) *HTTPRateSource {
	if baseURL == "" {
		baseURL = DefaultRateSourceURL
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPRateSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

func (s *HTTPRateSource) Fetch(ctx context.Context, base string) (*RateTable, error) {
	base = normalize(base)
	url := fmt.Sprintf("%s/%s.json", s.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("rate source returned status %d for %s", resp.StatusCode, base)
	}

	var doc map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode rates for %s: %w", base, err)
	}

	raw, ok := doc[base]
	if !ok {
		return nil, fmt.Errorf("rate source has no table for %s", base)
	}

	var rates map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates for %s: %w", base, err)
	}

	return &RateTable{
		Base:      base,
		Rates:     rates,
		FetchedAt: s.now(),
	}, nil
}
