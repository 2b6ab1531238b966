package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/metrics"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/routes"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/snapshot"
	"fintrack/internal/services/wallet"
	"fintrack/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "routes-test-secret"

type stubRates map[string]map[string]string

func (s stubRates) Fetch(_ context.Context, base string) (*currency.RateTable, error) {
	rates, ok := s[base]
	if !ok {
		return nil, fmt.Errorf("no rates for %s", base)
	}
	t := &currency.RateTable{Base: base, Rates: map[string]decimal.Decimal{}}
	for code, r := range rates {
		t.Rates[code] = decimal.RequireFromString(r)
	}
	return t, nil
}

type api struct {
	t      *testing.T
	app    *fiber.App
	user   *models.User
	wallet *models.Wallet
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := repositories.NewRepositories(db)
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheusCollector(reg)

	fx := currency.NewService(stubRates{
		"eur": {"usd": "1.1"},
		"usd": {"eur": "0.9", "gbp": "0.8"},
	}, nil, currency.Config{}, collector)

	app := fiber.New()
	routes.SetupRoutes(app, routes.Dependencies{
		DB:        db,
		Ledger:    ledger.NewService(repos, fx, ledger.Config{MaxQueuedMutations: ledger.DefaultMaxQueuedMutations}, collector),
		Wallets:   wallet.NewService(repos, fx, collector),
		Snapshots: snapshot.NewService(repos),
		Currency:  fx,
		JWTSecret: jwtSecret,
		Gatherer:  reg,
	})

	user := testutil.CreateUser(t, db, "USD")
	return &api{
		t:      t,
		app:    app,
		user:   user,
		wallet: testutil.CreateWallet(t, db, user.ID, "Main Wallet", "USD", true),
	}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	claims := &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           userID,
		Role:             role,
		Permissions:      models.GetDefaultPermissions(role),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (a *api) do(method, path, bearer string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	out := map[string]interface{}{}
	if len(data) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func field(t *testing.T, body map[string]interface{}, path ...string) interface{} {
	t.Helper()
	var cur interface{} = body
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		require.True(t, ok, "missing %s in %v", p, body)
		cur = m[p]
	}
	return cur
}

func TestLedgerFlow(t *testing.T) {
	a := newAPI(t)
	tok := token(t, a.user.ID, "user")

	status, body := a.do("POST", "/api/transactions", tok, map[string]interface{}{
		"amount": 1000, "type": "INCOME", "date": "2024-01-01",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	incomeID := field(t, body, "transaction", "id").(string)
	assert.Equal(t, a.wallet.ID, field(t, body, "transaction", "wallet_id"))

	status, body = a.do("POST", "/api/transactions", tok, map[string]interface{}{
		"amount": 500, "currency_code": "EUR", "type": "EXPENSE", "date": "2024-01-02",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 550, field(t, body, "transaction", "converted_amount"))

	status, body = a.do("GET", "/api/wallets/"+a.wallet.ID+"/balance", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 450, body["balance"])

	status, body = a.do("GET", "/api/snapshots/2024-01-01", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 1000, field(t, body, "snapshot", "closing_balance"))

	status, body = a.do("GET", "/api/snapshots?from=2024-01-01&to=2024-01-31", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Len(t, body["snapshots"], 2)

	status, body = a.do("PUT", "/api/transactions/"+incomeID, tok, map[string]interface{}{"amount": 2000})
	require.Equal(t, fiber.StatusOK, status, body)

	status, body = a.do("GET", "/api/reports/summary", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 1450, body["total_balance"])
	assert.Equal(t, true, body["is_all_time"])

	status, body = a.do("GET", "/api/transactions?limit=1", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 2, field(t, body, "pagination", "total"))

	status, _ = a.do("DELETE", "/api/transactions/"+incomeID, tok, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = a.do("GET", "/api/reports/verify", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, true, body["consistent"])

	status, body = a.do("GET", "/api/wallets/total", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, -550, body["total_balance"])
}

func TestTransactionsAreScopedToTheCaller(t *testing.T) {
	a := newAPI(t)

	status, body := a.do("POST", "/api/transactions", token(t, a.user.ID, "user"), map[string]interface{}{
		"amount": 100, "type": "INCOME",
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	id := field(t, body, "transaction", "id").(string)

	intruder := token(t, "someone-else", "user")
	for _, method := range []string{"GET", "PUT", "DELETE"} {
		status, body = a.do(method, "/api/transactions/"+id, intruder, map[string]interface{}{})
		assert.Equal(t, fiber.StatusNotFound, status, method)
		assert.Equal(t, "TRANSACTION_NOT_FOUND", body["code"], method)
	}

	status, _ = a.do("GET", "/api/wallets/"+a.wallet.ID, intruder, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	tok := token(t, a.user.ID, "user")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"no token", "GET", "/api/transactions", nil, fiber.StatusUnauthorized},
		{"bad amount", "POST", "/api/transactions", map[string]interface{}{"amount": 0, "type": "INCOME"}, fiber.StatusBadRequest},
		{"bad type", "POST", "/api/transactions", map[string]interface{}{"amount": 5, "type": "GIFT"}, fiber.StatusBadRequest},
		{"bad date", "POST", "/api/transactions", map[string]interface{}{"amount": 5, "type": "INCOME", "date": "01/02/2024"}, fiber.StatusBadRequest},
		{"no rate", "POST", "/api/transactions", map[string]interface{}{"amount": 5, "type": "INCOME", "currency_code": "JPY"}, fiber.StatusBadGateway},
		{"missing snapshot", "GET", "/api/snapshots/2020-01-01", nil, fiber.StatusNotFound},
		{"history without bounds", "GET", "/api/snapshots", nil, fiber.StatusBadRequest},
		{"unknown transaction", "GET", "/api/transactions/nope", nil, fiber.StatusNotFound},
		{"cache clear needs admin", "DELETE", "/api/currency/cache", nil, fiber.StatusForbidden},
		{"malformed currency", "GET", "/api/currency/convert?from=US&to=EUR&amount=1", nil, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bearer := tok
			if tt.name == "no token" {
				bearer = ""
			}
			status, body := a.do(tt.method, tt.path, bearer, tt.body)
			assert.Equal(t, tt.want, status, body)
		})
	}
}

func TestCurrencyRoutes(t *testing.T) {
	a := newAPI(t)

	status, body := a.do("GET", "/api/currency/convert?from=EUR&to=USD&amount=500", token(t, a.user.ID, "user"), nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.EqualValues(t, 550, body["converted_amount"])
	assert.Equal(t, "1.1", body["rate"])

	status, body = a.do("GET", "/api/currency/available", token(t, a.user.ID, "user"), nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, []interface{}{"eur", "gbp"}, body["currencies"])

	status, _ = a.do("DELETE", "/api/currency/cache", token(t, a.user.ID, "admin"), nil)
	assert.Equal(t, fiber.StatusNoContent, status)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	status, body := a.do("GET", "/health", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "disabled", field(t, body, "services", "redis"))
	assert.Equal(t, "connected", field(t, body, "services", "database"))

	a.do("POST", "/api/transactions", token(t, a.user.ID, "user"), map[string]interface{}{"amount": 100, "type": "INCOME"})

	resp, err := a.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "fintrack_")
}

func TestReportTrendsAndSearch(t *testing.T) {
	a := newAPI(t)
	tok := token(t, a.user.ID, "user")

	for _, tx := range []map[string]interface{}{
		{"amount": 1000, "type": "INCOME", "date": "2024-01-01", "description": "Salary"},
		{"amount": 300, "type": "EXPENSE", "date": "2024-01-03T18:30:00Z", "description": "Groceries"},
	} {
		status, body := a.do("POST", "/api/transactions", tok, tx)
		require.Equal(t, fiber.StatusCreated, status, body)
	}

	status, body := a.do("GET", "/api/reports/balance-trend?from=2024-01-01&to=2024-01-04", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	points := body["points"].([]interface{})
	require.Len(t, points, 4)
	var balances []float64
	for _, p := range points {
		balances = append(balances, p.(map[string]interface{})["balance"].(float64))
	}
	assert.Equal(t, []float64{1000, 1000, 700, 700}, balances)

	status, body = a.do("GET", "/api/reports/income-expense-trend?from=2024-01-02&to=2024-01-03", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	points = body["points"].([]interface{})
	require.Len(t, points, 2)
	assert.EqualValues(t, 0, points[0].(map[string]interface{})["expense"])
	assert.EqualValues(t, 300, points[1].(map[string]interface{})["expense"])

	status, _ = a.do("GET", "/api/reports/balance-trend?from=2024-01-01", tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = a.do("GET", "/api/reports/income-expense-trend?from=2024-01-05&to=2024-01-01", tok, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = a.do("GET", "/api/transactions?search=GROCER", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	require.Len(t, body["data"], 1)
	assert.Equal(t, "Groceries", body["data"].([]interface{})[0].(map[string]interface{})["description"])

	status, body = a.do("GET", "/api/transactions?from=2024-01-03&to=2024-01-03", tok, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Len(t, body["data"], 1)
}
