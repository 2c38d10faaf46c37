package hyperliquid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hypermon/internal/monitor"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clearinghouseFixture = `{
  "assetPositions": [
    {"position": {"coin": "BTC", "szi": "0.5", "entryPx": "50000.1", "positionValue": "25000.05", "unrealizedPnl": "120.5", "leverage": {"type": "cross", "value": 10}}},
    {"position": {"coin": "ETH", "szi": "-2", "entryPx": "3000", "positionValue": "6000", "unrealizedPnl": "-15", "leverage": {"type": "isolated", "value": 5}}},
    {"position": {"coin": "SOL", "szi": "0", "entryPx": "150", "positionValue": "0", "unrealizedPnl": "0", "leverage": {"type": "cross", "value": 3}}}
  ]
}`

const userFillsFixture = `[
  {"coin": "BTC", "px": "50100", "sz": "0.1", "side": "B", "time": 1700000000300, "fee": "0.5", "tid": 300},
  {"coin": "BTC", "px": "50050", "sz": "0.2", "side": "A", "time": 1700000000200, "fee": "1.0", "tid": 200},
  {"coin": "ETH", "px": "3000", "sz": "1", "side": "B", "time": 1700000000100, "fee": "0.3", "tid": 100}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return client, srv
}

func infoHandler(t *testing.T, responses map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/info", r.URL.Path)
		var req infoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		body, ok := responses[req.Type]
		require.True(t, ok, "unexpected request type %s", req.Type)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchPositions(t *testing.T) {
	client, _ := newTestClient(t, infoHandler(t, map[string]string{
		"clearinghouseState": clearinghouseFixture,
	}))

	positions, err := client.FetchPositions(context.Background(), "0xabc")
	require.NoError(t, err)
	require.Len(t, positions, 2, "zero-size entries are settled remnants and must be skipped")

	btc := positions[0]
	assert.Equal(t, "BTC", btc.Asset)
	assert.Equal(t, monitor.SideLong, btc.Side)
	assert.True(t, btc.Size.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, btc.EntryPrice.Equal(decimal.RequireFromString("50000.1")))
	assert.Equal(t, 10, btc.Leverage)

	eth := positions[1]
	assert.Equal(t, monitor.SideShort, eth.Side)
	assert.True(t, eth.Size.Equal(decimal.RequireFromString("2")), "size is absolute, sign lives in Side")
}

func TestFetchFills(t *testing.T) {
	client, _ := newTestClient(t, infoHandler(t, map[string]string{
		"userFills": userFillsFixture,
	}))

	t.Run("maps sides and keeps order", func(t *testing.T) {
		fills, err := client.FetchFills(context.Background(), "0xabc", 100)
		require.NoError(t, err)
		require.Len(t, fills, 3)
		assert.Equal(t, monitor.FillBuy, fills[0].Side)
		assert.Equal(t, monitor.FillSell, fills[1].Side)
		assert.Equal(t, "300", fills[0].TID)
		assert.Equal(t, int64(1700000000300), fills[0].Time)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		fills, err := client.FetchFills(context.Background(), "0xabc", 2)
		require.NoError(t, err)
		require.Len(t, fills, 2)
		assert.Equal(t, "300", fills[0].TID, "truncation keeps the most recent entries")
	})
}

func TestPostErrorClassification(t *testing.T) {
	t.Run("transport failure is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		client, err := NewClient(Options{BaseURL: srv.URL})
		require.NoError(t, err)
		srv.Close()

		_, err = client.FetchPositions(context.Background(), "0xabc")
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, "clearinghouseState", netErr.Op)
	})

	t.Run("http error status is an api error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})
		_, err := client.FetchFills(context.Background(), "0xabc", 10)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
		assert.Contains(t, apiErr.Body, "rate limited")
	})

	t.Run("error envelope with status 200 is an api error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error": "invalid address"}`))
		})
		_, err := client.FetchPositions(context.Background(), "0xabc")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "invalid address", apiErr.Body)
	})

	t.Run("malformed payload is an api error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"assetPositions": "not-an-array"`))
		})
		_, err := client.FetchPositions(context.Background(), "0xabc")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Contains(t, apiErr.Body, "malformed payload")
	})

	t.Run("cancelled context surfaces as network error", func(t *testing.T) {
		client, _ := newTestClient(t, infoHandler(t, map[string]string{
			"userFills": userFillsFixture,
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.FetchFills(ctx, "0xabc", 10)
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Options{})
	require.NoError(t, err)
	assert.Equal(t, MainnetAPIURL, client.baseURL)

	client, err = NewClient(Options{Testnet: true})
	require.NoError(t, err)
	assert.Equal(t, TestnetAPIURL, client.baseURL)

	client, err = NewClient(Options{BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", client.baseURL, "trailing slash trimmed")
}
