package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finagent/pkg/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRESTClient(t *testing.T, url string) *RESTClient {
	t.Helper()
	client, err := NewRESTClient(&config.StoreConfig{
		Backend:  BackendHTTP,
		URL:      url,
		APIToken: "secret-token",
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestFetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"Date": "2025-01-05", "Amount": 100.50, "Category": "Food", "Merchant": "GreenMart"},
			{"Date": "2025-02-02T10:30:00Z", "Amount": "-25", "Category": "Refunds"},
			{"Date": "2025-02-10T08:00:00", "Amount": 40, "Category": "Transport", "Merchant": "Metro"}
		]`))
	}))
	defer server.Close()

	client := newRESTClient(t, server.URL)

	transactions, err := client.FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	assert.Equal(t, "Food", transactions[0].Category)
	assert.Equal(t, "GreenMart", transactions[0].Merchant)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("100.50")))
	assert.Equal(t, 2025, transactions[0].Date.Year())
	assert.Equal(t, time.January, transactions[0].Date.Month())

	// Quoted and negative amounts both parse.
	assert.True(t, transactions[1].Amount.Equal(decimal.RequireFromString("-25")))
	assert.Equal(t, "", transactions[1].Merchant)
}

func TestFetchTransactionsDropsBadRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"Date": "2025-01-05", "Amount": 10, "Category": "Food"},
			{"Date": "not-a-date", "Amount": 10, "Category": "Food"},
			{"Date": "2025-01-06", "Amount": 10, "Category": ""},
			{"Date": "2025-01-07", "Amount": 10, "Category": "Transport"}
		]`))
	}))
	defer server.Close()

	client := newRESTClient(t, server.URL)

	transactions, err := client.FetchTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "Food", transactions[0].Category)
	assert.Equal(t, "Transport", transactions[1].Category)
}

func TestFetchTransactionsEmptyArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newRESTClient(t, server.URL)

	transactions, err := client.FetchTransactions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, transactions)
	assert.Empty(t, transactions)
}

func TestFetchTransactionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newRESTClient(t, server.URL)

	_, err := client.FetchTransactions(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchTransactionsMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "object instead of array", body: `{"Date": "2025-01-05"}`},
		{name: "not json", body: `<html>error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newRESTClient(t, server.URL)

			_, err := client.FetchTransactions(context.Background())
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFetchTransactionsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newRESTClient(t, server.URL)

	_, err := client.FetchTransactions(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewRESTClientRequiresURL(t *testing.T) {
	_, err := NewRESTClient(&config.StoreConfig{Backend: BackendHTTP}, zap.NewNop())
	assert.Error(t, err)
}

func TestParseWireDate(t *testing.T) {
	for _, value := range []string{"2025-01-05", "2025-01-05T10:30:00Z", "2025-01-05T10:30:00"} {
		ts, err := parseWireDate(value)
		require.NoError(t, err, value)
		assert.Equal(t, 5, ts.Day())
	}

	_, err := parseWireDate("05.01.2025")
	assert.Error(t, err)
}
