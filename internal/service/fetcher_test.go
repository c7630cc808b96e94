package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"finagent/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore scripts FetchTransactions responses by call number (1-based).
type stubStore struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) ([]models.Transaction, error)
}

func (s *stubStore) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	fn := s.fn
	s.mu.Unlock()
	return fn(call)
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func constStore(transactions []models.Transaction) *stubStore {
	return &stubStore{fn: func(int) ([]models.Transaction, error) {
		return transactions, nil
	}}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return ts
}

func tx(t *testing.T, date, amount, category string) models.Transaction {
	t.Helper()
	return models.Transaction{
		Date:     mustDate(t, date),
		Amount:   decimal.RequireFromString(amount),
		Category: category,
	}
}

func txsOfLen(n int) []models.Transaction {
	transactions := make([]models.Transaction, n)
	for i := range transactions {
		transactions[i] = models.Transaction{
			Date:     time.Date(2025, 1, 1+i%27, 0, 0, 0, 0, time.UTC),
			Amount:   decimal.NewFromInt(int64(10 + i)),
			Category: fmt.Sprintf("cat-%d", i%3),
		}
	}
	return transactions
}

func TestFetcherCachesWithinTTL(t *testing.T) {
	store := constStore(txsOfLen(3))
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())

	first, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 3)

	second, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 3)

	assert.Equal(t, 1, store.callCount())
}

func TestFetcherRefetchesAfterTTL(t *testing.T) {
	store := constStore(txsOfLen(2))
	fetcher := NewFetcher(store, 20*time.Millisecond, zap.NewNop())

	_, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.callCount())
}

func TestFetcherInvalidate(t *testing.T) {
	store := constStore(txsOfLen(1))
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())

	_, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	fetcher.Invalidate()

	_, err = fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.callCount())
}

func TestFetchFreshBypassesCache(t *testing.T) {
	store := constStore(txsOfLen(1))
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())

	_, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	_, err = fetcher.FetchFresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.callCount())
}

func TestFetcherErrorReturnsEmptySlice(t *testing.T) {
	store := &stubStore{fn: func(call int) ([]models.Transaction, error) {
		if call == 1 {
			return nil, errors.New("store down")
		}
		return txsOfLen(4), nil
	}}
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())

	transactions, err := fetcher.Fetch(context.Background())
	assert.Error(t, err)
	assert.NotNil(t, transactions)
	assert.Empty(t, transactions)

	// The failure is not cached; the next read goes upstream and succeeds.
	transactions, err = fetcher.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, transactions, 4)
	assert.Equal(t, 2, store.callCount())
}

func TestFetcherErrorDoesNotServeStaleSnapshot(t *testing.T) {
	store := &stubStore{fn: func(call int) ([]models.Transaction, error) {
		if call == 1 {
			return txsOfLen(5), nil
		}
		return nil, errors.New("store down")
	}}
	fetcher := NewFetcher(store, time.Hour, zap.NewNop())

	_, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	transactions, err := fetcher.FetchFresh(context.Background())
	assert.Error(t, err)
	assert.Empty(t, transactions)
}
