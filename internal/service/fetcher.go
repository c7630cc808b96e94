package service

import (
	"context"
	"sync"
	"time"

	"finagent/internal/models"
	"finagent/internal/store"

	"go.uber.org/zap"
)

// Fetcher reads the transaction store through a single cached snapshot.
// Every reader in the process shares the same entry, so one upstream fetch
// serves the dashboard, the transaction list, and the polling watcher alike.
type Fetcher struct {
	store  store.Client
	ttl    time.Duration
	logger *zap.Logger

	mu        sync.Mutex
	snapshot  []models.Transaction
	fetchedAt time.Time
}

func NewFetcher(client store.Client, ttl time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// Fetch returns the cached snapshot when it is younger than the TTL and
// refreshes it otherwise. On upstream failure it returns an empty, non-nil
// slice together with the error; the stale cache is not served and the
// failure is not cached.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Transaction, error) {
	f.mu.Lock()
	if !f.fetchedAt.IsZero() && time.Since(f.fetchedAt) < f.ttl {
		snapshot := f.snapshot
		f.mu.Unlock()
		return snapshot, nil
	}
	f.mu.Unlock()

	return f.refresh(ctx)
}

// FetchFresh bypasses the cache and always asks the store.
func (f *Fetcher) FetchFresh(ctx context.Context) ([]models.Transaction, error) {
	return f.refresh(ctx)
}

// Invalidate drops the cached snapshot so the next Fetch goes upstream.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	f.snapshot = nil
	f.fetchedAt = time.Time{}
	f.mu.Unlock()
}

func (f *Fetcher) refresh(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := f.store.FetchTransactions(ctx)
	if err != nil {
		f.logger.Warn("transaction fetch failed", zap.Error(err))
		return []models.Transaction{}, err
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	f.mu.Lock()
	f.snapshot = transactions
	f.fetchedAt = time.Now()
	f.mu.Unlock()

	return transactions, nil
}
