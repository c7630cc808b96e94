// Package store provides read access to the remote transaction store that
// the external extraction workflow writes into. Two backends are supported:
// a JSON-over-HTTP endpoint and a direct Postgres connection.
package store

import (
	"context"
	"errors"

	"finagent/internal/models"
)

const (
	BackendHTTP     = "http"
	BackendPostgres = "postgres"
)

var (
	// ErrUnavailable means the store could not be reached or refused the request.
	ErrUnavailable = errors.New("transaction store unavailable")
	// ErrMalformed means the store answered with a body that is not a transaction list.
	ErrMalformed = errors.New("transaction store returned malformed data")
)

// Client fetches the full transaction set in store order.
type Client interface {
	FetchTransactions(ctx context.Context) ([]models.Transaction, error)
}
