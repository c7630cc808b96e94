package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"finagent/internal/models"
	"finagent/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// wireTransaction mirrors the JSON objects served by the store endpoint.
// Key casing is fixed by the extraction workflow that writes the records.
type wireTransaction struct {
	Date     string          `json:"Date"`
	Amount   decimal.Decimal `json:"Amount"`
	Category string          `json:"Category"`
	Merchant string          `json:"Merchant"`
}

var wireDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type RESTClient struct {
	url        string
	apiToken   string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRESTClient(cfg *config.StoreConfig, logger *zap.Logger) (*RESTClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("store url is not configured")
	}

	return &RESTClient{
		url:      cfg.URL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}, nil
}

func (c *RESTClient) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create store request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var records []wireTransaction
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	transactions := make([]models.Transaction, 0, len(records))
	dropped := 0
	for _, rec := range records {
		tx, err := rec.toModel()
		if err != nil {
			dropped++
			continue
		}
		transactions = append(transactions, tx)
	}
	if dropped > 0 {
		c.logger.Warn("dropped unparseable transaction records",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(transactions)))
	}

	return transactions, nil
}

func (w wireTransaction) toModel() (models.Transaction, error) {
	if w.Category == "" {
		return models.Transaction{}, fmt.Errorf("record has no category")
	}

	date, err := parseWireDate(w.Date)
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		Date:     date,
		Amount:   w.Amount,
		Category: w.Category,
		Merchant: w.Merchant,
	}, nil
}

func parseWireDate(value string) (time.Time, error) {
	for _, layout := range wireDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
