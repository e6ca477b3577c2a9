package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/config"
)

// LedgerClient talks to the expense ledger backend. Batch creation is
// treated as atomic: either the backend accepts the whole batch or the call
// fails and the caller keeps its draft for retry.
type LedgerClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewLedgerClient creates a ledger client from config
func NewLedgerClient(cfg config.LedgerConfig) *LedgerClient {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = time.Duration(cfg.TimeoutSec) * time.Second
	client.Logger = nil

	return &LedgerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    client,
	}
}

// CreateExpense submits a single expense record
func (c *LedgerClient) CreateExpense(ctx context.Context, expense aggregator.ExpenseCreate, idempotencyKey string) error {
	return c.post(ctx, "/expenses", expense, idempotencyKey)
}

// CreateExpenses submits an ordered batch of expense records in one call
func (c *LedgerClient) CreateExpenses(ctx context.Context, expenses []aggregator.ExpenseCreate, idempotencyKey string) error {
	return c.post(ctx, "/expenses/batch", expenses, idempotencyKey)
}

func (c *LedgerClient) post(ctx context.Context, path string, payload interface{}, idempotencyKey string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if idempotencyKey != "" {
		// Guards the ledger against double-submit on retry
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ledger rejected %s: status %d: %s", path, resp.StatusCode, string(detail))
	}

	return nil
}
