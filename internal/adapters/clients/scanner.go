package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spendlens/receipt-review-backend/internal/infrastructure/config"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

// ScannerClient talks to the receipt OCR backend. Scans are not retried
// automatically; the only remedy for a failed scan is a caller-driven retry
// with the same image.
type ScannerClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewScannerClient creates a scanner client from config
func NewScannerClient(cfg config.ScannerConfig) *ScannerClient {
	return &ScannerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
	}
}

type scanRequest struct {
	ImageBase64 string `json:"image_base64"`
	Language    string `json:"language,omitempty"`
}

// Scan sends a base64-encoded receipt image for OCR extraction and returns
// the raw scan result. A scan.Result with Success=false is returned as-is;
// deciding how to surface it belongs to the caller.
func (c *ScannerClient) Scan(ctx context.Context, imageBase64, language string) (*scan.Result, error) {
	body, err := json.Marshal(scanRequest{ImageBase64: imageBase64, Language: language})
	if err != nil {
		return nil, fmt.Errorf("encoding scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/receipts/scan", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading scan response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scanner returned status %d: %s", resp.StatusCode, truncate(data, 256))
	}

	result, err := scan.ParseResult(data)
	if err != nil {
		return nil, fmt.Errorf("decoding scan result: %w", err)
	}
	return result, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
