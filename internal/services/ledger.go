package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coinroyale-backend/internal/models"
)

// CollateralRecord is the ledger's view of an escrow entry. Present and
// Escrowed are separate so "known but not escrowed" is representable.
type CollateralRecord struct {
	Present  bool   `json:"present"`
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
	Escrowed bool   `json:"escrowed"`
}

// LedgerClient reads the authoritative on-chain escrow state. A failed
// query must surface as an error, never as an absent record.
type LedgerClient interface {
	GetCollateralRecord(ctx context.Context, sessionID string) (*CollateralRecord, error)
}

// HTTPLedgerClient queries an escrow indexer over HTTP. The indexer
// exposes GET {base}/escrows/{sessionID} returning a CollateralRecord;
// 404 means "not present", anything else non-2xx is a soft failure.
type HTTPLedgerClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLedgerClient(baseURL string, timeout time.Duration) *HTTPLedgerClient {
	return &HTTPLedgerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPLedgerClient) GetCollateralRecord(ctx context.Context, sessionID string) (*CollateralRecord, error) {
	url := fmt.Sprintf("%s/escrows/%s", c.baseURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrLedgerUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &CollateralRecord{Present: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: indexer returned %d", models.ErrLedgerUnavailable, resp.StatusCode)
	}

	var record CollateralRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrLedgerUnavailable, err)
	}

	return &record, nil
}
