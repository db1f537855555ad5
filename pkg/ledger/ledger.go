package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ledgerkit/bankimport/pkg/models"
)

// ErrAccountNotFound signals the directory has no account with that id.
var ErrAccountNotFound = errors.New("account not found")

// UpstreamError carries the original status and body of a failed upstream
// call so callers can tell a rejected batch from a transport problem.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream unreachable: %s", e.Body)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// BulkRequest is the upstream bulk-ingest payload. Uniqueness enforcement
// and statement UID assignment happen on the other side of this contract.
type BulkRequest struct {
	CompanyCode string                 `json:"company_code"`
	Policy      models.ImportPolicy    `json:"policy"`
	BatchID     string                 `json:"batch_id,omitempty"`
	Items       []models.NormalizedTxn `json:"items"`
}

// Client talks to the ledger service: the account directory and the bulk
// ingest endpoint. Every call is issued at most once with a bounded timeout;
// retrying is the caller's decision.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

func New(baseURL, token string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GetAccount resolves a destination account by id.
func (c *Client) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/accounts/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrAccountNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var account models.Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: fmt.Sprintf("malformed account payload: %v", err)}
	}
	return &account, nil
}

// SubmitBatch posts the full batch in a single request and returns the
// upstream response body verbatim on success.
func (c *Client) SubmitBatch(ctx context.Context, bulk BulkRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(bulk)
	if err != nil {
		return nil, fmt.Errorf("encoding bulk request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transactions/bulk", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("bulk ingest rejected", "status", resp.StatusCode, "items", len(bulk.Items))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("bulk ingest accepted", "status", resp.StatusCode, "items", len(bulk.Items))
	return json.RawMessage(body), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
