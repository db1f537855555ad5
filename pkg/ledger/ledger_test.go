package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankimport/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "t0ken", 5*time.Second, log.New(io.Discard))
}

func TestGetAccount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/accounts/42", r.URL.Path)
		assert.Equal(t, "Bearer t0ken", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(models.Account{
			ID:            42,
			AccountNumber: "DE12345678",
			BankCode:      "12030000",
			Currency:      "EUR",
			CompanyCode:   "ACME",
			Active:        true,
		})
	}))

	account, err := client.GetAccount(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "12030000", account.BankCode)
	assert.True(t, account.Active)
}

func TestGetAccountNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetAccount(context.Background(), 7)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestGetAccountUpstreamFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.GetAccount(context.Background(), 42)
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusInternalServerError, upstream.Status)
	assert.Contains(t, upstream.Body, "boom")
}

func TestSubmitBatch(t *testing.T) {
	var got BulkRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transactions/bulk", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]int{"created": 1})
	}))

	out, err := client.SubmitBatch(context.Background(), BulkRequest{
		CompanyCode: "ACME",
		Policy:      models.PolicyStrict,
		BatchID:     "batch-1",
		Items: []models.NormalizedTxn{{
			BankCode:      "12030000",
			AccountNumber: "DE12345678",
			TxnTime:       time.Date(2025, 10, 13, 16, 31, 40, 0, time.UTC),
			Amount:        decimal.RequireFromString("-850.00"),
			Currency:      "EUR",
			SrcLine:       1,
		}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"created":1}`, string(out))

	assert.Equal(t, "ACME", got.CompanyCode)
	assert.Equal(t, models.PolicyStrict, got.Policy)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].SrcLine)
	assert.True(t, got.Items[0].Amount.Equal(decimal.RequireFromString("-850.00")))
}

func TestSubmitBatchRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate statement"}`))
	}))

	_, err := client.SubmitBatch(context.Background(), BulkRequest{Policy: models.PolicyStrict})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusConflict, upstream.Status)
	assert.JSONEq(t, `{"error":"duplicate statement"}`, upstream.Body)
}

func TestSubmitBatchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, "", time.Second, log.New(io.Discard))
	_, err := client.SubmitBatch(context.Background(), BulkRequest{Policy: models.PolicyStrict})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.Status)
	assert.NotEmpty(t, upstream.Body)
}
