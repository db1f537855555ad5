package importer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ledgerkit/bankimport/pkg/ledger"
	"github.com/ledgerkit/bankimport/pkg/models"
	"github.com/ledgerkit/bankimport/pkg/parser"
)

// Sentinel errors for the apply-phase taxonomy. Their messages double as the
// wire error codes the boundary layer returns.
var (
	ErrInvalidPayload       = errors.New("invalid_payload")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrAccountInactive      = errors.New("account_inactive")
	ErrAccountMissingFields = errors.New("account_missing_fields")
)

// AccountDirectory resolves destination account metadata.
type AccountDirectory interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
}

// BulkIngester submits normalized batches to the upstream ledger.
type BulkIngester interface {
	SubmitBatch(ctx context.Context, bulk ledger.BulkRequest) (json.RawMessage, error)
}

// Importer orchestrates the preview and apply phases. Parsing is pure and
// local; only Apply talks to the outside world.
type Importer struct {
	registry      *parser.Registry
	directory     AccountDirectory
	ingest        BulkIngester
	logger        *log.Logger
	defaultPolicy models.ImportPolicy
}

func New(registry *parser.Registry, directory AccountDirectory, ingest BulkIngester, logger *log.Logger, defaultPolicy models.ImportPolicy) *Importer {
	if !defaultPolicy.Valid() {
		defaultPolicy = models.PolicyStrict
	}
	return &Importer{
		registry:      registry,
		directory:     directory,
		ingest:        ingest,
		logger:        logger,
		defaultPolicy: defaultPolicy,
	}
}

// Preview parses raw file bytes and returns the full result for caller
// review. No network calls happen here.
func (i *Importer) Preview(data []byte, filename string) *models.ParseResult {
	res := i.registry.SniffAndParse(data, filename)
	i.logger.Info("preview parsed",
		"filename", filename,
		"ok", res.OK,
		"rows", len(res.Rows),
		"row_errors", len(res.RowErrors))
	return res
}

// Apply resolves the destination account, finalizes every row against it and
// submits the batch upstream under the chosen policy.
func (i *Importer) Apply(ctx context.Context, req models.BatchRequest) (json.RawMessage, error) {
	if req.AccountID <= 0 || len(req.Rows) == 0 {
		return nil, ErrInvalidPayload
	}

	policy := i.defaultPolicy
	if req.Policy != "" {
		if !req.Policy.Valid() {
			return nil, ErrInvalidPayload
		}
		policy = req.Policy
	}

	account, err := i.directory.GetAccount(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}

	number := normalizeAccountNumber(account.AccountNumber)
	code := strings.ToUpper(strings.TrimSpace(account.BankCode))
	if number == "" || code == "" {
		return nil, ErrAccountMissingFields
	}

	batchID := uuid.NewString()
	items := make([]models.NormalizedTxn, 0, len(req.Rows))
	for idx, row := range req.Rows {
		// The resolved account always wins over whatever the parser guessed,
		// and the fingerprint is re-derived over the final fields.
		row.BankCode = code
		row.Fingerprint = parser.Fingerprint(row)

		currency := row.Currency
		if currency == "" {
			currency = account.Currency
		}
		refNo := row.RefNo
		if refNo == "" {
			refNo = row.Fingerprint
		}

		items = append(items, models.NormalizedTxn{
			BankCode:       code,
			AccountNumber:  number,
			CounterAccount: row.CounterAccount,
			TxnTime:        row.TxnTime,
			Amount:         row.Amount,
			Currency:       currency,
			Description:    row.Description,
			RefNo:          refNo,
			SrcLine:        idx + 1,
		})
	}

	i.logger.Info("submitting batch",
		"batch_id", batchID,
		"account_id", req.AccountID,
		"items", len(items),
		"policy", policy)

	out, err := i.ingest.SubmitBatch(ctx, ledger.BulkRequest{
		CompanyCode: account.CompanyCode,
		Policy:      policy,
		BatchID:     batchID,
		Items:       items,
	})
	if err != nil {
		i.logger.Warn("batch submission failed", "batch_id", batchID, "err", err)
		return nil, err
	}
	return out, nil
}

// normalizeAccountNumber strips spaces and punctuation, keeping letters and
// digits only.
func normalizeAccountNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.ToUpper(s))
}
