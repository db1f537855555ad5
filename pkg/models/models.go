package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedRow is one transaction candidate extracted from a statement file.
// Amount is signed: positive = credit, negative = debit. BankCode is the
// parser's provisional guess and is always overridden at apply time with the
// resolved account's value.
type ParsedRow struct {
	BankCode       string            `json:"bank_code,omitempty"`
	TxnTime        time.Time         `json:"txn_time"`
	Description    string            `json:"description,omitempty"`
	Amount         decimal.Decimal   `json:"amount"`
	Balance        *decimal.Decimal  `json:"balance_after,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	CounterAccount string            `json:"counter_account,omitempty"`
	RefNo          string            `json:"ref_no,omitempty"`
	Fingerprint    string            `json:"fingerprint"`
	Raw            map[string]string `json:"raw,omitempty"`
}

// RowError records why one source row was rejected. Row is the 1-based
// position in the source file, counting the header as row one.
type RowError struct {
	Row    int    `json:"source_row_number"`
	Reason string `json:"reason"`
}

// ParseResult carries both successes and failures of one parse call.
// Every data row lands in exactly one of Rows or RowErrors, both in source
// order. OK reports whether the container could be decoded at all, not
// whether any individual row survived.
type ParseResult struct {
	OK        bool        `json:"ok"`
	Rows      []ParsedRow `json:"rows"`
	Errors    []string    `json:"errors,omitempty"`
	RowErrors []RowError  `json:"row_errors,omitempty"`
}

// AddError appends a file-level error message.
func (r *ParseResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// ImportPolicy is the conflict-resolution mode for a bulk submission.
type ImportPolicy string

const (
	// PolicyStrict rejects the whole batch when any item collides upstream.
	PolicyStrict ImportPolicy = "STRICT"
	// PolicyReplace allows overwriting colliding entries upstream.
	PolicyReplace ImportPolicy = "REPLACE"
)

// Valid reports whether p is a known policy.
func (p ImportPolicy) Valid() bool {
	return p == PolicyStrict || p == PolicyReplace
}

// NormalizedTxn is the wire record submitted to the upstream ledger.
// ProviderUID and StatementUID are never filled in here; assigning them is
// the upstream service's job.
type NormalizedTxn struct {
	BankCode       string          `json:"bank_code"`
	AccountNumber  string          `json:"account_number"`
	CounterAccount string          `json:"counter_account,omitempty"`
	TxnTime        time.Time       `json:"txn_time"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency,omitempty"`
	Description    string          `json:"description,omitempty"`
	RefNo          string          `json:"ref_no,omitempty"`
	ProviderUID    string          `json:"provider_uid,omitempty"`
	StatementUID   string          `json:"statement_uid,omitempty"`
	SrcLine        int             `json:"src_line"`
}

// Account is the destination account as resolved by the account directory.
type Account struct {
	ID            int64  `json:"id"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
	CompanyCode   string `json:"company_code"`
	Active        bool   `json:"is_active"`
}

// BatchRequest is the apply-phase input: the caller-selected rows plus the
// destination account. Policy is optional and defaults to STRICT.
type BatchRequest struct {
	AccountID int64        `json:"account_id"`
	Policy    ImportPolicy `json:"policy,omitempty"`
	Rows      []ParsedRow  `json:"rows"`
}
