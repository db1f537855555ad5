package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankimport/pkg/models"
)

// descriptionSeparator joins remarks/purpose columns into one description.
const descriptionSeparator = " | "

type gridOptions struct {
	loc *time.Location
	// pending reports bank-side unbooked entries. They are not transactions
	// yet, but they are still data rows: they land in RowErrors, never in
	// Rows and never nowhere.
	pending func(values map[string]string) bool
}

var errAmountZero = errors.New("amount is zero")
var errTxnTimeMissing = errors.New("transaction time missing or unparseable")
var errPendingRow = errors.New("pending transaction skipped")

// parseGrid turns a decoded cell grid into a ParseResult. One malformed row
// never aborts the rest: its 1-based source position and reason land in
// RowErrors while the scan continues.
func parseGrid(grid [][]string, opts gridOptions) *models.ParseResult {
	res := &models.ParseResult{OK: true}
	if len(grid) == 0 {
		res.AddError("no transactions found")
		return res
	}

	headerIdx, found := findHeaderRow(grid)
	if !found {
		res.AddError("header row not detected, assuming first row")
	}

	header := make([]string, len(grid[headerIdx]))
	canonical := make([]string, len(grid[headerIdx]))
	for i, cell := range grid[headerIdx] {
		header[i] = normalizeCell(cell)
		if mapped, ok := mapHeader(cell); ok {
			canonical[i] = mapped
		}
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		cells := grid[i]
		if isEmptyRow(cells) {
			continue
		}
		row, err := buildRow(header, canonical, cells, opts)
		if err != nil {
			res.RowErrors = append(res.RowErrors, models.RowError{Row: i + 1, Reason: err.Error()})
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	if len(res.Rows) == 0 && len(res.RowErrors) == 0 {
		res.AddError("no transactions found")
	}
	return res
}

// buildRow constructs one ParsedRow. Panics from a single malformed row are
// recovered and reported as that row's error.
func buildRow(header, canonical, cells []string, opts gridOptions) (row models.ParsedRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row construction failed: %v", r)
		}
	}()

	values := map[string]string{}
	raw := map[string]string{}
	for i, cell := range cells {
		if i >= len(header) {
			break
		}
		v := normalizeCell(cell)
		if isAbsent(v) {
			continue
		}
		name := header[i]
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		// raw keeps the cell verbatim for audit; only the typed fields see
		// the normalized value.
		if _, dup := raw[name]; !dup {
			raw[name] = cell
		}
		if canonical[i] != "" {
			if _, dup := values[canonical[i]]; !dup {
				values[canonical[i]] = v
			}
		}
	}

	if opts.pending != nil && opts.pending(values) {
		return row, errPendingRow
	}

	txnTime, ok := ParseDateTime(values[colTxnTime], opts.loc)
	if !ok {
		return row, errTxnTimeMissing
	}

	amount, err := netAmount(values)
	if err != nil {
		return row, err
	}

	row = models.ParsedRow{
		BankCode:       provisionalBankCode(values),
		TxnTime:        txnTime,
		Description:    joinDescription(values),
		Amount:         amount,
		Currency:       strings.ToUpper(values[colCurrency]),
		CounterAccount: values[colCounterAccount],
		RefNo:          values[colRefNo],
		Raw:            raw,
	}
	if bal, ok := ParseAmount(values[colBalance]); ok {
		row.Balance = &bal
	}
	row.Fingerprint = Fingerprint(row)
	return row, nil
}

// netAmount prefers a single signed amount column and otherwise combines
// credit minus debit, treating an absent side as zero. A net of exactly zero
// is rejected: it nearly always means a misread column.
func netAmount(values map[string]string) (decimal.Decimal, error) {
	if amt, ok := ParseAmount(values[colAmount]); ok {
		if amt.IsZero() {
			return decimal.Decimal{}, errAmountZero
		}
		return amt, nil
	}

	credit, creditOK := ParseAmount(values[colCredit])
	debit, debitOK := ParseAmount(values[colDebit])
	if !creditOK && !debitOK {
		return decimal.Decimal{}, errAmountZero
	}
	net := credit.Sub(debit.Abs())
	if net.IsZero() {
		return decimal.Decimal{}, errAmountZero
	}
	return net, nil
}

func joinDescription(values map[string]string) string {
	var parts []string
	if v := values[colDescription]; v != "" {
		parts = append(parts, v)
	}
	if v := values[colPurpose]; v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, descriptionSeparator)
}

// provisionalBankCode guesses a bank code from the file: an explicit column
// wins, then the BLZ embedded in the statement's own German IBAN. Empty when
// the file offers neither; apply overrides it with the directory's value
// anyway.
func provisionalBankCode(values map[string]string) string {
	if v := values[colBankCode]; v != "" {
		return strings.ToUpper(v)
	}
	return bankCodeFromIBAN(values[colOwnAccount])
}

// bankCodeFromIBAN extracts the 8-digit Bankleitzahl from a German IBAN.
func bankCodeFromIBAN(s string) string {
	v := strings.ToUpper(strings.ReplaceAll(normalizeCell(s), " ", ""))
	if len(v) == 22 && strings.HasPrefix(v, "DE") {
		return v[4:12]
	}
	return ""
}

// isAbsent reports NaN-like placeholder cells that must not survive into the
// raw map.
func isAbsent(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "#n/a", "n/a", "-", "null", "none":
		return true
	}
	return false
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if normalizeCell(c) != "" {
			return false
		}
	}
	return true
}
