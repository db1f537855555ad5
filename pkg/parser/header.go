package parser

import "strings"

// Canonical column names. Anything a synonym table cannot map stays under its
// original header and flows only into the row's raw map.
const (
	colTxnTime        = "txn_time"
	colValueDate      = "value_date"
	colDescription    = "description"
	colPurpose        = "purpose"
	colDebit          = "debit"
	colCredit         = "credit"
	colAmount         = "amount"
	colBalance        = "balance"
	colCurrency       = "currency"
	colRefNo          = "ref_no"
	colBankCode       = "bank_code"
	colCounterAccount = "counter_account"
	colOwnAccount     = "own_account"
)

// headerSynonyms maps normalized, lower-cased header cells to canonical
// columns. German and English variants of the same logical column live side
// by side; bank exports mix both freely.
var headerSynonyms = map[string]string{
	// transaction time
	"buchungstag":      colTxnTime,
	"buchungsdatum":    colTxnTime,
	"buchung":          colTxnTime,
	"datum":            colTxnTime,
	"transaction date": colTxnTime,
	"transaction time": colTxnTime,
	"booking date":     colTxnTime,
	"date":             colTxnTime,

	// value date
	"valutadatum":  colValueDate,
	"wertstellung": colValueDate,
	"valuta":       colValueDate,
	"value date":   colValueDate,

	// description / remarks
	"buchungstext":        colDescription,
	"umsatztext":          colDescription,
	"beschreibung":        colDescription,
	"description":         colDescription,
	"transaction remarks": colDescription,
	"remarks":             colDescription,
	"narrative":           colDescription,
	"details":             colDescription,

	// purpose / summary
	"verwendungszweck": colPurpose,
	"purpose":          colPurpose,
	"summary":          colPurpose,
	"memo":             colPurpose,
	"reference text":   colPurpose,

	// split amount columns
	"soll":           colDebit,
	"lastschrift":    colDebit,
	"debit":          colDebit,
	"withdrawal":     colDebit,
	"withdrawal amt": colDebit,
	"haben":          colCredit,
	"gutschrift":     colCredit,
	"credit":         colCredit,
	"deposit":        colCredit,
	"deposit amt":    colCredit,

	// single signed amount
	"betrag": colAmount,
	"umsatz": colAmount,
	"amount": colAmount,

	// balance after booking
	"saldo":              colBalance,
	"kontostand":         colBalance,
	"saldo nach buchung": colBalance,
	"balance":            colBalance,
	"balance after":      colBalance,

	// currency
	"währung":  colCurrency,
	"waehrung": colCurrency,
	"currency": colCurrency,
	"ccy":      colCurrency,

	// bank-native reference
	"referenz":       colRefNo,
	"belegnummer":    colRefNo,
	"kundenreferenz": colRefNo,
	"reference":      colRefNo,
	"ref no":         colRefNo,
	"transaction id": colRefNo,
	"tran. id":       colRefNo,
	"cheque no":      colRefNo,

	// own bank identity; a counterparty BIC column is deliberately not
	// mapped here
	"blz":          colBankCode,
	"bankleitzahl": colBankCode,
	"bank code":    colBankCode,

	// counterparty account; counterparty *name* columns stay unmapped and
	// flow into raw only
	"gegenkonto":       colCounterAccount,
	"iban gegenkonto":  colCounterAccount,
	"kontonummer/iban": colCounterAccount,
	"counter account":  colCounterAccount,

	// the statement's own account, used for a provisional bank code only
	"auftragskonto": colOwnAccount,
	"konto":         colOwnAccount,
	"account":       colOwnAccount,
	"a/c no":        colOwnAccount,
}

// txnTimeMarkers is the subset of transaction-time synonyms whose presence
// identifies the header row during the scan.
var txnTimeMarkers = map[string]bool{
	"buchungstag":      true,
	"buchungsdatum":    true,
	"datum":            true,
	"transaction date": true,
	"transaction time": true,
	"booking date":     true,
	"date":             true,
}

// headerScanLimit bounds the header search; statements put at most a few
// preamble lines above the table.
const headerScanLimit = 50

// normalizeCell trims, replaces non-breaking spaces and collapses whitespace.
func normalizeCell(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.TrimSpace(s)
	return strings.Join(strings.Fields(s), " ")
}

// mapHeader translates one header cell to its canonical column. A trailing
// parenthetical like "Betrag (EUR)" is ignored for matching.
func mapHeader(cell string) (string, bool) {
	key := strings.ToLower(normalizeCell(cell))
	if canonical, ok := headerSynonyms[key]; ok {
		return canonical, true
	}
	if i := strings.Index(key, "("); i > 0 {
		if canonical, ok := headerSynonyms[strings.TrimSpace(key[:i])]; ok {
			return canonical, true
		}
	}
	return "", false
}

// findHeaderRow scans at most the first headerScanLimit rows for a cell
// matching any transaction-time marker. When nothing matches it fails open to
// row 0; the caller surfaces that as a file-level note.
func findHeaderRow(grid [][]string) (int, bool) {
	limit := len(grid)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		for _, cell := range grid[i] {
			key := strings.ToLower(normalizeCell(cell))
			if txnTimeMarkers[key] {
				return i, true
			}
			if j := strings.Index(key, "("); j > 0 && txnTimeMarkers[strings.TrimSpace(key[:j])] {
				return i, true
			}
		}
	}
	return 0, false
}
