package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/ledgerkit/bankimport/pkg/models"
)

const fingerprintPrefix = "REF:"

// Fingerprint derives a stable short hash from a normalized row, used as an
// idempotency token when the bank provides no reference number of its own.
// Same normalized row, same fingerprint; it makes no uniqueness promise.
func Fingerprint(row models.ParsedRow) string {
	var b strings.Builder
	b.WriteString(row.BankCode)
	b.WriteByte('|')
	b.WriteString(row.TxnTime.UTC().Format(time.RFC3339))
	b.WriteByte('|')
	b.WriteString(row.Amount.String())
	b.WriteByte('|')
	if row.Balance != nil {
		b.WriteString(row.Balance.String())
	}
	b.WriteByte('|')
	b.WriteString(row.Description)
	b.WriteByte('|')
	b.WriteString(row.RefNo)
	b.WriteByte('|')

	keys := make([]string, 0, len(row.Raw))
	for k := range row.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(row.Raw[k])
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return fingerprintPrefix + strings.ToUpper(hex.EncodeToString(sum[:4]))
}
