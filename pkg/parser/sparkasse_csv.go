package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerkit/bankimport/pkg/models"
)

// sparkasseCSV handles the semicolon-delimited German Sparkasse export
// (CSV-CAMT). Quirks: comma decimals, no bank-native reference number, and
// pending ("vorgemerkt") rows mixed into the table that are rejected with a
// row error instead of parsed as transactions.
type sparkasseCSV struct {
	loc *time.Location
}

func newSparkasseCSV(loc *time.Location) *sparkasseCSV {
	return &sparkasseCSV{loc: loc}
}

func (f *sparkasseCSV) Name() string { return "sparkasse_csv" }

func (f *sparkasseCSV) CanParse(data []byte, filename string) bool {
	head := bytes.ToLower(head(data, 4096))
	return bytes.Contains(head, []byte("buchungstag")) && bytes.Contains(head, []byte(";"))
}

func (f *sparkasseCSV) Parse(data []byte) *models.ParseResult {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	grid, err := r.ReadAll()
	if err != nil {
		return &models.ParseResult{OK: false, Errors: []string{fmt.Sprintf("cannot read csv: %v", err)}}
	}

	return parseGrid(grid, gridOptions{
		loc:     f.loc,
		pending: isPendingEntry,
	})
}

// isPendingEntry matches the "Umsatz vorgemerkt" booking-text marker. Only
// the booking text decides; a purpose line that merely mentions the word is
// still a booked transaction.
func isPendingEntry(values map[string]string) bool {
	return strings.Contains(strings.ToLower(values[colDescription]), "vorgemerkt")
}

// head returns at most n leading bytes without copying.
func head(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}
