package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledgerkit/bankimport/pkg/models"
)

// csvFormat is the generic delimited-text fallback. It sniffs the separator
// from the first line and leans on the shared synonym table, so it accepts
// any bank export the specific formats do not claim first.
type csvFormat struct {
	loc *time.Location
}

func newCSVFormat(loc *time.Location) *csvFormat {
	return &csvFormat{loc: loc}
}

func (f *csvFormat) Name() string { return "csv" }

func (f *csvFormat) CanParse(data []byte, filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
	default:
		return false
	}
	h := head(data, 4096)
	if bytes.IndexByte(h, 0) >= 0 {
		return false
	}
	return sniffSeparator(h) != 0
}

func (f *csvFormat) Parse(data []byte) *models.ParseResult {
	sep := sniffSeparator(head(data, 4096))
	if sep == 0 {
		sep = ','
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	grid, err := r.ReadAll()
	if err != nil {
		return &models.ParseResult{OK: false, Errors: []string{fmt.Sprintf("cannot read csv: %v", err)}}
	}

	return parseGrid(grid, gridOptions{loc: f.loc})
}

// sniffSeparator picks the most frequent candidate separator in the head
// sample, or 0 when none occurs. Counting across several lines keeps a
// separator-free preamble line from hiding the table below it.
func sniffSeparator(h []byte) rune {
	best, bestCount := rune(0), 0
	for _, sep := range []rune{';', ',', '\t', '|'} {
		if n := bytes.Count(h, []byte(string(sep))); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}
