package parser

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ledgerkit/bankimport/pkg/models"
)

// Format is the two-operation capability every statement format implements:
// a cheap probe and the parse itself. Variants differ only in container
// decoding, header synonyms and bank quirks.
type Format interface {
	Name() string
	CanParse(data []byte, filename string) bool
	Parse(data []byte) *models.ParseResult
}

// Registry holds the ordered format list. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	logger  *log.Logger
	formats []Format
}

// New builds the default registry. Order matters: bank-specific probes come
// before the generic ones that would otherwise shadow them.
func New(logger *log.Logger, loc *time.Location) *Registry {
	return &Registry{
		logger: logger,
		formats: []Format{
			newSparkasseCSV(loc),
			newXLSXFormat(loc),
			newXLSFormat(loc),
			newCSVFormat(loc),
		},
	}
}

// SniffAndParse probes formats in registration order; the first accepting
// format parses and its result is returned as-is. The filename is a weak
// hint only, never trusted for correctness.
func (r *Registry) SniffAndParse(data []byte, filename string) *models.ParseResult {
	for _, f := range r.formats {
		if !f.CanParse(data, filename) {
			continue
		}
		r.logger.Debug("format matched", "format", f.Name(), "filename", filename)
		return f.Parse(data)
	}
	r.logger.Debug("no format matched", "filename", filename, "size", len(data))
	return &models.ParseResult{OK: false, Errors: []string{"no parser matched"}}
}
