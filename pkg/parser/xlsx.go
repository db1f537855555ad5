package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerkit/bankimport/pkg/models"
)

var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// xlsxFormat decodes spreadsheet-XML workbooks. Only the first sheet is
// read; banks put the statement there and anything else is boilerplate.
type xlsxFormat struct {
	loc *time.Location
}

func newXLSXFormat(loc *time.Location) *xlsxFormat {
	return &xlsxFormat{loc: loc}
}

func (f *xlsxFormat) Name() string { return "xlsx" }

func (f *xlsxFormat) CanParse(data []byte, filename string) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func (f *xlsxFormat) Parse(data []byte) *models.ParseResult {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return &models.ParseResult{OK: false, Errors: []string{fmt.Sprintf("cannot open workbook: %v", err)}}
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	grid, err := wb.GetRows(sheet)
	if err != nil {
		return &models.ParseResult{OK: false, Errors: []string{fmt.Sprintf("cannot read sheet %q: %v", sheet, err)}}
	}

	return parseGrid(grid, gridOptions{loc: f.loc})
}
