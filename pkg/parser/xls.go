package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/extrame/xls"

	"github.com/ledgerkit/bankimport/pkg/models"
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// xlsReadLimit caps how many rows are pulled from a legacy workbook.
const xlsReadLimit = 5000

// xlsFormat decodes legacy binary workbooks.
type xlsFormat struct {
	loc *time.Location
}

func newXLSFormat(loc *time.Location) *xlsFormat {
	return &xlsFormat{loc: loc}
}

func (f *xlsFormat) Name() string { return "xls" }

func (f *xlsFormat) CanParse(data []byte, filename string) bool {
	return bytes.HasPrefix(data, oleMagic)
}

func (f *xlsFormat) Parse(data []byte) *models.ParseResult {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return &models.ParseResult{OK: false, Errors: []string{fmt.Sprintf("cannot open workbook: %v", err)}}
	}

	grid := workbook.ReadAllCells(xlsReadLimit)
	return parseGrid(grid, gridOptions{loc: f.loc})
}
