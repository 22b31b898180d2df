package dataprocessing

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"sellerpulse/internal/errors"
)

// OrderPaymentsSheet is the sheet every marketplace export carries.
const OrderPaymentsSheet = "Order Payments"

// RawTable is the order payments sheet of one workbook: the header row and
// the data rows below it, as cell text.
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// ReadWorkbook reads the order payments sheet from an .xlsx stream. Row 0 is
// a banner and is skipped, row 1 is the header, and fully blank data rows are
// dropped. Cells are read raw so dates arrive as Excel serials rather than
// locale-formatted text.
func ReadWorkbook(r io.Reader, source string) (*RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to open workbook %s", source), err).
			WithContext("file", source)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(OrderPaymentsSheet); err != nil || idx < 0 {
		return nil, errors.NewInputSchemaError(
			fmt.Sprintf("workbook %s has no %q sheet", source, OrderPaymentsSheet), nil).
			WithContext("file", source).
			WithContext("sheets", f.GetSheetList())
	}

	rows, err := f.GetRows(OrderPaymentsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet of %s", source), err).
			WithContext("file", source)
	}

	if len(rows) < 2 || isBlankRow(rows[1]) {
		return nil, errors.NewInputSchemaError(
			fmt.Sprintf("workbook %s has no header row in %q", source, OrderPaymentsSheet), nil).
			WithContext("file", source)
	}

	table := &RawTable{
		Source: source,
		Header: rows[1],
		Rows:   make([][]string, 0, len(rows)-2),
	}
	for _, row := range rows[2:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Cell returns the text at column i of row, or "" past the end. excelize
// trims trailing empty cells, so short rows are normal.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
