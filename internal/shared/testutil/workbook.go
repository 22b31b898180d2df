package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// OrderPaymentsSheet is the sheet name marketplace exports use.
const OrderPaymentsSheet = "Order Payments"

// Workbook describes a single-sheet workbook fixture: a banner row, a header
// row, then data rows.
type Workbook struct {
	Sheet  string
	Banner string
	Header []string
	Rows   [][]any
}

// Bytes renders the workbook as .xlsx bytes.
func (wb Workbook) Bytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := wb.Sheet
	if sheet == "" {
		sheet = OrderPaymentsSheet
	}
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	banner := wb.Banner
	if banner == "" {
		banner = "Order payments export"
	}
	require.NoError(t, f.SetCellValue(sheet, "A1", banner))

	if len(wb.Header) > 0 {
		require.NoError(t, f.SetSheetRow(sheet, "A2", &wb.Header))
	}
	for i, row := range wb.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// WriteFile writes the workbook into dir and returns its path.
func (wb Workbook) WriteFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, wb.Bytes(t), 0o644))
	return path
}
