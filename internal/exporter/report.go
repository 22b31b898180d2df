package exporter

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"sellerpulse/pkg/contracts/domain"
)

// File names written by ExportReport, prefixed by the caller's prefix.
const (
	ProductwiseFile = "productwise.csv"
	PaymentsFile    = "neft_summary.csv"
	SummaryFile     = "summary.csv"
	WorkbookFile    = "summary.xlsx"
)

var productwiseHeaders = []string{
	"Product Name", "Total Orders", "Total Settlement Amount",
	"Return Count", "Return Amount", "Product Return Amount",
	"Customer Shipping Charge", "Customer Return Count", "Customer Return Amount",
	"RTO Count", "RTO Amount", "Claims Count", "Claims Amount",
}

var paymentsHeaders = []string{"Payment Date", "Final Settlement Amount", "Ads Amount", "Total Amount"}

var summaryHeaders = []string{"Section", "Line", "Amount"}

// ReportExporter writes a summary report as CSV files and an Excel workbook
type ReportExporter struct {
	writer *CSVWriter
	dir    string
	logger *slog.Logger
}

// NewReportExporter creates an exporter writing into dir
func NewReportExporter(dir string, logger *slog.Logger) *ReportExporter {
	return &ReportExporter{
		writer: NewCSVWriter(dir, logger),
		dir:    dir,
		logger: logger.With(slog.String("component", "report_exporter")),
	}
}

// ExportReport writes the productwise, NEFT and section CSVs plus a workbook
// holding all three. It returns the written paths in that order.
func (e *ReportExporter) ExportReport(report *domain.SummaryReport, prefix string) ([]string, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to export")
	}

	name := func(file string) string {
		if prefix == "" {
			return file
		}
		return prefix + "_" + file
	}

	tables := []struct {
		file    string
		headers []string
		records [][]string
	}{
		{ProductwiseFile, productwiseHeaders, productwiseRecords(report.Productwise)},
		{PaymentsFile, paymentsHeaders, paymentRecords(report.PaymentsByDate)},
		{SummaryFile, summaryHeaders, sectionRecords(report)},
	}

	written := make([]string, 0, len(tables)+1)
	for _, t := range tables {
		path, err := e.writer.WriteSimpleCSV(name(t.file), t.headers, t.records)
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", t.file, err)
		}
		written = append(written, path)
	}

	book := filepath.Join(e.dir, name(WorkbookFile))
	if err := writeWorkbook(book, report); err != nil {
		return written, fmt.Errorf("failed to export %s: %w", WorkbookFile, err)
	}
	written = append(written, book)

	e.logger.Info("Report exported",
		slog.Int("files", len(written)),
		slog.Int("products", len(report.Productwise)),
		slog.Int("payment_dates", len(report.PaymentsByDate)))

	return written, nil
}

func productwiseRecords(rows []domain.ProductBreakdown) [][]string {
	records := make([][]string, 0, len(rows))
	for _, p := range rows {
		records = append(records, []string{
			p.ProductName,
			formatInt(p.TotalOrders),
			formatFloat(p.TotalSettlementAmount),
			formatInt(p.ReturnCount),
			formatFloat(p.ReturnAmount),
			formatFloat(p.ProductReturnAmount),
			formatFloat(p.CustomerShippingCharge),
			formatInt(p.CustomerReturnCount),
			formatFloat(p.CustomerReturnAmount),
			formatInt(p.RTOCount),
			formatFloat(p.RTOAmount),
			formatInt(p.ClaimsCount),
			formatFloat(p.ClaimsAmount),
		})
	}
	return records
}

func paymentRecords(rows []domain.DatePaymentSummary) [][]string {
	records := make([][]string, 0, len(rows))
	for _, d := range rows {
		records = append(records, []string{
			d.PaymentDate,
			formatFloat(d.FinalSettlementAmount),
			formatFloat(d.AdsAmount),
			formatFloat(d.TotalAmount),
		})
	}
	return records
}

// sectionRecords flattens the gross profit, funds flow and quantity sections
// into Section/Line/Amount rows.
func sectionRecords(r *domain.SummaryReport) [][]string {
	gp, ff, q := r.GrossProfit, r.FundsFlow, r.Quantity
	amount := func(section, line string, v float64) []string {
		return []string{section, line, formatFloat(v)}
	}
	count := func(section, line string, v int) []string {
		return []string{section, line, formatInt(v)}
	}

	const (
		gross = "Calculation of Gross Profit"
		funds = "Funds Flow Analysis"
		qty   = "Quantity Analysis"
	)
	return [][]string{
		amount(gross, "Sales (excl. GST)", gp.SalesExclGST),
		amount(gross, "Commission", gp.Commission),
		amount(gross, "Shipping", gp.Shipping),
		amount(gross, "Other Charges", gp.OtherCharges),
		amount(gross, "Ads Cost", gp.AdsCost),
		amount(gross, "Sales Less Expenses", gp.SalesLessExpenses),
		amount(gross, "Non-refundable GST", gp.NonRefundableGST),
		amount(gross, "Cost of Goods Sold", gp.CostOfGoodsSold),
		amount(gross, "Gross Profit", gp.GrossProfit),
		amount(gross, "Gross Profit %", gp.GrossProfitPercent),
		amount(funds, "Sales Less Expenses", ff.SalesLessExpenses),
		amount(funds, "Non-refundable GST", ff.NonRefundableGST),
		amount(funds, "Refundable GST", ff.RefundableGST),
		amount(funds, "GST Payable", ff.GSTPayable),
		amount(funds, "TDS", ff.TDS),
		amount(funds, "Claims from Meesho", ff.ClaimsFromMarketplace),
		amount(funds, "Net Amount Received", ff.NetAmountReceived),
		amount(funds, "Average Payment Cycle (days)", ff.AveragePaymentCycleDays),
		count(qty, "Sales Qty", q.SalesQty),
		count(qty, "Customer Return Qty", q.CustomerReturnQty),
		count(qty, "RTO Return Qty", q.RTOReturnQty),
		count(qty, "Net Sales Qty", q.NetSalesQty),
	}
}

// writeWorkbook writes the three tables as sheets of one workbook
func writeWorkbook(path string, r *domain.SummaryReport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name     string
		headers  []string
		records  [][]string
		textCols int
	}{
		{"Summary", summaryHeaders, sectionRecords(r), 2},
		{"Productwise", productwiseHeaders, productwiseRecords(r.Productwise), 1},
		{"NEFT", paymentsHeaders, paymentRecords(r.PaymentsByDate), 1},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeSheet(f, s.name, s.headers, s.records, s.textCols); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// writeSheet writes headers and records starting at A1. Columns past the
// leading textCols are stored as numbers so the workbook stays summable.
func writeSheet(f *excelize.File, sheet string, headers []string, records [][]string, textCols int) error {
	rows := append([][]string{headers}, records...)
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
			if i > 0 && j >= textCols {
				if n, ok := parseNumber(v); ok {
					cells[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}
