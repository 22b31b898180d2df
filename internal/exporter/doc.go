// Package exporter writes order payment summaries to disk.
//
// CSVWriter writes individual CSV files with a UTF-8 BOM for Excel.
// ReportExporter uses it to write the productwise breakdown, the NEFT-wise
// payment summary and the flattened report sections, plus one Excel workbook
// holding all three as sheets.
//
// Example usage:
//
//	exp := exporter.NewReportExporter("/path/to/reports", logger)
//	paths, err := exp.ExportReport(report, "order_payments")
package exporter
