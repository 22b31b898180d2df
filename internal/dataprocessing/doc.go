// Package dataprocessing turns marketplace "Order Payments" workbooks into a
// seller summary report.
//
// # Stages
//
//	ReadWorkbook   .xlsx -> RawTable (banner skipped, header row 1)
//	SchemaRegistry RawTable header -> ColumnSet (v1, v2, registered, or auto)
//	Normalize      tables -> []OrderRecord (dedup, date parse, window, coercion)
//	Aggregate      records -> overall, per-product and per-date totals
//	Calculate      totals + constants -> Financials for a report mode
//	Assemble       -> domain.SummaryReport, rounded to 2 decimals
//
// Pipeline.Run wires the stages together and is the only entry point that
// reads files. Everything downstream of parsing is pure.
//
// # Errors
//
// Missing sheets or columns are INPUT_SCHEMA errors, unreadable workbooks are
// PARSING errors, and missing constants or non-finite results are
// COMPUTATION errors. A report is either complete or not returned at all.
package dataprocessing
