// Package services implements the business logic between the HTTP handlers
// and the order payments pipeline.
//
// ReportService owns the summary use cases: uploading a workbook, listing
// stored workbooks and building a summary report. It resolves per-request
// overrides against the report configuration, picks input files with the
// configured selection policy, and collapses concurrent identical summary
// requests into one pipeline run with singleflight. Reports are never cached
// once that run returns.
//
// HealthService reports liveness, readiness and version information.
//
// Services return *errors.AppError values; handlers turn them into problem
// details.
package services
