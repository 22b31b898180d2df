// Package shared holds helpers used across packages that belong to no single
// layer.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and an excelize-backed builder for order payments workbook
// fixtures.
package shared
