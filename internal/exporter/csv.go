package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// utf8BOM helps Excel recognise UTF-8 product names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes CSV files under a single output directory
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at dir
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	return &CSVWriter{
		dir:    dir,
		logger: logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// WriteCSV writes a CSV file and returns its full path. The file is written
// to a temporary name and renamed, so readers never see a partial export.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(name)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(filepath.Dir(fullPath), ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := file.Name()
	defer os.Remove(tmpPath)

	if err := writeRecords(file, options); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	return fullPath, nil
}

// WriteSimpleCSV writes headers and records with a BOM for Excel
func (w *CSVWriter) WriteSimpleCSV(name string, headers []string, records [][]string) (string, error) {
	return w.WriteCSV(name, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

func writeRecords(file *os.File, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath keeps absolute paths and places relative ones under the
// writer's directory.
func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}
