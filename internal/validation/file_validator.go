package validation

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sellerpulse/internal/errors"
)

// zipMagic opens every .xlsx file; workbooks are zip archives.
var zipMagic = []byte("PK\x03\x04")

// FileValidator checks uploaded and on-disk order payment workbooks.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUploadName accepts only .xlsx names, case-insensitively, and
// rejects editor lock files.
func (v *FileValidator) ValidateUploadName(name string) error {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))

	if ext != ".xlsx" {
		v.logger.Warn("Rejected upload with wrong extension",
			slog.String("filename", name),
			slog.String("extension", ext))
		return errors.NewInputFormatError(name)
	}
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejected temporary Excel file",
			slog.String("filename", name))
		return errors.NewInputFormatError(name).WithContext("reason", "temporary file")
	}
	return nil
}

// SniffWorkbook reads the first bytes of r and checks for the zip signature.
// It returns a reader that replays those bytes followed by the rest of r.
func (v *FileValidator) SniffWorkbook(name string, r io.Reader) (io.Reader, error) {
	head := make([]byte, len(zipMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.NewStorageError(fmt.Sprintf("failed to read %s", name), err)
	}
	head = head[:n]

	if !bytes.Equal(head, zipMagic) {
		v.logger.Warn("Rejected upload that is not a workbook",
			slog.String("filename", name),
			slog.Int("bytes_read", n))
		return nil, errors.NewInputFormatError(name).WithContext("reason", "not an xlsx workbook")
	}
	return io.MultiReader(bytes.NewReader(head), r), nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return errors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable .xlsx workbook.
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.ValidateUploadName(filepath.Base(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Info("Output directory validated",
		slog.String("directory", dir))
	return nil
}
