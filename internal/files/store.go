package files

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"sellerpulse/internal/errors"
)

// FileInfo describes one stored workbook.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Store holds uploaded workbooks by name.
type Store interface {
	// Save stores r under name, replacing any existing file of that name.
	Save(ctx context.Context, name string, r io.Reader) (FileInfo, error)
	// List returns the stored workbooks sorted by name. It fails with a
	// NOT_FOUND error when there are none.
	List(ctx context.Context) ([]FileInfo, error)
	// Open opens a stored workbook for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

const stagingPrefix = ".upload-"

// CleanName reduces an uploaded file name to a bare base name and rejects
// names that cannot be stored.
func CleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")))
	switch {
	case base == "", base == ".", base == "..", base == "/":
		return "", errors.NewAppValidationError("file name is empty").WithContext("filename", name)
	case strings.HasPrefix(base, stagingPrefix):
		return "", errors.NewAppValidationError("file name is reserved").WithContext("filename", name)
	}
	return base, nil
}

// IsWorkbook reports whether name is a listable .xlsx workbook.
func IsWorkbook(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, stagingPrefix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}
