package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"sellerpulse/internal/errors"
)

// DirStore keeps workbooks as files in a single directory.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

// NewDirStore creates a store rooted at dir, creating it if needed.
func NewDirStore(dir string, logger *slog.Logger) (*DirStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewStorageError("failed to create upload directory", err).
			WithContext("dir", dir)
	}
	return &DirStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "dir_store")),
	}, nil
}

// Dir returns the directory the store writes to.
func (s *DirStore) Dir() string {
	return s.dir
}

// Save writes r to a staging file and renames it into place, so readers never
// see a partially written workbook.
func (s *DirStore) Save(ctx context.Context, name string, r io.Reader) (FileInfo, error) {
	name, err := CleanName(name)
	if err != nil {
		return FileInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	staging := filepath.Join(s.dir, stagingPrefix+uuid.NewString()+".tmp")
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(staging)
	if err != nil {
		return FileInfo{}, errors.NewStorageError("failed to create staging file", err)
	}

	written, copyErr := io.Copy(f, contextReader{ctx: ctx, r: r})
	syncErr := f.Sync()
	closeErr := f.Close()
	if err := firstError(copyErr, syncErr, closeErr); err != nil {
		os.Remove(staging)
		if ctx.Err() != nil {
			return FileInfo{}, ctx.Err()
		}
		return FileInfo{}, errors.NewStorageError(fmt.Sprintf("failed to write %s", name), err)
	}

	if err := os.Rename(staging, dst); err != nil {
		os.Remove(staging)
		return FileInfo{}, errors.NewStorageError(fmt.Sprintf("failed to store %s", name), err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return FileInfo{}, errors.NewStorageError(fmt.Sprintf("failed to stat %s", name), err)
	}

	s.logger.InfoContext(ctx, "Workbook stored",
		slog.String("filename", name),
		slog.Int64("size_bytes", written))

	return FileInfo{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// List returns the .xlsx workbooks in the directory sorted by name.
func (s *DirStore) List(ctx context.Context) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("order payment files")
		}
		return nil, errors.NewStorageError("failed to read upload directory", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsWorkbook(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, errors.NewNotFoundError("order payment files")
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	s.logger.DebugContext(ctx, "Listed workbooks", slog.Int("count", len(files)))
	return files, nil
}

// Open opens a stored workbook.
func (s *DirStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := CleanName(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("file %s", clean)).
				WithContext("filename", clean)
		}
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open %s", clean), err)
	}
	return f, nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
