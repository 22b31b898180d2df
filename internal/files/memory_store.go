package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"sellerpulse/internal/errors"
)

// MemoryStore keeps workbooks in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryFile
	now   func() time.Time
}

type memoryFile struct {
	data    []byte
	modTime time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string]memoryFile),
		now:   time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, name string, r io.Reader) (FileInfo, error) {
	name, err := CleanName(name)
	if err != nil {
		return FileInfo{}, err
	}
	data, err := io.ReadAll(contextReader{ctx: ctx, r: r})
	if err != nil {
		if ctx.Err() != nil {
			return FileInfo{}, ctx.Err()
		}
		return FileInfo{}, errors.NewStorageError(fmt.Sprintf("failed to read %s", name), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := memoryFile{data: data, modTime: s.now()}
	s.files[name] = f
	return FileInfo{Name: name, Size: int64(len(data)), ModTime: f.modTime}, nil
}

// Put stores data with an explicit modification time.
func (s *MemoryStore) Put(name string, data []byte, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = memoryFile{data: data, modTime: modTime}
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]FileInfo, 0, len(s.files))
	for name, f := range s.files {
		if !IsWorkbook(name) {
			continue
		}
		files = append(files, FileInfo{Name: name, Size: int64(len(f.data)), ModTime: f.modTime})
	}
	if len(files) == 0 {
		return nil, errors.NewNotFoundError("order payment files")
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Open implements Store.
func (s *MemoryStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	f, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("file %s", name)).
			WithContext("filename", name)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
