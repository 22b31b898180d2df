package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved, absolute directories the application uses.
type Paths struct {
	BaseDir    string
	DataDir    string
	UploadsDir string
	ReportsDir string
	LogsDir    string
}

// GetPaths resolves cfg against the executable directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return ResolvePaths(filepath.Dir(exe), cfg), nil
}

// ResolvePaths joins every relative directory in cfg onto base.
func ResolvePaths(base string, cfg PathsConfig) *Paths {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    abs(cfg.DataDir),
		UploadsDir: abs(cfg.UploadsDir),
		ReportsDir: abs(cfg.ReportsDir),
		LogsDir:    abs(cfg.LogsDir),
	}
}

// Config converts the resolved paths back to configuration form.
func (p *Paths) Config() PathsConfig {
	return PathsConfig{
		DataDir:    p.DataDir,
		UploadsDir: p.UploadsDir,
		ReportsDir: p.ReportsDir,
		LogsDir:    p.LogsDir,
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.UploadsDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Default().Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// EnsureDirectories creates the configured directories.
func (c PathsConfig) EnsureDirectories() error {
	return (&Paths{
		DataDir:    c.DataDir,
		UploadsDir: c.UploadsDir,
		ReportsDir: c.ReportsDir,
		LogsDir:    c.LogsDir,
	}).EnsureDirectories()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
