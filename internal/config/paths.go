package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the directories the application reads from and writes to.
// Relative paths in the configuration are resolved against BaseDir.
type Paths struct {
	BaseDir    string
	DataDir    string
	ExportsDir string
	LogsDir    string
}

// GetPaths returns the application paths under base. An empty base uses
// the current working directory.
func GetPaths(base string) (*Paths, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := filepath.Join(base, "data")
	return &Paths{
		BaseDir:    base,
		DataDir:    dataDir,
		ExportsDir: filepath.Join(dataDir, "exports"),
		LogsDir:    filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirectories creates the data, export and log directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Default().Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// Resolve returns path unchanged when absolute or empty, else joined to BaseDir
func (p *Paths) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// ExportPath returns the location of an export file name
func (p *Paths) ExportPath(name string) string {
	return filepath.Join(p.ExportsDir, name)
}

// Apply rewrites the relative source and log file paths of cfg
func (p *Paths) Apply(cfg *Config) {
	cfg.Sources.PrimaryPath = p.Resolve(cfg.Sources.PrimaryPath)
	cfg.Sources.SecondaryPath = p.Resolve(cfg.Sources.SecondaryPath)
	cfg.Logging.FilePath = p.Resolve(cfg.Logging.FilePath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
