package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

// SourceExtensions are the file extensions the loader reads
var SourceExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileValidator checks source and export paths before any work starts
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

// IsSourceName reports whether name has a supported extension and is not
// an Office lock file (~$Summary.xlsx).
func IsSourceName(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, s := range SourceExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ValidateSourceFile checks that path is a readable source file
func (v *FileValidator) ValidateSourceFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Source file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError("source file " + path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat source file", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}
	if !IsSourceName(path) {
		v.logger.Error("Unsupported source file",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a supported source (want %s)", path, strings.Join(SourceExtensions, ", ")))
	}

	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError("source file is not readable", err).WithContext("path", path)
	}
	f.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExportPath checks that path carries the extension of format and
// that its directory exists or can be created and is writable.
func (v *FileValidator) ValidateExportPath(path string, format domain.ExportFormat) error {
	if want := "." + string(format); !strings.EqualFold(filepath.Ext(path), want) {
		return apperrors.NewAppValidationError(fmt.Sprintf("export path %s should end in %s", path, want))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("export path %s is a directory", path))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures dir exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to create output directory", err).WithContext("directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("output directory is not writable", err).WithContext("directory", dir)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
