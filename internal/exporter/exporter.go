package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "ordersdash/internal/errors"
	"ordersdash/pkg/contracts/domain"
)

// Options configures CSV and workbook output
type Options struct {
	// BOM prefixes CSV output with a UTF-8 byte order mark
	BOM bool
	// SheetName names the workbook sheet
	SheetName string
}

// DefaultOptions returns the options used for downloads
func DefaultOptions() Options {
	return Options{BOM: true, SheetName: defaultSheet}
}

// Exporter writes tables in any supported format and logs what it wrote
type Exporter struct {
	logger *slog.Logger
	opts   Options
}

// New creates an exporter
func New(logger *slog.Logger, opts Options) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		logger: logger.With(slog.String("component", "exporter")),
		opts:   opts,
	}
}

// Export writes t to w in format
func (e *Exporter) Export(w io.Writer, format domain.ExportFormat, t domain.Table) error {
	start := time.Now()

	var err error
	switch format {
	case domain.ExportFormatCSV:
		err = WriteCSV(w, t, e.opts)
	case domain.ExportFormatXLSX:
		err = WriteXLSX(w, t, e.opts)
	default:
		return apperrors.NewAppValidationError(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return apperrors.NewExportError("export failed", err).WithContext("format", string(format))
	}

	e.logger.Debug("table exported",
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// ExportFile writes t to path, creating parent directories
func (e *Exporter) ExportFile(path string, format domain.ExportFormat, t domain.Table) error {
	if err := writeFile(path, func(w io.Writer) error {
		return e.Export(w, format, t)
	}); err != nil {
		return err
	}
	e.logger.Info("export written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.Len()))
	return nil
}

// WriteCSVFile writes t as CSV to path, creating parent directories
func WriteCSVFile(path string, t domain.Table, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return WriteCSV(w, t, opts) })
}

// WriteXLSXFile writes t as a workbook to path, creating parent directories
func WriteXLSXFile(path string, t domain.Table, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return WriteXLSX(w, t, opts) })
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create file", err).WithContext("path", path)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = apperrors.NewStorageError("failed to close file", cerr).WithContext("path", path)
		}
	}()

	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		return err
	}
	return buf.Flush()
}
