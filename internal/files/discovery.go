package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/validation"
)

// FileInfo represents information about a discovered source file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery finds source workbooks in a directory
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{basePath: basePath, logger: logger.With(slog.String("component", "discovery"))}
}

// FindSources lists the readable source files of dir, oldest first
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("directory " + fullPath)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !validation.IsSourceName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	d.logger.Debug("Sources discovered",
		slog.String("directory", fullPath),
		slog.Int("count", len(files)))
	return files, nil
}

// Latest returns the newest source of dir whose name starts with prefix,
// ignoring case. "Summary" matches Summary.xlsx and summary_2025-09.csv.
func (d *Discovery) Latest(dir, prefix string) (FileInfo, error) {
	files, err := d.FindSources(dir)
	if err != nil {
		return FileInfo{}, err
	}

	var matching []FileInfo
	for _, f := range files {
		if strings.HasPrefix(strings.ToLower(f.Name), strings.ToLower(prefix)) {
			matching = append(matching, f)
		}
	}

	latest, ok := GetLatestFile(matching)
	if !ok {
		return FileInfo{}, apperrors.NewNotFoundError(fmt.Sprintf("%s source in %s", prefix, d.resolve(dir)))
	}
	return latest, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// GetLatestFile returns the most recently modified file from a list.
// Ties go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
