package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ordersdash/internal/errors"
)

// writeFiles creates the named files in dir, each one minute newer than the last
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	base := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}
}

func TestDiscovery_FindSources(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "supported sources oldest first",
			files: []string{"Summary.xlsx", "Secondary.csv", "macro.XLSM"},
			want:  []string{"Summary.xlsx", "Secondary.csv", "macro.XLSM"},
		},
		{
			name:  "skips lock files and other types",
			files: []string{"~$Summary.xlsx", "notes.txt", "old.xls", "Summary.xlsx"},
			want:  []string{"Summary.xlsx"},
		},
		{
			name:  "empty directory",
			files: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0o755))

			found, err := NewDiscovery("", nil).FindSources(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestDiscovery_RelativeDirectory(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0o755))
	writeFiles(t, filepath.Join(base, "data"), "Summary.xlsx")

	found, err := NewDiscovery(base, nil).FindSources("data")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "data", "Summary.xlsx"), found[0].Path)
}

func TestDiscovery_Latest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Summary.xlsx", "Secondary.xlsx", "summary_2025-09.csv", "Secondary_old.csv")
	d := NewDiscovery("", nil)

	t.Run("newest match by prefix ignoring case", func(t *testing.T) {
		f, err := d.Latest(dir, "Summary")
		require.NoError(t, err)
		assert.Equal(t, "summary_2025-09.csv", f.Name)

		f, err = d.Latest(dir, "secondary")
		require.NoError(t, err)
		assert.Equal(t, "Secondary_old.csv", f.Name)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := d.Latest(dir, "Orders")
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := d.Latest(filepath.Join(dir, "nope"), "Summary")
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	})
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	}

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
