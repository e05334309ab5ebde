package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/files"
	"ordersdash/internal/shared/testutil"
)

func TestSourcesHandler_List(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apperrors.NewErrorHandler(logger, false)
	discovery := files.NewDiscovery("", logger)

	t.Run("lists workbooks", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"Summary.xlsx", "Secondary.csv", "notes.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
		}

		rec := httptest.NewRecorder()
		NewSourcesHandler(discovery, dir, errorHandler, logger).
			List(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, dir, body["directory"])
		assert.Len(t, body["sources"], 2)
	})

	t.Run("empty directory renders an empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewSourcesHandler(discovery, t.TempDir(), errorHandler, logger).
			List(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sources":[]`)
	})

	t.Run("missing directory", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewSourcesHandler(discovery, filepath.Join(t.TempDir(), "gone"), errorHandler, logger).
			List(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
