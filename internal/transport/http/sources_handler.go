package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/files"
)

// SourceLister lists the source files of a directory
type SourceLister interface {
	FindSources(dir string) ([]files.FileInfo, error)
}

// SourcesResponse is the body of GET /api/sources
type SourcesResponse struct {
	Directory string           `json:"directory"`
	Sources   []files.FileInfo `json:"sources"`
}

// SourcesHandler lists the workbooks available next to the configured sources
type SourcesHandler struct {
	lister       SourceLister
	dir          string
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewSourcesHandler creates a handler listing the sources of dir
func NewSourcesHandler(lister SourceLister, dir string, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *SourcesHandler {
	return &SourcesHandler{
		lister:       lister,
		dir:          dir,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "sources")),
	}
}

// List handles GET /api/sources
func (h *SourcesHandler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.lister.FindSources(h.dir)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if found == nil {
		found = []files.FileInfo{}
	}
	render.JSON(w, r, SourcesResponse{Directory: h.dir, Sources: found})
}
