package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/middleware"
	"ordersdash/internal/services"
	"ordersdash/pkg/contracts/domain"
)

// multipart parts held in memory before spilling to disk
const uploadMemory = 32 << 20

// UploadResponse is returned when a dataset is registered
type UploadResponse struct {
	DatasetID     string `json:"dataset_id"`
	PrimaryName   string `json:"primary_name"`
	SecondaryName string `json:"secondary_name"`
	PrimaryRows   int    `json:"primary_rows"`
	SecondaryRows int    `json:"secondary_rows"`
}

// ReportHandler serves dataset uploads, reports and exports
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	errorHandler *apperrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, validator *middleware.Validator, errorHandler *apperrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the dataset routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Post("/report", h.Report)
		r.Post("/export", h.Export)
	})
	return r
}

// DatasetCtx validates the dataset ID path parameter
func (h *ReportHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" || len(id) > 64 {
			h.errorHandler.HandleError(w, r, apperrors.ErrValidation("id", "dataset id must be 1 to 64 characters"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets with multipart parts "primary" and
// "secondary" and optional form values "primary_sheet" and "secondary_sheet".
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		h.errorHandler.HandleError(w, r, uploadError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	primary, err := h.formSource(r, "primary")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	secondary, err := h.formSource(r, "secondary")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds, err := h.service.RegisterUpload(r.Context(), primary, secondary)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("primary", ds.PrimaryName),
		slog.String("secondary", ds.SecondaryName))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{
		DatasetID:     ds.ID,
		PrimaryName:   ds.PrimaryName,
		SecondaryName: ds.SecondaryName,
		PrimaryRows:   ds.PrimaryRows,
		SecondaryRows: ds.SecondaryRows,
	})
}

// Report handles POST /api/datasets/{id}/report
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.BuildReport(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Export handles POST /api/datasets/{id}/export?format=csv|xlsx
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := middleware.EnumParam(r, "format", []string{string(domain.ExportFormatCSV), string(domain.ExportFormatXLSX)}, string(domain.ExportFormatCSV))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format := domain.ExportFormat(f)

	req, err := h.decodeRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffered so a failed export still gets a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), chi.URLParam(r, "id"), req, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ExportFileName(format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted", slog.String("error", err.Error()))
	}
}

// decodeRequest reads an optional JSON ReportRequest body
func (h *ReportHandler) decodeRequest(r *http.Request) (domain.ReportRequest, error) {
	var req domain.ReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, apperrors.ErrPayloadTooLarge
		}
		return req, apperrors.InvalidRequestWithError(err)
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return req, err
	}
	return req, nil
}

func (h *ReportHandler) formSource(r *http.Request, field string) (services.Source, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return services.Source{}, apperrors.MissingParameterError(field)
		}
		return services.Source{}, uploadError(err)
	}
	defer file.Close()

	if err := h.validator.ValidateVar(field, header.Filename, "filename"); err != nil {
		return services.Source{}, err
	}
	sheetField := field + "_sheet"
	sheet := r.FormValue(sheetField)
	if err := h.validator.ValidateVar(sheetField, sheet, "omitempty,sheetname"); err != nil {
		return services.Source{}, err
	}

	data, err := readPart(file)
	if err != nil {
		return services.Source{}, uploadError(err)
	}
	src := services.UploadSource(header.Filename, data)
	src.Sheet = sheet
	return src, nil
}

func readPart(file multipart.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.ErrPayloadTooLarge
	}
	return apperrors.InvalidRequestWithError(err)
}
