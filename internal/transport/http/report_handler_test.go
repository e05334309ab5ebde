package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "ordersdash/internal/errors"
	"ordersdash/internal/middleware"
	"ordersdash/internal/services"
	"ordersdash/internal/shared/testutil"
	"ordersdash/pkg/contracts/domain"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) RegisterUpload(ctx context.Context, primary, secondary services.Source) (*services.Dataset, error) {
	args := m.Called(primary, secondary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Dataset), args.Error(1)
}

func (m *MockReportService) BuildReport(ctx context.Context, id string, req domain.ReportRequest) (*domain.Report, error) {
	args := m.Called(id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *MockReportService) Export(ctx context.Context, id string, req domain.ReportRequest, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(id, req, format)
	if payload := args.String(1); payload != "" {
		_, _ = io.WriteString(w, payload)
	}
	return args.Error(0)
}

func (m *MockReportService) ExportFileName(format domain.ExportFormat) string {
	return "filtered_export." + string(format)
}

func newTestRouter(t *testing.T, svc ReportServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewReportHandler(svc, middleware.NewValidator(logger), apperrors.NewErrorHandler(logger, false), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/datasets", h.Routes())
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func multipartBody(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, name := range files {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("User,Order Date\nU1,2025-09-01\n"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestReportHandler_Report(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockReportService)
		wantStatus int
		wantType   string
	}{
		{
			name: "empty body uses defaults",
			body: "",
			setupMock: func(m *MockReportService) {
				m.On("BuildReport", "default", domain.ReportRequest{}).
					Return(&domain.Report{DatasetID: "default", TotalRows: 4, KPIs: domain.KPIs{Rows: 4}}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "filters are passed through",
			body: `{"join_mode":"outer","filters":{"Region":["North"]},"limit":5}`,
			setupMock: func(m *MockReportService) {
				m.On("BuildReport", "default", domain.ReportRequest{
					JoinMode: "outer",
					Filters:  map[string][]string{"Region": {"North"}},
					Limit:    5,
				}).Return(&domain.Report{DatasetID: "default", TotalRows: 2}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid join mode",
			body:       `{"join_mode":"inner"}`,
			setupMock:  func(m *MockReportService) {},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name:       "malformed json",
			body:       `{"join_mode":`,
			setupMock:  func(m *MockReportService) {},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeValidation,
		},
		{
			name: "missing join keys",
			body: `{"join_keys":["Beat"]}`,
			setupMock: func(m *MockReportService) {
				m.On("BuildReport", "default", domain.ReportRequest{JoinKeys: []string{"Beat"}}).
					Return(nil, apperrors.NewMergeKeyError([]string{"Beat"}, map[string][]string{
						domain.SourcePrimary:   {"Beat"},
						domain.SourceSecondary: {"Beat"},
					}))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apperrors.TypeMergeKey,
		},
		{
			name: "empty input",
			body: `{}`,
			setupMock: func(m *MockReportService) {
				m.On("BuildReport", "default", domain.ReportRequest{}).
					Return(nil, &apperrors.EmptyInputError{})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.TypeEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReportService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/datasets/default/report", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newTestRouter(t, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
				assert.NotEmpty(t, body["trace_id"])
			} else {
				assert.Equal(t, "default", body["dataset_id"])
			}
			svc.AssertExpectations(t)
		})
	}

	t.Run("missing columns are listed", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("BuildReport", "default", mock.Anything).
			Return(nil, apperrors.NewMergeKeyError([]string{"User", "Beat"}, map[string][]string{domain.SourceSecondary: {"Beat"}}))

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/default/report", nil))

		body := decodeBody(t, rec)
		assert.Equal(t, []any{"Beat"}, body["missing_columns"])
	})

	t.Run("unknown dataset", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("BuildReport", "nope", mock.Anything).Return(nil, apperrors.DatasetNotFoundError("nope"))

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/nope/report", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperrors.TypeDatasetNotFound, decodeBody(t, rec)["type"])
	})
}

func TestReportHandler_Export(t *testing.T) {
	t.Run("csv attachment", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Export", "default", domain.ReportRequest{}, domain.ExportFormatCSV).Return(nil, "User\nU1\n")

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/default/export", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="filtered_export.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "User\nU1\n", rec.Body.String())
	})

	t.Run("xlsx format", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Export", "abc", domain.ReportRequest{Columns: []string{"User"}}, domain.ExportFormatXLSX).Return(nil, "PK")

		req := httptest.NewRequest(http.MethodPost, "/api/datasets/abc/export?format=xlsx", strings.NewReader(`{"columns":["User"]}`))
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.ExportFormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "filtered_export.xlsx")
		svc.AssertExpectations(t)
	})

	t.Run("unsupported format", func(t *testing.T) {
		svc := new(MockReportService)

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/default/export?format=pdf", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("export failure becomes a problem", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("Export", "default", domain.ReportRequest{}, domain.ExportFormatCSV).
			Return(apperrors.NewExportError("failed to write csv", io.ErrShortWrite), "")

		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/default/export", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apperrors.TypeExportFailed, decodeBody(t, rec)["type"])
	})
}

func TestReportHandler_Upload(t *testing.T) {
	t.Run("registers both files", func(t *testing.T) {
		svc := new(MockReportService)
		svc.On("RegisterUpload",
			mock.MatchedBy(func(s services.Source) bool { return s.Name == "Summary.csv" && s.Sheet == "" && len(s.Data) > 0 }),
			mock.MatchedBy(func(s services.Source) bool { return s.Name == "Secondary.csv" && s.Sheet == "Orders" }),
		).Return(&services.Dataset{ID: "ds-1", PrimaryName: "Summary.csv", SecondaryName: "Secondary.csv", PrimaryRows: 1, SecondaryRows: 1}, nil)

		body, contentType := multipartBody(t,
			map[string]string{"primary": "Summary.csv", "secondary": "Secondary.csv"},
			map[string]string{"secondary_sheet": "Orders"})
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decodeBody(t, rec)
		assert.Equal(t, "ds-1", resp["dataset_id"])
		assert.Equal(t, float64(1), resp["primary_rows"])
		svc.AssertExpectations(t)
	})

	t.Run("missing secondary", func(t *testing.T) {
		svc := new(MockReportService)
		body, contentType := multipartBody(t, map[string]string{"primary": "Summary.csv"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody(t, rec)
		assert.Equal(t, "MISSING_PARAMETER", resp["error_code"])
		details := resp["details"].(map[string]any)
		assert.Equal(t, "secondary", details["field"])
		svc.AssertNotCalled(t, "RegisterUpload", mock.Anything, mock.Anything)
	})

	t.Run("invalid sheet name", func(t *testing.T) {
		svc := new(MockReportService)
		body, contentType := multipartBody(t,
			map[string]string{"primary": "Summary.csv", "secondary": "Secondary.csv"},
			map[string]string{"primary_sheet": "a:b"})
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		svc := new(MockReportService)
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newTestRouter(t, svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body over the limit", func(t *testing.T) {
		svc := new(MockReportService)
		body, contentType := multipartBody(t,
			map[string]string{"primary": "Summary.csv", "secondary": "Secondary.csv"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/datasets", body)
		req.Header.Set("Content-Type", contentType)
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		middleware.MaxBodySize(64)(newTestRouter(t, svc)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, apperrors.TypePayloadTooLarge, decodeBody(t, rec)["type"])
	})
}
