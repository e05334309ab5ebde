package http

import (
	"context"
	"io"

	"ordersdash/internal/services"
	"ordersdash/pkg/contracts/domain"
)

// ReportServiceInterface is the part of services.ReportService the handlers use
type ReportServiceInterface interface {
	RegisterUpload(ctx context.Context, primary, secondary services.Source) (*services.Dataset, error)
	BuildReport(ctx context.Context, id string, req domain.ReportRequest) (*domain.Report, error)
	Export(ctx context.Context, id string, req domain.ReportRequest, format domain.ExportFormat, w io.Writer) error
	ExportFileName(format domain.ExportFormat) string
}
