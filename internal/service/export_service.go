package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/icetimehq/icetime-api/internal/dto"
	"github.com/icetimehq/icetime-api/internal/models"
	appErrors "github.com/icetimehq/icetime-api/pkg/errors"
	"github.com/icetimehq/icetime-api/pkg/export"
)

var exportHeaders = []string{"Date", "Start", "End", "Type", "Rink", "Location"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders the filtered schedule listing as a downloadable
// CSV or PDF document.
type ExportService struct {
	iceTimes *IceTimeService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService creates an export service.
func NewExportService(iceTimes *IceTimeService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{iceTimes: iceTimes, csv: csv, pdf: pdf, logger: logger}
}

// Export renders the listing matched by the query. Format defaults to CSV.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	views, err := s.iceTimes.List(ctx, query.IceTimeQuery)
	if err != nil {
		return nil, err
	}
	dataset := buildDataset(views)

	switch query.Format {
	case "", "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv render failed")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", Filename: "ice-times.csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Ice Time Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf render failed")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: "ice-times.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}
}

func buildDataset(views []models.IceTimeView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, map[string]string{
			"Date":     v.Date.Format("2006-01-02"),
			"Start":    v.StartTime,
			"End":      v.EndTime,
			"Type":     string(v.Type),
			"Rink":     v.RinkName,
			"Location": v.RinkLocation,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
