package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
	"github.com/campushq/campus-api/pkg/export"
)

type timetableProvider interface {
	LatestTimetable(ctx context.Context, departmentID string) ([]models.SectionTimetable, error)
}

// ExportService renders the latest department timetable as CSV or PDF.
type ExportService struct {
	timetables timetableProvider
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(timetables timetableProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// TimetableCSV renders the department timetable as CSV bytes.
func (s *ExportService) TimetableCSV(ctx context.Context, departmentID string) ([]byte, error) {
	dataset, err := s.dataset(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// TimetablePDF renders the department timetable as a landscape PDF.
func (s *ExportService) TimetablePDF(ctx context.Context, departmentID string) ([]byte, error) {
	dataset, err := s.dataset(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, "Department Timetable")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

func (s *ExportService) dataset(ctx context.Context, departmentID string) (*export.Dataset, error) {
	timetables, err := s.timetables.LatestTimetable(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	dataset := &export.Dataset{
		Headers: []string{"Section", "Date", "Slot", "Course", "Faculty", "Room"},
	}
	for _, timetable := range timetables {
		for _, entry := range timetable.Entries {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Section": entry.SectionName,
				"Date":    entry.DateOfClass.Format("2006-01-02"),
				"Slot":    fmt.Sprintf("%s-%s", entry.SlotStart, entry.SlotEnd),
				"Course":  fmt.Sprintf("%s %s", entry.CourseCode, entry.CourseName),
				"Faculty": entry.FacultyName,
				"Room":    entry.RoomNumber,
			})
		}
	}
	return dataset, nil
}
