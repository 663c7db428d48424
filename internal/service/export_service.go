package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/timetable-api/internal/models"
	appErrors "github.com/campushub/timetable-api/pkg/errors"
	"github.com/campushub/timetable-api/pkg/export"
)

// Export formats supported for a timetable.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
	ExportFormatICS = "ics"
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// ExportResult carries rendered bytes plus HTTP metadata for the handler.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

type exportTimetableReader interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

// ExportService renders a timetable's weekly grid as CSV or PDF, or its
// materialized occurrences as an ICS calendar feed.
type ExportService struct {
	timetables exportTimetableReader
	calendar   *CalendarService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	ics        *export.ICSExporter
	logger     *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(timetables exportTimetableReader, calendar *CalendarService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetables: timetables,
		calendar:   calendar,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		ics:        export.NewICSExporter(),
		logger:     logger,
	}
}

// Export renders the timetable in the requested format. Access control is
// enforced by the underlying calendar reads.
func (s *ExportService) Export(ctx context.Context, timetableID, userID, format string, anchor time.Time) (*ExportResult, error) {
	switch strings.ToLower(format) {
	case ExportFormatCSV, ExportFormatPDF:
		return s.exportGrid(ctx, timetableID, userID, strings.ToLower(format))
	case ExportFormatICS:
		return s.exportFeed(ctx, timetableID, userID, anchor)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ExportService) exportGrid(ctx context.Context, timetableID, userID, format string) (*ExportResult, error) {
	sessions, err := s.calendar.readSessions(ctx, timetableID, userID)
	if err != nil {
		return nil, err
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].DayOfWeek != sessions[j].DayOfWeek {
			return sessions[i].DayOfWeek < sessions[j].DayOfWeek
		}
		return sessions[i].StartTime < sessions[j].StartTime
	})

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Title", "Location"},
		Rows:    make([]map[string]string, 0, len(sessions)),
	}
	for _, session := range sessions {
		if session.DayOfWeek < 0 || session.DayOfWeek > 6 {
			s.logger.Warn("skipping session with out-of-range day",
				zap.String("session_id", session.ID), zap.Int("day_of_week", session.DayOfWeek))
			continue
		}
		location := ""
		if session.Location != nil {
			location = *session.Location
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":      dayNames[session.DayOfWeek],
			"Start":    session.StartTime,
			"End":      session.EndTime,
			"Title":    session.Title,
			"Location": location,
		})
	}

	if format == ExportFormatPDF {
		content, err := s.pdf.Render(dataset, timetable.Name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: exportFilename(timetable.Name, "pdf")}, nil
	}

	content, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return &ExportResult{Content: content, ContentType: "text/csv", Filename: exportFilename(timetable.Name, "csv")}, nil
}

func (s *ExportService) exportFeed(ctx context.Context, timetableID, userID string, anchor time.Time) (*ExportResult, error) {
	occurrences, err := s.calendar.Occurrences(ctx, timetableID, userID, s.calendar.DefaultWindow(anchor))
	if err != nil {
		return nil, err
	}
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	entries := make([]export.CalendarEntry, 0, len(occurrences))
	for _, occ := range occurrences {
		location := ""
		if occ.Location != nil {
			location = *occ.Location
		}
		entries = append(entries, export.CalendarEntry{
			UID:      fmt.Sprintf("%s-%s", occ.SessionID, occ.Start.Format("20060102")),
			Summary:  occ.Title,
			Location: location,
			Start:    occ.Start,
			End:      occ.End,
		})
	}

	content, err := s.ics.Render(timetable.Name, entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ics")
	}
	return &ExportResult{Content: content, ContentType: "text/calendar", Filename: exportFilename(timetable.Name, "ics")}, nil
}

func exportFilename(name, ext string) string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if slug == "" {
		slug = "timetable"
	}
	return fmt.Sprintf("%s.%s", slug, ext)
}
