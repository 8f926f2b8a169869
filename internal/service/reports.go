package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/export"
	"github.com/openparish/steptrack/internal/store"
)

// ExportFormat selects the external formatter for an export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// ReportService produces the named report datasets. Viewing requires the
// view_reports capability; producing an exportable artifact additionally
// requires export_reports.
type ReportService struct {
	Store store.Store

	// Now is a clock hook for tests; nil means time.Now.
	Now func() time.Time
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// AttendanceDetail returns one row per attendance record joined with its
// student, ordered by date then name.
func (s *ReportService) AttendanceDetail(ctx context.Context, sess domain.Session, f domain.ReportFilter) ([]domain.AttendanceDetailRow, error) {
	if err := requirePermission(sess, domain.ActionViewReports); err != nil {
		return nil, err
	}
	return s.Store.Reports().AttendanceDetail(ctx, f)
}

// StudentProgress returns one row per student matching the archived filter,
// including zero-session students, ordered by name.
func (s *ReportService) StudentProgress(ctx context.Context, sess domain.Session, f domain.ReportFilter) ([]domain.StudentProgressRow, error) {
	if err := requirePermission(sess, domain.ActionViewReports); err != nil {
		return nil, err
	}
	return s.Store.Reports().StudentProgress(ctx, f)
}

// InstructorPerformance returns one row per distinct instructor, ordered by
// instructor name.
func (s *ReportService) InstructorPerformance(ctx context.Context, sess domain.Session, f domain.ReportFilter) ([]domain.InstructorPerformanceRow, error) {
	if err := requirePermission(sess, domain.ActionViewReports); err != nil {
		return nil, err
	}
	return s.Store.Reports().InstructorPerformance(ctx, f)
}

// GraduationEligible returns one row per active student passing the
// eligibility test, with aggregates over the sessions the filter admits.
// The eligibility window itself is always anchored at today.
func (s *ReportService) GraduationEligible(ctx context.Context, sess domain.Session, f domain.ReportFilter) ([]domain.GraduationEligibleRow, error) {
	if err := requirePermission(sess, domain.ActionViewReports); err != nil {
		return nil, err
	}

	students, err := s.Store.Students().ListStudents(ctx, false)
	if err != nil {
		return nil, err
	}

	// Eligibility only considers active students regardless of the filter.
	f.IncludeArchived = false
	records, err := s.Store.Attendance().ListInRange(ctx, f)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string][]domain.AttendanceRecord)
	for _, rec := range records {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	today := s.now()
	var out []domain.GraduationEligibleRow
	for _, st := range students {
		history := byStudent[st.ID]
		if !domain.EligibleForGraduation(st, history, today) {
			continue
		}

		row := domain.GraduationEligibleRow{
			StudentName:  st.Name,
			StudentEmail: st.Email,
			StudentPhone: st.Phone,
			SessionCount: len(history),
		}
		// ListInRange returns records date-ascending.
		first := history[0].SessionDate
		last := history[len(history)-1].SessionDate
		row.FirstSession = &first
		row.LastSession = &last
		out = append(out, row)
	}
	return out, nil
}

// Summary returns the program-wide headline numbers.
func (s *ReportService) Summary(ctx context.Context, sess domain.Session) (domain.SummaryStats, error) {
	if err := requirePermission(sess, domain.ActionViewReports); err != nil {
		return domain.SummaryStats{}, err
	}

	students, err := s.Store.Students().ListStudents(ctx, true)
	if err != nil {
		return domain.SummaryStats{}, err
	}

	today := s.now()
	windowStart := today.AddDate(0, 0, -domain.GraduationWindowDays)

	stats := domain.SummaryStats{
		GeneratedAt:   today,
		TotalStudents: len(students),
	}

	recent, err := s.Store.Attendance().ListInRange(ctx, domain.ReportFilter{
		StartDate: &windowStart,
		EndDate:   &today,
	})
	if err != nil {
		return domain.SummaryStats{}, err
	}
	activeAttendees := make(map[string]struct{})
	for _, rec := range recent {
		activeAttendees[rec.StudentID] = struct{}{}
	}
	stats.RecentlyActive = len(activeAttendees)

	for _, st := range students {
		if st.Archived {
			stats.ArchivedStudents++
			continue
		}
		stats.ActiveStudents++

		history, err := s.Store.Attendance().ListByStudent(ctx, st.ID)
		if err != nil {
			return domain.SummaryStats{}, err
		}
		if domain.EligibleForGraduation(st, history, today) {
			stats.GraduationEligible++
		}
	}
	return stats, nil
}

// Export writes a report dataset through an external formatter, preserving
// field and row order. Unknown kinds and formats are invalid arguments.
func (s *ReportService) Export(ctx context.Context, sess domain.Session, kind domain.ReportKind, format ExportFormat, f domain.ReportFilter, w io.Writer) error {
	if err := requirePermission(sess, domain.ActionExportReports); err != nil {
		return err
	}

	switch format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown export format %q", ErrInvalidArgument, format)
	}

	switch kind {
	case domain.ReportAttendanceDetail:
		rows, err := s.AttendanceDetail(ctx, sess, f)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return export.WriteJSON(w, rows)
		}
		return export.AttendanceDetailCSV(w, rows)

	case domain.ReportStudentProgress:
		rows, err := s.StudentProgress(ctx, sess, f)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return export.WriteJSON(w, rows)
		}
		return export.StudentProgressCSV(w, rows)

	case domain.ReportInstructorPerformance:
		rows, err := s.InstructorPerformance(ctx, sess, f)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return export.WriteJSON(w, rows)
		}
		return export.InstructorPerformanceCSV(w, rows)

	case domain.ReportGraduationEligible:
		rows, err := s.GraduationEligible(ctx, sess, f)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return export.WriteJSON(w, rows)
		}
		return export.GraduationEligibleCSV(w, rows)

	case domain.ReportSummary:
		stats, err := s.Summary(ctx, sess)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			return export.WriteJSON(w, stats)
		}
		return export.SummaryCSV(w, stats)

	default:
		return fmt.Errorf("%w: unknown report kind %q", ErrInvalidArgument, kind)
	}
}
