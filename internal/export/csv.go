// Package export renders report datasets into interchange formats. It is a
// pure consumer of the typed report rows: field order and row order are
// preserved exactly as produced.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/openparish/steptrack/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = time.RFC3339
)

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// AttendanceDetailCSV writes the detailed attendance dataset as CSV.
func AttendanceDetailCSV(w io.Writer, rows []domain.AttendanceDetailRow) error {
	records := [][]string{{
		"session_date", "student_name", "student_email", "student_phone",
		"archived", "step_number", "instructor",
	}}
	for _, r := range rows {
		records = append(records, []string{
			formatDate(r.SessionDate),
			r.StudentName,
			r.StudentEmail,
			r.StudentPhone,
			strconv.FormatBool(r.Archived),
			strconv.Itoa(r.StepNumber),
			r.Instructor,
		})
	}
	return writeAll(w, records)
}

// StudentProgressCSV writes the per-student progress dataset as CSV.
func StudentProgressCSV(w io.Writer, rows []domain.StudentProgressRow) error {
	records := [][]string{{
		"student_name", "student_email", "archived", "total_sessions",
		"first_session", "last_session", "graduation_date",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.StudentName,
			r.StudentEmail,
			strconv.FormatBool(r.Archived),
			strconv.Itoa(r.TotalSessions),
			formatOptionalDate(r.FirstSession),
			formatOptionalDate(r.LastSession),
			formatOptionalDate(r.GraduationDate),
		})
	}
	return writeAll(w, records)
}

// InstructorPerformanceCSV writes the per-instructor dataset as CSV.
func InstructorPerformanceCSV(w io.Writer, rows []domain.InstructorPerformanceRow) error {
	records := [][]string{{
		"instructor", "total_sessions", "distinct_students",
		"first_session", "last_session",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.Instructor,
			strconv.Itoa(r.TotalSessions),
			strconv.Itoa(r.DistinctStudents),
			formatOptionalDate(r.FirstSession),
			formatOptionalDate(r.LastSession),
		})
	}
	return writeAll(w, records)
}

// GraduationEligibleCSV writes the graduation-eligible dataset as CSV.
func GraduationEligibleCSV(w io.Writer, rows []domain.GraduationEligibleRow) error {
	records := [][]string{{
		"student_name", "student_email", "student_phone",
		"session_count", "first_session", "last_session",
	}}
	for _, r := range rows {
		records = append(records, []string{
			r.StudentName,
			r.StudentEmail,
			r.StudentPhone,
			strconv.Itoa(r.SessionCount),
			formatOptionalDate(r.FirstSession),
			formatOptionalDate(r.LastSession),
		})
	}
	return writeAll(w, records)
}

// SummaryCSV writes the summary statistics as a single CSV row. The
// generation timestamp carries the full date-time.
func SummaryCSV(w io.Writer, stats domain.SummaryStats) error {
	return writeAll(w, [][]string{
		{
			"generated_at", "total_students", "active_students",
			"archived_students", "recently_active", "graduation_eligible",
		},
		{
			stats.GeneratedAt.Format(dateTimeLayout),
			strconv.Itoa(stats.TotalStudents),
			strconv.Itoa(stats.ActiveStudents),
			strconv.Itoa(stats.ArchivedStudents),
			strconv.Itoa(stats.RecentlyActive),
			strconv.Itoa(stats.GraduationEligible),
		},
	})
}
