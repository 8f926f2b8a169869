package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/openparish/steptrack/internal/domain"
)

type reportsRepo struct {
	db dbtx
}

// attendanceFilter translates a ReportFilter into WHERE conditions over the
// aliased join of attendance_records a and students s. Every report query
// goes through this one translation so the filter semantics cannot drift
// between datasets.
func attendanceFilter(f domain.ReportFilter) (conds []string, args []any) {
	if !f.IncludeArchived {
		conds = append(conds, "s.archived = 0")
	}
	if f.StartDate != nil {
		conds = append(conds, "a.session_date >= ?")
		args = append(args, fmtDate(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "a.session_date <= ?")
		args = append(args, fmtDate(*f.EndDate))
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *reportsRepo) AttendanceDetail(ctx context.Context, f domain.ReportFilter) ([]domain.AttendanceDetailRow, error) {
	query := `
		SELECT a.session_date, s.name, s.email, s.phone, s.archived, a.step_number, a.instructor
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id`
	conds, args := attendanceFilter(f)
	query += whereClause(conds)
	query += ` ORDER BY a.session_date, s.name, a.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AttendanceDetailRow
	for rows.Next() {
		var (
			row  domain.AttendanceDetailRow
			date string
		)
		err := rows.Scan(
			&date,
			&row.StudentName,
			&row.StudentEmail,
			&row.StudentPhone,
			&row.Archived,
			&row.StepNumber,
			&row.Instructor,
		)
		if err != nil {
			return nil, err
		}
		if row.SessionDate, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *reportsRepo) StudentProgress(ctx context.Context, f domain.ReportFilter) ([]domain.StudentProgressRow, error) {
	// Date bounds live in the JOIN condition so students with no qualifying
	// sessions still produce a zero-count row.
	query := `
		SELECT s.name, s.email, s.archived, COUNT(a.id),
		       MIN(a.session_date), MAX(a.session_date), s.graduation_date
		FROM students s
		LEFT JOIN attendance_records a ON a.student_id = s.id`
	var args []any
	if f.StartDate != nil {
		query += ` AND a.session_date >= ?`
		args = append(args, fmtDate(*f.StartDate))
	}
	if f.EndDate != nil {
		query += ` AND a.session_date <= ?`
		args = append(args, fmtDate(*f.EndDate))
	}
	if !f.IncludeArchived {
		query += ` WHERE s.archived = 0`
	}
	query += ` GROUP BY s.id ORDER BY s.name, s.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StudentProgressRow
	for rows.Next() {
		var (
			row         domain.StudentProgressRow
			first, last sql.NullString
			graduated   sql.NullString
		)
		err := rows.Scan(
			&row.StudentName,
			&row.StudentEmail,
			&row.Archived,
			&row.TotalSessions,
			&first,
			&last,
			&graduated,
		)
		if err != nil {
			return nil, err
		}
		if row.FirstSession, err = parseOptionalDate(first); err != nil {
			return nil, err
		}
		if row.LastSession, err = parseOptionalDate(last); err != nil {
			return nil, err
		}
		if row.GraduationDate, err = parseOptionalDate(graduated); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *reportsRepo) InstructorPerformance(ctx context.Context, f domain.ReportFilter) ([]domain.InstructorPerformanceRow, error) {
	query := `
		SELECT a.instructor, COUNT(*), COUNT(DISTINCT a.student_id),
		       MIN(a.session_date), MAX(a.session_date)
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id`
	conds, args := attendanceFilter(f)
	query += whereClause(conds)
	query += ` GROUP BY a.instructor ORDER BY a.instructor`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InstructorPerformanceRow
	for rows.Next() {
		var (
			row         domain.InstructorPerformanceRow
			first, last sql.NullString
		)
		err := rows.Scan(
			&row.Instructor,
			&row.TotalSessions,
			&row.DistinctStudents,
			&first,
			&last,
		)
		if err != nil {
			return nil, err
		}
		if row.FirstSession, err = parseOptionalDate(first); err != nil {
			return nil, err
		}
		if row.LastSession, err = parseOptionalDate(last); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
