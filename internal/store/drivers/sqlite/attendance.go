package sqlite

import (
	"context"
	"database/sql"

	"github.com/openparish/steptrack/internal/domain"
)

type attendanceRepo struct {
	db dbtx
}

func (r *attendanceRepo) CreateAttendanceRecord(ctx context.Context, rec domain.AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, step_number, instructor, session_date)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StudentID,
		rec.StepNumber,
		rec.Instructor,
		fmtDate(rec.SessionDate),
	)
	return mapConstraint(err)
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_id, step_number, instructor, session_date
		FROM attendance_records
		WHERE student_id = ?
		ORDER BY session_date, id`, studentID)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

func (r *attendanceRepo) ListInRange(ctx context.Context, f domain.ReportFilter) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT a.id, a.student_id, a.step_number, a.instructor, a.session_date
		FROM attendance_records a
		JOIN students s ON s.id = a.student_id`
	conds, args := attendanceFilter(f)
	query += whereClause(conds)
	query += ` ORDER BY a.session_date, a.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAttendance(rows)
}

func collectAttendance(rows *sql.Rows) ([]domain.AttendanceRecord, error) {
	defer rows.Close()

	var out []domain.AttendanceRecord
	for rows.Next() {
		var (
			rec  domain.AttendanceRecord
			date string
		)
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.StepNumber, &rec.Instructor, &date); err != nil {
			return nil, err
		}
		parsed, err := parseDate(date)
		if err != nil {
			return nil, err
		}
		rec.SessionDate = parsed
		out = append(out, rec)
	}
	return out, rows.Err()
}
