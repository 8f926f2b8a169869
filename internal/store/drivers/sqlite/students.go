package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/store"
)

type studentsRepo struct {
	db dbtx
}

const studentColumns = `id, name, phone, email, graduation_date, created_date, archived, archived_date`

func (r *studentsRepo) CreateStudent(ctx context.Context, st domain.Student) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID,
		st.Name,
		st.Phone,
		st.Email,
		fmtOptionalDate(st.GraduationDate),
		fmtDate(st.CreatedDate),
		st.Archived,
		fmtOptionalDate(st.ArchivedDate),
	)
	return mapConstraint(err)
}

func (r *studentsRepo) GetStudentByID(ctx context.Context, id string) (domain.Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+` FROM students WHERE id = ?`, id)
	st, err := scanStudent(row)
	if err != nil {
		return domain.Student{}, mapNotFound(err)
	}
	return st, nil
}

func (r *studentsRepo) ListStudents(ctx context.Context, includeArchived bool) ([]domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectStudents(rows)
}

func (r *studentsRepo) SetGraduationDate(ctx context.Context, id string, date time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET graduation_date = ? WHERE id = ?`,
		fmtDate(date), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *studentsRepo) SetArchived(ctx context.Context, id string, archivedDate *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students SET archived = ?, archived_date = ? WHERE id = ?`,
		archivedDate != nil, fmtOptionalDate(archivedDate), id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *studentsRepo) ListInactiveStudents(ctx context.Context, threshold time.Time) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+studentColumns+`
		FROM students s
		WHERE s.archived = 0
		  AND s.created_date < ?
		  AND NOT EXISTS (
		      SELECT 1 FROM attendance_records a
		      WHERE a.student_id = s.id AND a.session_date >= ?
		  )
		ORDER BY s.name, s.id`,
		fmtDate(threshold), fmtDate(threshold))
	if err != nil {
		return nil, err
	}
	return collectStudents(rows)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (domain.Student, error) {
	var (
		st       domain.Student
		gradDate sql.NullString
		created  string
		archived sql.NullString
	)
	err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Phone,
		&st.Email,
		&gradDate,
		&created,
		&st.Archived,
		&archived,
	)
	if err != nil {
		return domain.Student{}, err
	}

	if st.GraduationDate, err = parseOptionalDate(gradDate); err != nil {
		return domain.Student{}, err
	}
	if st.CreatedDate, err = parseDate(created); err != nil {
		return domain.Student{}, err
	}
	if st.ArchivedDate, err = parseOptionalDate(archived); err != nil {
		return domain.Student{}, err
	}
	return st, nil
}

func collectStudents(rows *sql.Rows) ([]domain.Student, error) {
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
