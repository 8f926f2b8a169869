package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/store"
	"github.com/openparish/steptrack/pkg/idx"
	"github.com/openparish/steptrack/pkg/slogx"
)

// StudentService owns the student and attendance lifecycles. Every mutation
// is permission-gated and runs as a single atomic transaction.
type StudentService struct {
	Store store.Store

	// Now is a clock hook for tests; nil means time.Now.
	Now func() time.Time
}

// ArchiveStats reports the outcome of a batch archival run.
type ArchiveStats struct {
	Identified int
	Archived   int
	Failed     int
}

func (s *StudentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// AddStudent enrolls a new student and returns its id. Name is required;
// phone and email default to empty.
func (s *StudentService) AddStudent(ctx context.Context, sess domain.Session, name, phone, email string) (string, error) {
	if err := requirePermission(sess, domain.ActionAddStudent); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: student name required", ErrInvalidArgument)
	}

	st := domain.Student{
		ID:          idx.New().String(),
		Name:        name,
		Phone:       phone,
		Email:       email,
		CreatedDate: s.now(),
	}
	if err := s.Store.Students().CreateStudent(ctx, st); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("student enrolled",
		slog.String("student_id", st.ID),
		slog.String("name", name),
	)
	return st.ID, nil
}

// RecordAttendance stamps a new attendance record dated today and returns
// its id. The target student must exist; the check rides the insert
// transaction so a concurrent delete cannot orphan the record.
func (s *StudentService) RecordAttendance(ctx context.Context, sess domain.Session, studentID string, stepNumber int, instructor string) (string, error) {
	if err := requirePermission(sess, domain.ActionRecordAttendance); err != nil {
		return "", err
	}
	if stepNumber <= 0 {
		return "", fmt.Errorf("%w: step number must be positive", ErrInvalidArgument)
	}

	rec := domain.AttendanceRecord{
		ID:          idx.New().String(),
		StudentID:   studentID,
		StepNumber:  stepNumber,
		Instructor:  instructor,
		SessionDate: s.now(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Students().GetStudentByID(ctx, studentID); err != nil {
			return err
		}
		return tx.Attendance().CreateAttendanceRecord(ctx, rec)
	})
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("attendance recorded",
		slog.String("student_id", studentID),
		slog.Int("step", stepNumber),
	)
	return rec.ID, nil
}

// MarkAsGraduated stamps the student's graduation date with today,
// overwriting any prior date. Idempotent by design.
func (s *StudentService) MarkAsGraduated(ctx context.Context, sess domain.Session, studentID string) error {
	if err := requirePermission(sess, domain.ActionMarkGraduated); err != nil {
		return err
	}
	if err := s.Store.Students().SetGraduationDate(ctx, studentID, s.now()); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("student graduated", slog.String("student_id", studentID))
	return nil
}

// ArchiveStudent soft-removes a student from active listings. Archiving an
// already-archived student succeeds without touching its archived date.
func (s *StudentService) ArchiveStudent(ctx context.Context, sess domain.Session, studentID string) error {
	if err := requirePermission(sess, domain.ActionArchiveStudent); err != nil {
		return err
	}
	return s.setArchived(ctx, studentID, true)
}

// UnarchiveStudent restores an archived student. A no-op for students that
// are already active.
func (s *StudentService) UnarchiveStudent(ctx context.Context, sess domain.Session, studentID string) error {
	if err := requirePermission(sess, domain.ActionArchiveStudent); err != nil {
		return err
	}
	return s.setArchived(ctx, studentID, false)
}

func (s *StudentService) setArchived(ctx context.Context, studentID string, archived bool) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		st, err := tx.Students().GetStudentByID(ctx, studentID)
		if err != nil {
			return err
		}
		if st.Archived == archived {
			return nil
		}

		var archivedDate *time.Time
		if archived {
			at := s.now()
			archivedDate = &at
		}
		return tx.Students().SetArchived(ctx, studentID, archivedDate)
	})
}

// ListStudents returns students ordered by name. Unrestricted read.
func (s *StudentService) ListStudents(ctx context.Context, includeArchived bool) ([]domain.Student, error) {
	return s.Store.Students().ListStudents(ctx, includeArchived)
}

// GetStudent returns a single student. Unrestricted read.
func (s *StudentService) GetStudent(ctx context.Context, studentID string) (domain.Student, error) {
	return s.Store.Students().GetStudentByID(ctx, studentID)
}

// GetAttendance returns a student's records ordered by date ascending.
// Unrestricted read.
func (s *StudentService) GetAttendance(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	return s.Store.Attendance().ListByStudent(ctx, studentID)
}

// EligibleForGraduationList applies the graduation test to every active
// student. Unrestricted read, like the lookups it composes.
func (s *StudentService) EligibleForGraduationList(ctx context.Context) ([]domain.Student, error) {
	students, err := s.Store.Students().ListStudents(ctx, false)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var out []domain.Student
	for _, st := range students {
		history, err := s.Store.Attendance().ListByStudent(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		if domain.EligibleForGraduation(st, history, today) {
			out = append(out, st)
		}
	}
	return out, nil
}

// FindInactive returns active students with no attendance on or after the
// threshold who were also created before it, so recent enrollees are never
// flagged.
func (s *StudentService) FindInactive(ctx context.Context, sess domain.Session, monthsInactive int) ([]domain.Student, error) {
	if err := requirePermission(sess, domain.ActionArchiveStudent); err != nil {
		return nil, err
	}
	if monthsInactive <= 0 {
		return nil, fmt.Errorf("%w: months must be positive", ErrInvalidArgument)
	}

	threshold := domain.InactivityThreshold(s.now(), monthsInactive)
	return s.Store.Students().ListInactiveStudents(ctx, threshold)
}

// AutoArchiveInactive archives every student FindInactive identifies. Each
// archive is its own transaction; one failure is counted and logged but
// never aborts the rest of the batch.
func (s *StudentService) AutoArchiveInactive(ctx context.Context, sess domain.Session, monthsInactive int) (ArchiveStats, error) {
	l := slogx.FromContext(ctx)

	candidates, err := s.FindInactive(ctx, sess, monthsInactive)
	if err != nil {
		return ArchiveStats{}, err
	}

	stats := ArchiveStats{Identified: len(candidates)}
	for _, st := range candidates {
		if err := s.setArchived(ctx, st.ID, true); err != nil {
			stats.Failed++
			l.Error("auto-archive failed for student",
				slog.String("student_id", st.ID),
				slog.Any("error", err),
			)
			continue
		}
		stats.Archived++
	}

	l.Info("auto-archive completed",
		slog.Int("identified", stats.Identified),
		slog.Int("archived", stats.Archived),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}
