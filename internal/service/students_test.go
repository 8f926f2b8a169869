package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openparish/steptrack/internal/domain"
	"github.com/openparish/steptrack/internal/store"
	"github.com/openparish/steptrack/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newStudentService(t *testing.T) *StudentService {
	t.Helper()
	return &StudentService{Store: newTestStore(t), Now: fixedNow}
}

// seedStudent inserts a student fixture directly, bypassing the service so
// tests can control creation dates.
func seedStudent(t *testing.T, st store.Store, name string, created int) string {
	t.Helper()
	id := idx.New().String()
	err := st.Students().CreateStudent(context.Background(), domain.Student{
		ID:          id,
		Name:        name,
		CreatedDate: daysAgo(created),
	})
	require.NoError(t, err)
	return id
}

func seedAttendance(t *testing.T, st store.Store, studentID string, dayOffsets ...int) {
	t.Helper()
	for _, offset := range dayOffsets {
		err := st.Attendance().CreateAttendanceRecord(context.Background(), domain.AttendanceRecord{
			ID:          idx.New().String(),
			StudentID:   studentID,
			StepNumber:  1,
			Instructor:  "Pat",
			SessionDate: daysAgo(offset),
		})
		require.NoError(t, err)
	}
}

func TestAddStudent(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, staffSession(), "Alice", "555-0100", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	st, err := svc.GetStudent(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Alice", st.Name)
	require.Equal(t, testToday, st.CreatedDate)
	require.False(t, st.Archived)
	require.Nil(t, st.ArchivedDate)
	require.Nil(t, st.GraduationDate)
}

func TestAddStudentRequiresName(t *testing.T) {
	svc := newStudentService(t)
	_, err := svc.AddStudent(context.Background(), staffSession(), "", "", "")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGatedOperationsDenyAnonymousAndViewer(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, adminSession(), "Alice", "", "")
	require.NoError(t, err)

	for _, sess := range []domain.Session{domain.Anonymous(), viewerSession()} {
		_, err := svc.AddStudent(ctx, sess, "Bob", "", "")
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = svc.RecordAttendance(ctx, sess, id, 1, "Pat")
		require.ErrorIs(t, err, ErrPermissionDenied)

		require.ErrorIs(t, svc.MarkAsGraduated(ctx, sess, id), ErrPermissionDenied)
		require.ErrorIs(t, svc.ArchiveStudent(ctx, sess, id), ErrPermissionDenied)
		require.ErrorIs(t, svc.UnarchiveStudent(ctx, sess, id), ErrPermissionDenied)

		_, err = svc.FindInactive(ctx, sess, 24)
		require.ErrorIs(t, err, ErrPermissionDenied)

		_, err = svc.AutoArchiveInactive(ctx, sess, 24)
		require.ErrorIs(t, err, ErrPermissionDenied)
	}

	// Archival is admin-only; staff holds the other mutations.
	require.ErrorIs(t, svc.ArchiveStudent(ctx, staffSession(), id), ErrPermissionDenied)
	_, err = svc.RecordAttendance(ctx, staffSession(), id, 1, "Pat")
	require.NoError(t, err)
}

func TestPermissionDeniedCarriesAction(t *testing.T) {
	svc := newStudentService(t)

	_, err := svc.AddStudent(context.Background(), viewerSession(), "Bob", "", "")

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, domain.ActionAddStudent, denied.Action)
}

func TestRecordAttendance(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, staffSession(), "Alice", "", "")
	require.NoError(t, err)

	recID, err := svc.RecordAttendance(ctx, staffSession(), id, 3, "Pat")
	require.NoError(t, err)
	require.NotEmpty(t, recID)

	records, err := svc.GetAttendance(ctx, id)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 3, records[0].StepNumber)
	require.Equal(t, "Pat", records[0].Instructor)
	require.Equal(t, testToday, records[0].SessionDate)
}

func TestRecordAttendanceUnknownStudent(t *testing.T) {
	svc := newStudentService(t)

	_, err := svc.RecordAttendance(context.Background(), staffSession(), "no-such-id", 1, "Pat")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordAttendanceRejectsBadStep(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, staffSession(), "Alice", "", "")
	require.NoError(t, err)

	for _, step := range []int{0, -1} {
		_, err := svc.RecordAttendance(ctx, staffSession(), id, step, "Pat")
		require.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestMarkAsGraduatedOverwrites(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, staffSession(), "Alice", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsGraduated(ctx, staffSession(), id))

	st, err := svc.GetStudent(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, st.GraduationDate)
	require.Equal(t, testToday, *st.GraduationDate)

	// Re-marking succeeds and re-stamps the date.
	require.NoError(t, svc.MarkAsGraduated(ctx, staffSession(), id))

	require.ErrorIs(t, svc.MarkAsGraduated(ctx, staffSession(), "no-such-id"), store.ErrNotFound)
}

func TestArchiveUnarchive(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	id, err := svc.AddStudent(ctx, adminSession(), "Alice", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveStudent(ctx, adminSession(), id))

	st, err := svc.GetStudent(ctx, id)
	require.NoError(t, err)
	require.True(t, st.Archived)
	require.NotNil(t, st.ArchivedDate, "archived implies archived_date")
	firstArchived := *st.ArchivedDate

	// Archiving again a day later succeeds without re-stamping the date.
	svc.Now = func() time.Time { return testToday.AddDate(0, 0, 1) }
	require.NoError(t, svc.ArchiveStudent(ctx, adminSession(), id))
	st, err = svc.GetStudent(ctx, id)
	require.NoError(t, err)
	require.Equal(t, firstArchived, *st.ArchivedDate)

	require.NoError(t, svc.UnarchiveStudent(ctx, adminSession(), id))
	st, err = svc.GetStudent(ctx, id)
	require.NoError(t, err)
	require.False(t, st.Archived)
	require.Nil(t, st.ArchivedDate, "active implies no archived_date")

	// Unarchiving an active student is a no-op.
	require.NoError(t, svc.UnarchiveStudent(ctx, adminSession(), id))

	require.ErrorIs(t, svc.ArchiveStudent(ctx, adminSession(), "no-such-id"), store.ErrNotFound)
	require.ErrorIs(t, svc.UnarchiveStudent(ctx, adminSession(), "no-such-id"), store.ErrNotFound)
}

func TestListStudentsRespectsArchivedFlag(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)

	aliceID, err := svc.AddStudent(ctx, adminSession(), "Alice", "", "")
	require.NoError(t, err)
	_, err = svc.AddStudent(ctx, adminSession(), "Bob", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ArchiveStudent(ctx, adminSession(), aliceID))

	active, err := svc.ListStudents(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Bob", active[0].Name)

	all, err := svc.ListStudents(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Alice", all[0].Name, "listing is ordered by name")
}

func TestFindInactive(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	st := svc.Store

	// A: created long ago with no attendance, so inactive.
	aID := seedStudent(t, st, "A Dormant", 800)

	// B: created long ago but attended recently, so active.
	bID := seedStudent(t, st, "B Attender", 800)
	seedAttendance(t, st, bID, 10)

	// C: enrolled after the threshold, protected from flagging.
	seedStudent(t, st, "C Newcomer", 5)

	// D: attendance exactly on the threshold date counts as active.
	dID := seedStudent(t, st, "D Boundary", 800)
	seedAttendance(t, st, dID, 24*domain.DaysPerMonth)

	inactive, err := svc.FindInactive(ctx, adminSession(), 24)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	require.Equal(t, aID, inactive[0].ID)
}

func TestAutoArchiveInactive(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	st := svc.Store

	aID := seedStudent(t, st, "A Dormant", 800)
	bID := seedStudent(t, st, "B Attender", 800)
	seedAttendance(t, st, bID, 10)

	stats, err := svc.AutoArchiveInactive(ctx, adminSession(), 24)
	require.NoError(t, err)
	require.Equal(t, ArchiveStats{Identified: 1, Archived: 1, Failed: 0}, stats)

	archived, err := svc.GetStudent(ctx, aID)
	require.NoError(t, err)
	require.True(t, archived.Archived)

	untouched, err := svc.GetStudent(ctx, bID)
	require.NoError(t, err)
	require.False(t, untouched.Archived)

	// A second run finds nothing left to archive.
	stats, err = svc.AutoArchiveInactive(ctx, adminSession(), 24)
	require.NoError(t, err)
	require.Equal(t, ArchiveStats{}, stats)
}

// flakyStore fails the next n WithTx calls, then behaves normally.
type flakyStore struct {
	store.Store
	failures int
}

func (s *flakyStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("database is locked")
	}
	return s.Store.WithTx(ctx, fn)
}

func TestAutoArchiveInactiveContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Candidates are processed in name order, so the single injected failure
	// lands on A and B must still get archived.
	aID := seedStudent(t, st, "A Dormant", 800)
	bID := seedStudent(t, st, "B Dormant", 800)

	svc := &StudentService{Store: &flakyStore{Store: st, failures: 1}, Now: fixedNow}

	stats, err := svc.AutoArchiveInactive(ctx, adminSession(), 24)
	require.NoError(t, err, "one failed archive must not abort the batch")
	require.Equal(t, ArchiveStats{Identified: 2, Archived: 1, Failed: 1}, stats)

	a, err := svc.GetStudent(ctx, aID)
	require.NoError(t, err)
	require.False(t, a.Archived)

	b, err := svc.GetStudent(ctx, bID)
	require.NoError(t, err)
	require.True(t, b.Archived)
}

func TestEligibleForGraduationList(t *testing.T) {
	ctx := context.Background()
	svc := newStudentService(t)
	st := svc.Store

	// Twelve recent sessions: eligible.
	eligibleID := seedStudent(t, st, "Eligible", 500)
	for i := 0; i < 12; i++ {
		seedAttendance(t, st, eligibleID, i*7)
	}

	// Eleven sessions: short of the requirement.
	shortID := seedStudent(t, st, "Short", 500)
	for i := 0; i < 11; i++ {
		seedAttendance(t, st, shortID, i*7)
	}

	// Archived students are excluded even with enough sessions.
	archivedID := seedStudent(t, st, "Archived", 500)
	for i := 0; i < 12; i++ {
		seedAttendance(t, st, archivedID, i*7)
	}
	require.NoError(t, svc.ArchiveStudent(ctx, adminSession(), archivedID))

	eligible, err := svc.EligibleForGraduationList(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, eligibleID, eligible[0].ID)
}
