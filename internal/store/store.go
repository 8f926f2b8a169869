package store

import (
	"context"
	"errors"
	"time"

	"github.com/openparish/steptrack/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement it. Sub-repositories keep each collection's queries together and
// make transaction scoping explicit.
type Store interface {
	Students() Students
	Attendance() Attendance
	Accounts() Accounts
	Reports() Reports

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. This is the preferred way to run multi-step mutations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store scope.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Students interface {
	// CreateStudent inserts a new student (id is provided by the app via ULID).
	CreateStudent(ctx context.Context, st domain.Student) error

	// GetStudentByID returns a student by id.
	GetStudentByID(ctx context.Context, id string) (domain.Student, error)

	// ListStudents returns students ordered by name, optionally including
	// archived ones.
	ListStudents(ctx context.Context, includeArchived bool) ([]domain.Student, error)

	// SetGraduationDate stamps the graduation date, overwriting any prior
	// value. Returns ErrNotFound if the student does not exist.
	SetGraduationDate(ctx context.Context, id string, date time.Time) error

	// SetArchived sets archived with its date when archivedDate is non-nil,
	// or clears both when nil. Returns ErrNotFound if the student does not
	// exist.
	SetArchived(ctx context.Context, id string, archivedDate *time.Time) error

	// ListInactiveStudents returns non-archived students created before the
	// threshold with no attendance record on or after it, ordered by name.
	ListInactiveStudents(ctx context.Context, threshold time.Time) ([]domain.Student, error)
}

type Attendance interface {
	// CreateAttendanceRecord inserts a new record. The student must exist
	// (enforced by foreign key).
	CreateAttendanceRecord(ctx context.Context, rec domain.AttendanceRecord) error

	// ListByStudent returns a student's records ordered by session date
	// ascending.
	ListByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error)

	// ListInRange returns records within the filter's inclusive date bounds,
	// excluding archived students' records unless the filter includes them.
	// Ordered by session date ascending.
	ListInRange(ctx context.Context, f domain.ReportFilter) ([]domain.AttendanceRecord, error)
}

type Accounts interface {
	// CreateAccount inserts a new account. Returns ErrAlreadyExists when the
	// username is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during login.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// ListAccounts returns all accounts ordered by username.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// UpdateLastLogin stamps a successful authentication.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// DeleteAccount removes an account. Returns ErrNotFound if absent.
	DeleteAccount(ctx context.Context, id string) error

	// IsEmpty reports whether no accounts exist (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

// Reports holds the read-only joined datasets that are cheaper to assemble
// in SQL than in memory. The remaining reports (graduation eligibility,
// summary) are composed in the service layer from the repositories above.
type Reports interface {
	AttendanceDetail(ctx context.Context, f domain.ReportFilter) ([]domain.AttendanceDetailRow, error)
	StudentProgress(ctx context.Context, f domain.ReportFilter) ([]domain.StudentProgressRow, error)
	InstructorPerformance(ctx context.Context, f domain.ReportFilter) ([]domain.InstructorPerformanceRow, error)
}
