package domain

import "time"

// ReportKind names a report dataset for export dispatch.
type ReportKind string

const (
	ReportAttendanceDetail      ReportKind = "attendance_detail"
	ReportStudentProgress       ReportKind = "student_progress"
	ReportInstructorPerformance ReportKind = "instructor_performance"
	ReportGraduationEligible    ReportKind = "graduation_eligible"
	ReportSummary               ReportKind = "summary"
)

// ReportFilter is the composable query specification shared by all report
// datasets. Date bounds are inclusive calendar dates; nil means unbounded.
type ReportFilter struct {
	StartDate       *time.Time
	EndDate         *time.Time
	IncludeArchived bool
}

// AttendanceDetailRow is one attendance record joined with its student,
// ordered by session date then student name.
type AttendanceDetailRow struct {
	SessionDate  time.Time `json:"session_date"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	StudentPhone string    `json:"student_phone"`
	Archived     bool      `json:"archived"`
	StepNumber   int       `json:"step_number"`
	Instructor   string    `json:"instructor"`
}

// StudentProgressRow is one student with attendance aggregates. Students
// with no sessions still appear with a zero count. Ordered by name.
type StudentProgressRow struct {
	StudentName    string     `json:"student_name"`
	StudentEmail   string     `json:"student_email"`
	Archived       bool       `json:"archived"`
	TotalSessions  int        `json:"total_sessions"`
	FirstSession   *time.Time `json:"first_session"`
	LastSession    *time.Time `json:"last_session"`
	GraduationDate *time.Time `json:"graduation_date"`
}

// InstructorPerformanceRow aggregates sessions per distinct instructor,
// ordered by instructor name.
type InstructorPerformanceRow struct {
	Instructor       string     `json:"instructor"`
	TotalSessions    int        `json:"total_sessions"`
	DistinctStudents int        `json:"distinct_students"`
	FirstSession     *time.Time `json:"first_session"`
	LastSession      *time.Time `json:"last_session"`
}

// GraduationEligibleRow is one active student passing the eligibility test,
// with aggregates over the filtered sessions. Ordered by name.
type GraduationEligibleRow struct {
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	StudentPhone string     `json:"student_phone"`
	SessionCount int        `json:"session_count"`
	FirstSession *time.Time `json:"first_session"`
	LastSession  *time.Time `json:"last_session"`
}

// SummaryStats is the program-wide headline numbers report.
type SummaryStats struct {
	GeneratedAt        time.Time `json:"generated_at"` // full date-time
	TotalStudents      int       `json:"total_students"`
	ActiveStudents     int       `json:"active_students"`
	ArchivedStudents   int       `json:"archived_students"`
	RecentlyActive     int       `json:"recently_active"` // any session in the graduation window
	GraduationEligible int       `json:"graduation_eligible"`
}
