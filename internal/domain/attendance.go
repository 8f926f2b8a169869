package domain

import "time"

// AttendanceRecord is one step session attended by a student. Records are
// immutable once written and always reference an existing student.
type AttendanceRecord struct {
	ID          string
	StudentID   string
	StepNumber  int // positive, not required to be unique or sequential
	Instructor  string
	SessionDate time.Time // calendar date
}
