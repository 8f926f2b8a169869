package domain

import "time"

// Student is a program participant. Students are never physically deleted;
// archiving soft-removes them from active listings while keeping history.
type Student struct {
	ID             string
	Name           string
	Phone          string
	Email          string
	GraduationDate *time.Time // calendar date, nil until marked graduated
	CreatedDate    time.Time
	Archived       bool
	ArchivedDate   *time.Time // set iff Archived
}
