package domain

import "time"

// Program policy windows. The source policy defines these as fixed day
// counts approximating 15 and 24 months; they are never derived from
// calendar-month arithmetic.
const (
	// GraduationWindowDays bounds the trailing window in which sessions
	// count toward graduation.
	GraduationWindowDays = 450

	// GraduationCooldownDays is how long a graduated student is ineligible
	// to graduate again.
	GraduationCooldownDays = 730

	// GraduationRequiredSessions is the minimum number of attended sessions
	// within the graduation window.
	GraduationRequiredSessions = 12

	// DaysPerMonth converts inactivity thresholds expressed in months into
	// day counts.
	DaysPerMonth = 30
)

// RecentlyGraduated reports whether the student graduated within the
// trailing cooldown window ending at today.
func RecentlyGraduated(st Student, today time.Time) bool {
	if st.GraduationDate == nil {
		return false
	}
	cutoff := today.AddDate(0, 0, -GraduationCooldownDays)
	return !st.GraduationDate.Before(cutoff)
}

// EligibleForGraduation reports whether the student qualifies to graduate:
// at least GraduationRequiredSessions sessions within the trailing
// GraduationWindowDays, and either never graduated or graduated more than
// GraduationCooldownDays ago.
func EligibleForGraduation(st Student, history []AttendanceRecord, today time.Time) bool {
	if RecentlyGraduated(st, today) {
		return false
	}
	from := today.AddDate(0, 0, -GraduationWindowDays)
	return CountSessionsBetween(history, from, today) >= GraduationRequiredSessions
}

// CountSessionsBetween counts records with a session date in the inclusive
// range [from, to].
func CountSessionsBetween(history []AttendanceRecord, from, to time.Time) int {
	n := 0
	for _, rec := range history {
		if rec.SessionDate.Before(from) || rec.SessionDate.After(to) {
			continue
		}
		n++
	}
	return n
}

// InactivityThreshold converts a months-inactive setting into the cutoff
// date before which a student must have been created, and on or after which
// they must have attended, to avoid being flagged inactive.
func InactivityThreshold(today time.Time, monthsInactive int) time.Time {
	return today.AddDate(0, 0, -monthsInactive*DaysPerMonth)
}
