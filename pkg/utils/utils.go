package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const isoDay = "2006-01-02"

// ISODate formats a time as a calendar-day string (YYYY-MM-DD).
// Reminder due dates and loan start dates are stored in this form and
// compared by exact string equality, never by timestamp range.
func ISODate(t time.Time) string {
	return t.Format(isoDay)
}

// ParseISODate parses a calendar-day string
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(isoDay, s)
}

// IsValidISODate reports whether s is a well-formed calendar-day string
func IsValidISODate(s string) bool {
	_, err := time.Parse(isoDay, s)
	return err == nil
}

// SameDay reports whether a day string matches t's calendar day
func SameDay(date string, t time.Time) bool {
	return date == ISODate(t)
}

// IsOverdue reports whether a due-date string lies strictly before t's day.
// Malformed or empty dates are never overdue.
func IsOverdue(dueDate string, t time.Time) bool {
	due, err := time.Parse(isoDay, dueDate)
	if err != nil {
		return false
	}
	return due.Before(t.Truncate(24 * time.Hour))
}

// NewLoanID generates a creation-time-derived loan id. The nanosecond
// prefix keeps ids sortable by recency; the uuid suffix keeps two
// creations within the same instant distinct.
func NewLoanID(t time.Time) string {
	return fmt.Sprintf("%d-%s", t.UnixNano(), uuid.NewString()[:8])
}

// NewReminderID generates a reminder id
func NewReminderID() string {
	return uuid.NewString()
}
