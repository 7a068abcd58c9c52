package orders

import (
	"fmt"
	"time"
)

// FormatNumber builds a human-readable order number: the YYMMDD date prefix
// followed by a zero-padded 4-digit daily sequence.
func FormatNumber(t time.Time, sequence int) string {
	return fmt.Sprintf("%s%04d", t.Format("060102"), sequence)
}

// DayRange returns the half-open [start, end) bounds of t's calendar day,
// used to count how many orders were already placed today.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
