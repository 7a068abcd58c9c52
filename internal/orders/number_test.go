package orders

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	if got := FormatNumber(day, 1); got != "2608300001" {
		t.Fatalf("expected 2608300001, got %s", got)
	}
	if got := FormatNumber(day, 412); got != "2608300412" {
		t.Fatalf("expected 2608300412, got %s", got)
	}
}

func TestFormatNumber_SequenceResetsAcrossMidnight(t *testing.T) {
	t.Parallel()

	lateNight := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	nextDay := lateNight.Add(2 * time.Minute)

	if got := FormatNumber(lateNight, 37); got != "2601310037" {
		t.Fatalf("unexpected number %s", got)
	}
	if got := FormatNumber(nextDay, 1); got != "2602010001" {
		t.Fatalf("expected fresh sequence on the new day, got %s", got)
	}
}

func TestDayRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 30, 18, 22, 11, 0, time.UTC)
	start, end := DayRange(now)

	if !start.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}
}
