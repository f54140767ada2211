package scheduling

import (
	"fmt"
	"time"

	"clinicops/models"
)

// MinSlotMinutes is the shortest bookable interval and the smallest slot a policy may define.
const MinSlotMinutes = 15

// ParseClock converts "HH:MM" (24h) into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight back to zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a calendar date. Dates carry no timezone; the caller has already
// normalised to the clinic's local calendar.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

func sameOrAfter(a, b time.Time) bool { return !a.Before(b) }

// dateWithin reports whether date lies in [start, end], comparing calendar days.
func dateWithin(date time.Time, start, end string) bool {
	s, err := ParseDate(start)
	if err != nil {
		return false
	}
	e, err := ParseDate(end)
	if err != nil {
		return false
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return sameOrAfter(day, s) && sameOrAfter(e, day)
}

// span is a parsed half-open [start, end) window in minutes from midnight.
type span struct {
	start, end int
}

func parseSpan(startTime, endTime string) (span, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return span{}, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return span{}, err
	}
	return span{start: start, end: end}, nil
}

// StartInstant places a clinic-local date and "HH:MM" start on the timeline in loc.
func StartInstant(date, startTime string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(startTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
