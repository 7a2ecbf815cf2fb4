package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	MinutesPerDay = 24 * 60

	MinDuration = 1
	MaxDuration = 8
)

// Slot is the (date, time) a booking occupies for Duration hours.
type Slot struct {
	Date     string
	Time     string
	Duration int
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}

	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}

	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// Interval returns [start, end) in minutes since midnight.
// Slots that would run past midnight are rejected.
func (s Slot) Interval() (int, int, error) {
	if _, err := ParseDate(s.Date); err != nil {
		return 0, 0, err
	}

	start, err := ParseClock(s.Time)
	if err != nil {
		return 0, 0, err
	}

	dur := s.Duration
	if dur == 0 {
		dur = MinDuration
	}
	if dur < MinDuration || dur > MaxDuration {
		return 0, 0, fmt.Errorf("duration must be between %d and %d hours", MinDuration, MaxDuration)
	}

	end := start + dur*60
	if end > MinutesPerDay {
		return 0, 0, fmt.Errorf("slot %s +%dh crosses midnight", s.Time, dur)
	}

	return start, end, nil
}

// StartAt is the instant the slot begins, reading date and time as wall clock in loc.
func (s Slot) StartAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %s %s: %w", s.Date, s.Time, err)
	}

	return t, nil
}

// Overlaps is the half-open interval test used by the slot guard.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
