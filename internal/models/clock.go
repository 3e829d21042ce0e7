package models

import (
	"fmt"
	"time"
)

// Wire formats for dates and times of day. Times of day are compared as
// minutes since midnight; dates never carry a timezone.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ParseDate validates a "YYYY-MM-DD" string and returns it as a UTC time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// WindowsOverlap reports whether the half-open windows [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not overlap, so
// back-to-back trips where one ends exactly when the next starts are fine.
func WindowsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
