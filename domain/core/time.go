package core

import (
	"time"
)

// Clock supplies timestamps
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant
type FixedClock time.Time

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return time.Time(c) }

// Now returns the current UTC time
func Now() time.Time {
	return SystemClock{}.Now()
}

// FormatDay renders t as YYYY-MM-DD
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
