package core

import "time"

// Clock supplies the current calendar date. The ledger and the web layer
// never read wall-clock time directly; they go through a Clock so tests can
// pin dates.
type Clock interface {
	// Today returns the current date as YYYY-MM-DD.
	Today() string
	// CurrentMonth returns the current year-month as YYYY-MM.
	CurrentMonth() string
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Today() string        { return time.Now().Format(DateLayout) }
func (SystemClock) CurrentMonth() string { return time.Now().Format(MonthLayout) }
