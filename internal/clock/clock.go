// Package clock supplies "today" in a single fixed time zone so that the
// server's local zone never leaks into expiry decisions.
package clock

import (
	"time"

	"carelog/internal/model"
)

// Clock reports the current calendar date.
type Clock interface {
	Today() model.Date
}

// Zoned reads the wall clock in a fixed location. The zero value reads
// time.Now in UTC.
type Zoned struct {
	Location *time.Location
	now      func() time.Time
}

// NewZoned returns a Clock for loc. A nil loc means UTC.
func NewZoned(loc *time.Location) *Zoned {
	if loc == nil {
		loc = time.UTC
	}
	return &Zoned{Location: loc, now: time.Now}
}

func (z *Zoned) Today() model.Date {
	now, loc := z.now, z.Location
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return model.DateOf(now().In(loc))
}

// Fixed always returns the same date.
type Fixed model.Date

func (f Fixed) Today() model.Date { return model.Date(f) }
