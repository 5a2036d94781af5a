package schedule

import (
	"fmt"
	"time"
)

// Unit is the granularity an Interval is expressed in. The underlying
// value is the unit's duration, so conversion needs no lookup and an
// out-of-range unit cannot be constructed from the exported constants.
type Unit time.Duration

const (
	Seconds Unit = Unit(time.Second)
	Minutes Unit = Unit(time.Minute)
	Hours   Unit = Unit(time.Hour)
)

// ParseUnit converts a configuration string into a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "seconds":
		return Seconds, nil
	case "minutes":
		return Minutes, nil
	case "hours":
		return Hours, nil
	}
	return 0, fmt.Errorf("schedule: unknown interval unit %q (supported: seconds, minutes, hours)", s)
}

// String implements fmt.Stringer.
func (u Unit) String() string {
	switch u {
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	}
	return time.Duration(u).String()
}

// Interval is a job cadence expressed as a count of a fixed unit,
// e.g. {30, Seconds}. Value must be positive.
type Interval struct {
	Value int
	Unit  Unit
}

// Duration converts the interval to a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i.Value) * time.Duration(i.Unit)
}

// Milliseconds converts the interval to a millisecond count.
func (i Interval) Milliseconds() int64 {
	return i.Duration().Milliseconds()
}

// String implements fmt.Stringer.
func (i Interval) String() string {
	return i.Duration().String()
}
