package schedule

import (
	"fmt"
	"time"
	// Embed the IANA timezone database so civil-time resolution works
	// even on hosts without /usr/share/zoneinfo (containers, Windows).
	_ "time/tzdata"
)

// DefaultLocation is the civil timezone business hours are evaluated in
// when a BusinessHours carries no explicit Location. Jobs gate on the
// organization's clock, not the clock of whatever host runs the daemon.
var DefaultLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Unreachable: tzdata is embedded above.
		panic(fmt.Sprintf("schedule: load location %s: %v", name, err))
	}
	return loc
}

// BusinessHours restricts job execution to a half-open hour window
// [StartHour, EndHour) evaluated in a fixed civil timezone. Weekends are
// excluded unless IncludeWeekends is set.
//
// No relationship between StartHour and EndHour is enforced; an inverted
// window (StartHour >= EndHour) admits nothing.
type BusinessHours struct {
	StartHour       int // inclusive, 0-23
	EndHour         int // exclusive, 0-23
	IncludeWeekends bool
	Location        *time.Location // nil = DefaultLocation
}

// Contains reports whether now falls inside the admission window.
// The caller may pass now in any location; it is converted to the
// constraint's civil timezone first.
func (b BusinessHours) Contains(now time.Time) bool {
	loc := b.Location
	if loc == nil {
		loc = DefaultLocation
	}
	civil := now.In(loc)

	if h := civil.Hour(); h < b.StartHour || h >= b.EndHour {
		return false
	}
	if !b.IncludeWeekends {
		if wd := civil.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}
	return true
}
