package scheduling

import (
	"fmt"
	"time"
)

// TimeOfDay is a naive wall-clock time with minute precision, stored as
// minutes since midnight. All scheduling arithmetic is done on this type so
// that no timezone conversion can creep into comparisons.
type TimeOfDay int

// ParseTimeOfDay parses a time in the external "HH:MM" format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String formats the time back to "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddMinutes returns the time shifted forward by m minutes.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m)
}

// DiffSeconds returns the absolute wall-clock distance to o in seconds.
func (t TimeOfDay) DiffSeconds(o TimeOfDay) int {
	d := int(t) - int(o)
	if d < 0 {
		d = -d
	}
	return d * 60
}

// Date is a calendar date with no time or timezone component.
type Date struct {
	time.Time
}

// ParseDate parses a date in the external "YYYY-MM-DD" format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// String formats the date back to "YYYY-MM-DD".
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// DayOfWeek returns the weekday index with Monday=0 .. Sunday=6, matching
// how availability windows are keyed.
func (d Date) DayOfWeek() int {
	return (int(d.Weekday()) + 6) % 7
}
