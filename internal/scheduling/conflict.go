package scheduling

// GuardBandSeconds is the fixed minimum separation between any two
// appointments for the same doctor. It is independent of slot length.
const GuardBandSeconds = 300

// BookedTime is an existing appointment time for a doctor on some date.
type BookedTime struct {
	AppointmentID string
	Time          TimeOfDay
}

// AppointmentStore provides the appointment times the scheduling core reads.
type AppointmentStore interface {
	// BookedTimes returns the appointment times for a doctor on an exact
	// date, regardless of status. Cancelled appointments still count here;
	// the surrounding application preserves that behavior deliberately.
	BookedTimes(doctorID string, date Date) ([]BookedTime, error)
}

// AvailabilityStore provides the recurring weekly windows the scheduling
// core reads.
type AvailabilityStore interface {
	// WindowsFor returns the windows for a doctor on a weekday (0=Monday),
	// in insertion order. No overlap validation is done by the store.
	WindowsFor(doctorID string, dayOfWeek int) ([]Window, error)
}

// Checker decides whether a candidate appointment time collides with an
// existing booking within the guard band.
type Checker struct {
	Appointments AppointmentStore
}

// HasConflict reports whether any appointment for the doctor on the exact
// date, other than excludeID, lies strictly within 5 minutes of t. A
// booking exactly GuardBandSeconds away does not conflict. excludeID may
// be empty to exclude nothing.
func (c *Checker) HasConflict(doctorID string, date Date, t TimeOfDay, excludeID string) (bool, error) {
	booked, err := c.Appointments.BookedTimes(doctorID, date)
	if err != nil {
		return false, err
	}
	for _, b := range booked {
		if excludeID != "" && b.AppointmentID == excludeID {
			continue
		}
		if t.DiffSeconds(b.Time) < GuardBandSeconds {
			return true, nil
		}
	}
	return false, nil
}
