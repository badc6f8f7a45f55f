package scheduling

// DefaultSlotMinutes is the slot length used when the caller does not ask
// for a specific granularity.
const DefaultSlotMinutes = 30

// Generator produces the ordered list of bookable slot start times for a
// doctor on a given date, from the doctor's recurring weekly windows and
// the already-booked appointment times.
type Generator struct {
	Availability AvailabilityStore
	Appointments AppointmentStore
}

// Slots walks every window for the date's weekday in fixed slotMinutes
// steps. A step is a valid slot start iff the whole slot fits inside the
// window and the step is at least GuardBandSeconds away from every booked
// time on that date. Candidates are returned in window iteration order;
// overlapping windows are not deduplicated.
func (g *Generator) Slots(doctorID string, date Date, slotMinutes int) ([]TimeOfDay, error) {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	windows, err := g.Availability.WindowsFor(doctorID, date.DayOfWeek())
	if err != nil {
		return nil, err
	}
	booked, err := g.Appointments.BookedTimes(doctorID, date)
	if err != nil {
		return nil, err
	}

	var slots []TimeOfDay
	for _, w := range windows {
		for step := w.Start; step.AddMinutes(slotMinutes) <= w.End; step = step.AddMinutes(slotMinutes) {
			if clashes(step, booked) {
				continue
			}
			slots = append(slots, step)
		}
	}
	return slots, nil
}

// clashes reports whether the candidate is within the guard band of any
// booked time. The guard band is decoupled from slot length.
func clashes(candidate TimeOfDay, booked []BookedTime) bool {
	for _, b := range booked {
		if candidate.DiffSeconds(b.Time) < GuardBandSeconds {
			return true
		}
	}
	return false
}
