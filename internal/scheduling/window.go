package scheduling

// Window is a recurring weekly interval during which a doctor accepts
// appointments. Windows are trusted as entered: the only invariant enforced
// at entry time is Start < End, and overlap between windows is allowed.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether the window satisfies Start < End.
func (w Window) Valid() bool {
	return w.Start < w.End
}

// Contains reports whether t falls inside the window. The interval is
// half-open: the exact end time is not bookable.
func (w Window) Contains(t TimeOfDay) bool {
	return w.Start <= t && t < w.End
}

// IsAvailable reports whether t falls inside any of the given windows.
func IsAvailable(windows []Window, t TimeOfDay) bool {
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
