package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves windows and booked times from memory for both store
// interfaces.
type fakeStore struct {
	windows map[int][]Window // keyed by day of week
	booked  []BookedTime
}

func (f *fakeStore) WindowsFor(doctorID string, dayOfWeek int) ([]Window, error) {
	return f.windows[dayOfWeek], nil
}

func (f *fakeStore) BookedTimes(doctorID string, date Date) ([]BookedTime, error) {
	return f.booked, nil
}

func mustTime(t *testing.T, s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func mustDate(t *testing.T, s string) Date {
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(9*60+30), tod)
	assert.Equal(t, "09:30", tod.String())

	for _, bad := range []string{"", "9:30:00", "24:00", "09:60", "abcde", "2021-01-01"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", d.String())

	// 2025-03-03 is a Monday; the index is Monday=0.
	assert.Equal(t, 0, d.DayOfWeek())
	assert.Equal(t, 6, mustDate(t, "2025-03-09").DayOfWeek()) // Sunday

	_, err = ParseDate("03/03/2025")
	assert.Error(t, err)
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")}
	assert.True(t, w.Valid())
	assert.True(t, w.Contains(mustTime(t, "09:00")))
	assert.True(t, w.Contains(mustTime(t, "09:59")))
	// Half-open: the exact end time is not bookable.
	assert.False(t, w.Contains(mustTime(t, "10:00")))
	assert.False(t, w.Contains(mustTime(t, "08:59")))

	assert.False(t, Window{Start: mustTime(t, "10:00"), End: mustTime(t, "10:00")}.Valid())
}

func TestCheckerGuardBandBoundary(t *testing.T) {
	date := mustDate(t, "2025-03-03")
	store := &fakeStore{booked: []BookedTime{{AppointmentID: "a1", Time: mustTime(t, "09:30")}}}
	checker := &Checker{Appointments: store}

	cases := []struct {
		candidate string
		conflict  bool
	}{
		{"09:30", true},  // same minute
		{"09:26", true},  // 4 min away
		{"09:34", true},  // 4 min away, other side
		{"09:25", false}, // exactly 5 min away is not a conflict
		{"09:35", false},
		{"09:00", false},
	}
	for _, tc := range cases {
		got, err := checker.HasConflict("doc", date, mustTime(t, tc.candidate), "")
		require.NoError(t, err)
		assert.Equal(t, tc.conflict, got, "candidate %s", tc.candidate)
	}
}

func TestCheckerExcludesOwnAppointment(t *testing.T) {
	date := mustDate(t, "2025-03-03")
	store := &fakeStore{booked: []BookedTime{
		{AppointmentID: "mine", Time: mustTime(t, "09:30")},
		{AppointmentID: "other", Time: mustTime(t, "11:00")},
	}}
	checker := &Checker{Appointments: store}

	// Rescheduling to the literally unchanged time passes once the own id
	// is excluded.
	got, err := checker.HasConflict("doc", date, mustTime(t, "09:30"), "mine")
	require.NoError(t, err)
	assert.False(t, got)

	// The other appointment still blocks nearby times.
	got, err = checker.HasConflict("doc", date, mustTime(t, "11:04"), "mine")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestSlotsBasicWindow(t *testing.T) {
	// Window Mon 09:00-10:00, slot length 30: 10:00 would need 10:00-10:30
	// which exceeds the window.
	store := &fakeStore{windows: map[int][]Window{
		0: {{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")}},
	}}
	gen := &Generator{Availability: store, Appointments: store}

	slots, err := gen.Slots("doc", mustDate(t, "2025-03-03"), 30)
	require.NoError(t, err)
	assert.Equal(t, []TimeOfDay{mustTime(t, "09:00"), mustTime(t, "09:30")}, slots)
}

func TestSlotsGuardBandIndependentOfSlotLength(t *testing.T) {
	date := mustDate(t, "2025-03-03")
	windows := map[int][]Window{
		0: {{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")}},
	}

	// Booked 09:15: 900s from 09:00, so 09:00 stays.
	store := &fakeStore{windows: windows, booked: []BookedTime{{AppointmentID: "a", Time: mustTime(t, "09:15")}}}
	gen := &Generator{Availability: store, Appointments: store}
	slots, err := gen.Slots("doc", date, 30)
	require.NoError(t, err)
	assert.Equal(t, []TimeOfDay{mustTime(t, "09:00"), mustTime(t, "09:30")}, slots)

	// Booked 09:02: 120s from 09:00, so 09:00 is excluded but 09:30 stays.
	store.booked = []BookedTime{{AppointmentID: "a", Time: mustTime(t, "09:02")}}
	slots, err = gen.Slots("doc", date, 30)
	require.NoError(t, err)
	assert.Equal(t, []TimeOfDay{mustTime(t, "09:30")}, slots)
}

func TestSlotsWindowShorterThanSlot(t *testing.T) {
	store := &fakeStore{windows: map[int][]Window{
		0: {{Start: mustTime(t, "09:00"), End: mustTime(t, "09:20")}},
	}}
	gen := &Generator{Availability: store, Appointments: store}

	slots, err := gen.Slots("doc", mustDate(t, "2025-03-03"), 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsNoWindowsForWeekday(t *testing.T) {
	store := &fakeStore{windows: map[int][]Window{
		0: {{Start: mustTime(t, "09:00"), End: mustTime(t, "12:00")}},
	}}
	gen := &Generator{Availability: store, Appointments: store}

	// 2025-03-04 is a Tuesday; the doctor only works Mondays.
	slots, err := gen.Slots("doc", mustDate(t, "2025-03-04"), 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestSlotsWindowIterationOrder(t *testing.T) {
	// Candidates are concatenated in window order, not globally sorted, and
	// overlapping windows produce duplicate candidates.
	store := &fakeStore{windows: map[int][]Window{
		0: {
			{Start: mustTime(t, "13:00"), End: mustTime(t, "14:00")},
			{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")},
			{Start: mustTime(t, "13:00"), End: mustTime(t, "14:00")},
		},
	}}
	gen := &Generator{Availability: store, Appointments: store}

	slots, err := gen.Slots("doc", mustDate(t, "2025-03-03"), 30)
	require.NoError(t, err)
	assert.Equal(t, []TimeOfDay{
		mustTime(t, "13:00"), mustTime(t, "13:30"),
		mustTime(t, "09:00"), mustTime(t, "09:30"),
		mustTime(t, "13:00"), mustTime(t, "13:30"),
	}, slots)
}

func TestSlotsDefaultLength(t *testing.T) {
	store := &fakeStore{windows: map[int][]Window{
		0: {{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")}},
	}}
	gen := &Generator{Availability: store, Appointments: store}

	slots, err := gen.Slots("doc", mustDate(t, "2025-03-03"), 0)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestIsAvailable(t *testing.T) {
	windows := []Window{
		{Start: mustTime(t, "09:00"), End: mustTime(t, "10:00")},
		{Start: mustTime(t, "14:00"), End: mustTime(t, "16:00")},
	}
	assert.True(t, IsAvailable(windows, mustTime(t, "09:45")))
	assert.True(t, IsAvailable(windows, mustTime(t, "14:00")))
	assert.False(t, IsAvailable(windows, mustTime(t, "10:00")))
	assert.False(t, IsAvailable(windows, mustTime(t, "12:00")))
	assert.False(t, IsAvailable(nil, mustTime(t, "09:00")))
}
