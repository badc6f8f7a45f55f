package services

import (
	"testing"

	"clinic-booking-server/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const monday = "2025-03-03"

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and shared.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, email string) models.User {
	t.Helper()
	user := models.User{Email: email, FirstName: "Test", LastName: string(role), Role: role}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

// createDoctor creates a doctor working Mondays 09:00-17:00.
func createDoctor(t *testing.T, db *gorm.DB, svc *BookingService, email string) models.User {
	t.Helper()
	doctor := createUser(t, db, models.RoleDoctor, email)
	_, err := svc.ReplaceAvailability(doctor.ID, []WindowInput{
		{DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00"},
	})
	require.NoError(t, err)
	return doctor
}

func TestBookThenBookSameSlot(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	p1 := createUser(t, db, models.RolePatient, "p1@clinic.test")
	p2 := createUser(t, db, models.RolePatient, "p2@clinic.test")

	appt, err := svc.Book(p1.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, appt.Status)
	assert.Equal(t, "09:00", appt.Time)

	// Exactly one success and one conflict for the same slot.
	_, err = svc.Book(p2.ID, doctor.ID, monday, "09:00", nil)
	assert.ErrorIs(t, err, ErrConflict)

	// Within the guard band on either side also conflicts.
	_, err = svc.Book(p2.ID, doctor.ID, monday, "09:04", nil)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.Book(p2.ID, doctor.ID, monday, "08:56", nil)
	assert.ErrorIs(t, err, ErrNotAvailable) // outside the window before it can conflict

	// Exactly five minutes away does not conflict.
	_, err = svc.Book(p2.ID, doctor.ID, monday, "09:05", nil)
	assert.NoError(t, err)
}

func TestBookGates(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	_, err := svc.Book(patient.ID, "no-such-doctor", monday, "09:00", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	// Tuesday: no windows at all.
	_, err = svc.Book(patient.ID, doctor.ID, "2025-03-04", "09:00", nil)
	assert.ErrorIs(t, err, ErrNotAvailable)

	// The window end is half-open: 17:00 itself is not bookable.
	_, err = svc.Book(patient.ID, doctor.ID, monday, "17:00", nil)
	assert.ErrorIs(t, err, ErrNotAvailable)
	_, err = svc.Book(patient.ID, doctor.ID, monday, "16:59", nil)
	assert.NoError(t, err)

	_, err = svc.Book(patient.ID, doctor.ID, "03/03/2025", "09:00", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Book(patient.ID, doctor.ID, monday, "9am", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBookWithRecord(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	record := &RecordRef{
		FileName:     "p_169_history.pdf",
		OriginalName: "history.pdf",
		FileType:     "application/pdf",
		Data:         []byte("%PDF-1.4"),
	}
	_, err := svc.Book(patient.ID, doctor.ID, monday, "09:00", record)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PatientRecord{}).Where("patient_id = ?", patient.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A failed booking must not leave the record behind.
	_, err = svc.Book(patient.ID, doctor.ID, monday, "09:01", record)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, db.Model(&models.PatientRecord{}).Where("patient_id = ?", patient.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReschedule(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	p1 := createUser(t, db, models.RolePatient, "p1@clinic.test")
	p2 := createUser(t, db, models.RolePatient, "p2@clinic.test")

	first, err := svc.Book(p1.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)
	second, err := svc.Book(p2.ID, doctor.ID, monday, "10:00", nil)
	require.NoError(t, err)

	// Moving to the literally unchanged time is the degenerate case the
	// own-id exclusion permits.
	_, err = svc.Reschedule(second.ID, p2.ID, models.RolePatient, monday, "10:00")
	assert.NoError(t, err)

	// Any other time near the first appointment is treated per the guard band.
	_, err = svc.Reschedule(second.ID, p2.ID, models.RolePatient, monday, "09:04")
	assert.ErrorIs(t, err, ErrConflict)
	got, err := svc.Reschedule(second.ID, p2.ID, models.RolePatient, monday, "09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got.Time)

	// Ownership: another patient may not move it, an admin may.
	_, err = svc.Reschedule(first.ID, p2.ID, models.RolePatient, monday, "11:00")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Reschedule(first.ID, "admin-id", models.RoleAdmin, monday, "11:00")
	assert.NoError(t, err)

	_, err = svc.Reschedule("no-such-appointment", p1.ID, models.RolePatient, monday, "11:00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRescheduleCompletedForbidden(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	appt, err := svc.Book(patient.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)
	_, err = svc.Complete(appt.ID, doctor.ID, "flu", "rest", "")
	require.NoError(t, err)

	_, err = svc.Reschedule(appt.ID, patient.ID, models.RolePatient, monday, "10:00")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Cancel(appt.ID, patient.ID, models.RolePatient)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelledAppointmentsStillBlock(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	appt, err := svc.Book(patient.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)
	_, err = svc.Cancel(appt.ID, patient.ID, models.RolePatient)
	require.NoError(t, err)

	// Status is not filtered by the conflict check, so the cancelled slot
	// keeps blocking until the row is deleted.
	_, err = svc.Book(patient.ID, doctor.ID, monday, "09:00", nil)
	assert.ErrorIs(t, err, ErrConflict)

	// The slot generator sees it too.
	slots, err := svc.Slots(doctor.ID, monday, 30)
	require.NoError(t, err)
	for _, s := range slots {
		assert.NotEqual(t, "09:00", s.String())
	}
}

func TestCancelOwnership(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	p1 := createUser(t, db, models.RolePatient, "p1@clinic.test")
	p2 := createUser(t, db, models.RolePatient, "p2@clinic.test")

	appt, err := svc.Book(p1.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)

	_, err = svc.Cancel(appt.ID, p2.ID, models.RolePatient)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Cancel(appt.ID, "admin-id", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestCompleteUpsertsTreatment(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	other := createDoctor(t, db, svc, "other@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	appt, err := svc.Book(patient.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)

	_, err = svc.Complete(appt.ID, other.ID, "flu", "rest", "")
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Complete(appt.ID, doctor.ID, "flu", "rest", "follow up in a week")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.Treatment)
	assert.Equal(t, "flu", got.Treatment.Diagnosis)

	// Completing again merges non-empty fields over the existing row.
	got, err = svc.Complete(appt.ID, doctor.ID, "influenza A", "", "")
	require.NoError(t, err)
	require.NotNil(t, got.Treatment)
	assert.Equal(t, "influenza A", got.Treatment.Diagnosis)
	assert.Equal(t, "rest", got.Treatment.Prescription)
	assert.Equal(t, "follow up in a week", got.Treatment.Notes)

	var count int64
	require.NoError(t, db.Model(&models.Treatment{}).Where("appointment_id = ?", appt.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSlotsAgainstStore(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createUser(t, db, models.RoleDoctor, "doc@clinic.test")
	patient := createUser(t, db, models.RolePatient, "p@clinic.test")

	_, err := svc.ReplaceAvailability(doctor.ID, []WindowInput{
		{DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
	})
	require.NoError(t, err)

	slots, err := svc.Slots(doctor.ID, monday, 30)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "09:30", slots[1].String())

	// A booking at 09:02 knocks out 09:00 but not 09:30.
	_, err = svc.Book(patient.ID, doctor.ID, monday, "09:02", nil)
	require.NoError(t, err)
	slots, err = svc.Slots(doctor.ID, monday, 30)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:30", slots[0].String())

	_, err = svc.Slots("no-such-doctor", monday, 30)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Slots(doctor.ID, "bad-date", 30)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReplaceAvailability(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createUser(t, db, models.RoleDoctor, "doc@clinic.test")

	_, err := svc.ReplaceAvailability(doctor.ID, []WindowInput{
		{DayOfWeek: 0, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 2, StartTime: "13:00", EndTime: "17:00"},
	})
	require.NoError(t, err)

	// Replace-by-day is a full replace: the old Wednesday window is gone.
	windows, err := svc.ReplaceAvailability(doctor.ID, []WindowInput{
		{DayOfWeek: 0, StartTime: "10:00", EndTime: "14:00"},
	})
	require.NoError(t, err)
	require.Len(t, windows, 1)

	stored, err := svc.WindowsForDoctor(doctor.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 0, stored[0].DayOfWeek)
	assert.Equal(t, "10:00", stored[0].StartTime)

	// start >= end is rejected before anything is deleted.
	_, err = svc.ReplaceAvailability(doctor.ID, []WindowInput{
		{DayOfWeek: 0, StartTime: "14:00", EndTime: "14:00"},
	})
	assert.ErrorIs(t, err, ErrValidation)
	stored, err = svc.WindowsForDoctor(doctor.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	_, err = svc.ReplaceAvailability("no-such-doctor", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminEdit(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	doctor := createDoctor(t, db, svc, "doc@clinic.test")
	other := createDoctor(t, db, svc, "other@clinic.test")
	p1 := createUser(t, db, models.RolePatient, "p1@clinic.test")
	p2 := createUser(t, db, models.RolePatient, "p2@clinic.test")

	appt, err := svc.Book(p1.ID, doctor.ID, monday, "09:00", nil)
	require.NoError(t, err)
	_, err = svc.Book(p2.ID, other.ID, monday, "10:00", nil)
	require.NoError(t, err)

	// Moving to the other doctor re-runs both gates against that doctor.
	_, err = svc.AdminEdit(appt.ID, AdminEditInput{DoctorID: other.ID, Time: "10:03"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.AdminEdit(appt.ID, AdminEditInput{DoctorID: other.ID, Time: "11:00", PatientID: p2.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.DoctorID)
	assert.Equal(t, p2.ID, got.PatientID)
	assert.Equal(t, "11:00", got.Time)

	_, err = svc.AdminEdit(appt.ID, AdminEditInput{Status: "Archived"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err = svc.AdminEdit(appt.ID, AdminEditInput{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, models.EnsureDefaultAdmin(db, "admin@clinic.test", "admin123"))
	// Idempotent.
	require.NoError(t, models.EnsureDefaultAdmin(db, "admin@clinic.test", "admin123"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].CheckPassword("admin123"))
}
