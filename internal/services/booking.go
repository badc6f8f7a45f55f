package services

import (
	"errors"
	"fmt"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"

	"gorm.io/gorm"
)

// BookingService composes the availability gate, the conflict gate and
// persistence into atomic booking operations. Displayed slots may be stale
// by the time the user submits, so every mutation re-runs both gates inside
// its own transaction instead of trusting a prior read.
type BookingService struct {
	db *gorm.DB
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// RecordRef is an opaque stored-file reference optionally handed in with a
// booking. The service records it; it does not validate file content.
type RecordRef struct {
	FileName     string
	OriginalName string
	FileType     string
	Data         []byte
}

// Book creates a new appointment for a patient with a doctor. The
// availability check and the conflict check are independent gates; both
// must pass. The optional record and the appointment are persisted in one
// transaction.
func (s *BookingService) Book(patientID, doctorID, dateStr, timeStr string, record *RecordRef) (*models.Appointment, error) {
	date, t, err := parseDateTime(dateStr, timeStr)
	if err != nil {
		return nil, err
	}

	var appt models.Appointment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := findDoctor(tx, doctorID); err != nil {
			return err
		}
		if err := runGates(tx, doctorID, date, t, ""); err != nil {
			return err
		}

		if record != nil {
			rec := models.PatientRecord{
				PatientID:    patientID,
				FileName:     record.FileName,
				OriginalName: record.OriginalName,
				FileType:     record.FileType,
				FileData:     record.Data,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		appt = models.Appointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      date.String(),
			Time:      t.String(),
			Status:    models.StatusBooked,
		}
		if err := tx.Create(&appt).Error; err != nil {
			if IsDuplicateKey(err) {
				// Exact-equal slot taken between check and write; the
				// composite unique index closes that race.
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Reschedule moves an appointment to a new date and time. The requester
// must own the appointment unless they are an admin. Both gates re-run with
// the appointment's own id excluded from the conflict check, so moving to
// the literally unchanged time is permitted.
func (s *BookingService) Reschedule(appointmentID, requesterID string, requesterRole models.Role, dateStr, timeStr string) (*models.Appointment, error) {
	date, t, err := parseDateTime(dateStr, timeStr)
	if err != nil {
		return nil, err
	}

	var appt models.Appointment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := findAppointment(tx, appointmentID, &appt); err != nil {
			return err
		}
		if requesterRole != models.RoleAdmin && appt.PatientID != requesterID {
			return ErrForbidden
		}
		if appt.Status == models.StatusCompleted {
			return fmt.Errorf("%w: completed appointments cannot be rescheduled", ErrValidation)
		}
		if err := runGates(tx, appt.DoctorID, date, t, appt.ID); err != nil {
			return err
		}

		appt.Date = date.String()
		appt.Time = t.String()
		if err := tx.Save(&appt).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Cancel marks an appointment as cancelled. No gate re-check is needed
// since cancelling relaxes constraints rather than adding them.
func (s *BookingService) Cancel(appointmentID, requesterID string, requesterRole models.Role) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findAppointment(tx, appointmentID, &appt); err != nil {
			return err
		}
		if requesterRole != models.RoleAdmin && appt.PatientID != requesterID {
			return ErrForbidden
		}
		if appt.Status == models.StatusCompleted {
			return fmt.Errorf("%w: completed appointments cannot be cancelled", ErrValidation)
		}

		appt.Status = models.StatusCancelled
		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Complete marks an appointment as completed and upserts its treatment.
// Only the owning doctor may complete. Completing again merges non-empty
// fields over the existing treatment rather than creating a second row.
func (s *BookingService) Complete(appointmentID, doctorID, diagnosis, prescription, notes string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findAppointment(tx, appointmentID, &appt); err != nil {
			return err
		}
		if appt.DoctorID != doctorID {
			return ErrForbidden
		}

		var treatment models.Treatment
		err := tx.Where("appointment_id = ?", appt.ID).First(&treatment).Error
		switch {
		case err == nil:
			if diagnosis != "" {
				treatment.Diagnosis = diagnosis
			}
			if prescription != "" {
				treatment.Prescription = prescription
			}
			if notes != "" {
				treatment.Notes = notes
			}
			if err := tx.Save(&treatment).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			treatment = models.Treatment{
				AppointmentID: appt.ID,
				Diagnosis:     diagnosis,
				Prescription:  prescription,
				Notes:         notes,
			}
			if err := tx.Create(&treatment).Error; err != nil {
				return err
			}
		default:
			return err
		}

		appt.Status = models.StatusCompleted
		if err := tx.Model(&models.Appointment{}).Where("id = ?", appt.ID).
			Update("status", models.StatusCompleted).Error; err != nil {
			return err
		}
		appt.Treatment = &treatment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// AdminEditInput carries the fields an admin may change on an appointment.
// Empty fields keep the current value.
type AdminEditInput struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
	Status    models.AppointmentStatus
}

// AdminEdit applies an admin edit to an appointment. The final doctor, date
// and time run through the same two gates as a fresh booking, excluding the
// appointment's own id.
func (s *BookingService) AdminEdit(appointmentID string, in AdminEditInput) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findAppointment(tx, appointmentID, &appt); err != nil {
			return err
		}

		if in.PatientID != "" {
			appt.PatientID = in.PatientID
		}
		if in.DoctorID != "" {
			appt.DoctorID = in.DoctorID
		}
		if in.Date != "" {
			appt.Date = in.Date
		}
		if in.Time != "" {
			appt.Time = in.Time
		}

		date, t, err := parseDateTime(appt.Date, appt.Time)
		if err != nil {
			return err
		}
		if err := findDoctor(tx, appt.DoctorID); err != nil {
			return err
		}
		if err := runGates(tx, appt.DoctorID, date, t, appt.ID); err != nil {
			return err
		}

		if in.Status != "" {
			if !models.ValidStatus(in.Status) {
				return fmt.Errorf("%w: invalid status %q", ErrValidation, in.Status)
			}
			appt.Status = in.Status
		}

		if err := tx.Save(&appt).Error; err != nil {
			if IsDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Slots returns the bookable slot start times for a doctor on a date. This
// is the display path; Book re-validates the chosen slot at write time.
func (s *BookingService) Slots(doctorID, dateStr string, slotMinutes int) ([]scheduling.TimeOfDay, error) {
	date, err := scheduling.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := findDoctor(s.db, doctorID); err != nil {
		return nil, err
	}

	gen := &scheduling.Generator{
		Availability: availabilityStore{s.db},
		Appointments: appointmentStore{s.db},
	}
	return gen.Slots(doctorID, date, slotMinutes)
}

// runGates runs the availability gate and the conflict gate in order. The
// two are independent: a time can be inside a window yet conflict, or be
// conflict-free yet outside every window.
func runGates(tx *gorm.DB, doctorID string, date scheduling.Date, t scheduling.TimeOfDay, excludeID string) error {
	windows, err := availabilityStore{tx}.WindowsFor(doctorID, date.DayOfWeek())
	if err != nil {
		return err
	}
	if !scheduling.IsAvailable(windows, t) {
		return ErrNotAvailable
	}

	checker := &scheduling.Checker{Appointments: appointmentStore{tx}}
	conflict, err := checker.HasConflict(doctorID, date, t, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrConflict
	}
	return nil
}

func parseDateTime(dateStr, timeStr string) (scheduling.Date, scheduling.TimeOfDay, error) {
	date, err := scheduling.ParseDate(dateStr)
	if err != nil {
		return scheduling.Date{}, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	t, err := scheduling.ParseTimeOfDay(timeStr)
	if err != nil {
		return scheduling.Date{}, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return date, t, nil
}

func findDoctor(tx *gorm.DB, doctorID string) error {
	var doctor models.User
	err := tx.Where("id = ? AND role = ?", doctorID, models.RoleDoctor).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
		}
		return err
	}
	return nil
}

func findAppointment(tx *gorm.DB, appointmentID string, appt *models.Appointment) error {
	err := tx.First(appt, "id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
		}
		return err
	}
	return nil
}
