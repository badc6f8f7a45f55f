package services

import (
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"

	"gorm.io/gorm"
)

// availabilityStore adapts the availability_windows table to the
// scheduling.AvailabilityStore contract.
type availabilityStore struct {
	db *gorm.DB
}

func (s availabilityStore) WindowsFor(doctorID string, dayOfWeek int) ([]scheduling.Window, error) {
	var rows []models.AvailabilityWindow
	err := s.db.
		Where("doctor_id = ? AND day_of_week = ?", doctorID, dayOfWeek).
		Order("created_at asc, start_time asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	windows := make([]scheduling.Window, 0, len(rows))
	for _, row := range rows {
		start, err := scheduling.ParseTimeOfDay(row.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := scheduling.ParseTimeOfDay(row.EndTime)
		if err != nil {
			return nil, err
		}
		windows = append(windows, scheduling.Window{Start: start, End: end})
	}
	return windows, nil
}

// appointmentStore adapts the appointments table to the
// scheduling.AppointmentStore contract. Status is deliberately not
// filtered: cancelled appointments keep blocking until an admin deletes
// the row.
type appointmentStore struct {
	db *gorm.DB
}

func (s appointmentStore) BookedTimes(doctorID string, date scheduling.Date) ([]scheduling.BookedTime, error) {
	var rows []models.Appointment
	err := s.db.
		Where("doctor_id = ? AND date = ?", doctorID, date.String()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	booked := make([]scheduling.BookedTime, 0, len(rows))
	for _, row := range rows {
		t, err := scheduling.ParseTimeOfDay(row.Time)
		if err != nil {
			return nil, err
		}
		booked = append(booked, scheduling.BookedTime{AppointmentID: row.ID, Time: t})
	}
	return booked, nil
}
