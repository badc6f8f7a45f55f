package services

import (
	"fmt"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"

	"gorm.io/gorm"
)

// WindowInput is one recurring window as entered on the doctor edit form.
type WindowInput struct {
	DayOfWeek int    `json:"dayOfWeek" binding:"min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// ReplaceAvailability validates and replaces the full set of recurring
// windows for a doctor: all existing windows are deleted and the given ones
// inserted, in one transaction. Validation is start < end per window; no
// overlap check is performed, windows are trusted as entered.
func (s *BookingService) ReplaceAvailability(doctorID string, inputs []WindowInput) ([]models.AvailabilityWindow, error) {
	windows := make([]models.AvailabilityWindow, 0, len(inputs))
	for _, in := range inputs {
		if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
			return nil, fmt.Errorf("%w: day_of_week %d out of range", ErrValidation, in.DayOfWeek)
		}
		start, err := scheduling.ParseTimeOfDay(in.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		end, err := scheduling.ParseTimeOfDay(in.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if !(scheduling.Window{Start: start, End: end}).Valid() {
			return nil, fmt.Errorf("%w: start time must be before end time for day %d", ErrValidation, in.DayOfWeek)
		}
		windows = append(windows, models.AvailabilityWindow{
			DoctorID:  doctorID,
			DayOfWeek: in.DayOfWeek,
			StartTime: start.String(),
			EndTime:   end.String(),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findDoctor(tx, doctorID); err != nil {
			return err
		}
		if err := tx.Where("doctor_id = ?", doctorID).
			Delete(&models.AvailabilityWindow{}).Error; err != nil {
			return err
		}
		for i := range windows {
			if err := tx.Create(&windows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

// WindowsForDoctor returns all recurring windows for a doctor, ordered by
// weekday then start time, for display.
func (s *BookingService) WindowsForDoctor(doctorID string) ([]models.AvailabilityWindow, error) {
	if err := findDoctor(s.db, doctorID); err != nil {
		return nil, err
	}
	var windows []models.AvailabilityWindow
	err := s.db.Where("doctor_id = ?", doctorID).
		Order("day_of_week asc, start_time asc").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}
