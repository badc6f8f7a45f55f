package handlers

import (
	"strconv"

	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DoctorHandler handles doctor schedule requests: weekly availability and
// bookable slots.
type DoctorHandler struct {
	DB      *gorm.DB
	Booking *services.BookingService
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db, Booking: services.NewBookingService(db)}
}

// GetAvailability handles fetching a doctor's weekly availability windows.
func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	windows, err := h.Booking.WindowsForDoctor(doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Availability fetched successfully", windows)
}

// SetAvailabilityRequest represents the request body for replacing a doctor's
// weekly availability. The windows replace everything previously stored.
type SetAvailabilityRequest struct {
	Windows []services.WindowInput `json:"windows" binding:"required,dive"`
}

// SetAvailability handles replacing a doctor's weekly availability (admin).
func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	var req SetAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	windows, err := h.Booking.ReplaceAvailability(doctorID, req.Windows)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Availability updated successfully", windows)
}

// GetSlots handles fetching the open slots for a doctor on a given date.
// Query params: date=YYYY-MM-DD (required), length=minutes (optional).
func (h *DoctorHandler) GetSlots(c *gin.Context) {
	doctorID := c.Param("id")

	dateStr := c.Query("date")
	if dateStr == "" {
		utils.BadRequest(c, "Query parameter 'date' is required")
		return
	}

	slotMinutes := scheduling.DefaultSlotMinutes
	if lengthStr := c.Query("length"); lengthStr != "" {
		length, err := strconv.Atoi(lengthStr)
		if err != nil || length <= 0 {
			utils.BadRequest(c, "Query parameter 'length' must be a positive integer")
			return
		}
		slotMinutes = length
	}

	slots, err := h.Booking.Slots(doctorID, dateStr, slotMinutes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	times := make([]string, len(slots))
	for i, slot := range slots {
		times[i] = slot.String()
	}

	utils.Success(c, "Slots fetched successfully", gin.H{
		"date":        dateStr,
		"slotMinutes": slotMinutes,
		"slots":       times,
	})
}
