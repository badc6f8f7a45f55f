package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB      *gorm.DB
	Booking *services.BookingService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Booking: services.NewBookingService(db)}
}

// allowedRecordExtensions are the file types a patient may attach when booking.
var allowedRecordExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// CreateAppointmentRequest represents the request body for booking an appointment.
// Sent either as JSON or as multipart form fields when a record file is attached.
type CreateAppointmentRequest struct {
	DoctorID string `json:"doctorId" form:"doctorId" binding:"required,uuid"`
	Date     string `json:"date" form:"date" binding:"required"`
	Time     string `json:"time" form:"time" binding:"required"`
	// PatientID lets an admin book on a patient's behalf; ignored otherwise.
	PatientID string `json:"patientId" form:"patientId"`
}

// CreateAppointment handles booking a new appointment for the authenticated
// patient, with an optional medical record file in the "record" form field.
// Admins may book for any patient by supplying patientId.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Patient ID not found in token")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	// ShouldBind picks JSON or multipart form binding from the Content-Type.
	var req CreateAppointmentRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := utils.Validate(&req); err != nil {
		utils.BadRequest(c, "Validation failed: "+utils.FormatValidationError(err))
		return
	}

	if userRole == models.RoleAdmin && req.PatientID != "" {
		patientID = req.PatientID
	}

	var record *services.RecordRef
	if file, header, err := c.Request.FormFile("record"); err == nil {
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedRecordExtensions[ext] {
			utils.BadRequest(c, "Unsupported record file type: "+ext)
			return
		}

		fileData, err := io.ReadAll(file)
		if err != nil {
			utils.InternalServerError(c, "Error reading file content: "+err.Error())
			return
		}

		record = &services.RecordRef{
			FileName:     fmt.Sprintf("%s_%d_%s", patientID, time.Now().Unix(), filepath.Base(header.Filename)),
			OriginalName: header.Filename,
			FileType:     header.Header.Get("Content-Type"),
			Data:         fileData,
		}
	}

	appt, err := h.Booking.Book(patientID, req.DoctorID, req.Date, req.Time, record)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// GetAppointments handles fetching appointments for the authenticated user,
// scoped by role: patients see their own, doctors see their schedule, admins
// see everything.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Preload("Treatment").
		Order("date asc, time asc")

	switch userRole {
	case models.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	case models.RoleAdmin:
		// No filter.
	default:
		utils.Forbidden(c, "Unknown role")
		return
	}

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(models.AppointmentStatus(status)) {
			utils.BadRequest(c, "Invalid status filter: "+status)
			return
		}
		query = query.Where("status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment.
// Accessible by the patient, the doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appt models.Appointment
	err := h.DB.Preload("Patient").Preload("Doctor").Preload("Treatment").
		First(&appt, "id = ?", appointmentID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if userRole != models.RoleAdmin && appt.PatientID != userID && appt.DoctorID != userID {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}

// RescheduleAppointmentRequest represents the request body for moving an
// appointment to a new date and time.
type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// RescheduleAppointment handles moving an appointment.
// Accessible by the owning patient or an admin.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Booking.Reschedule(appointmentID, userID, userRole, req.Date, req.Time)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appt)
}

// CancelAppointment handles cancelling an appointment.
// Accessible by the owning patient or an admin.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	appt, err := h.Booking.Cancel(appointmentID, userID, userRole)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}

// CompleteAppointmentRequest represents the treatment details a doctor records
// when completing an appointment.
type CompleteAppointmentRequest struct {
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// CompleteAppointment handles marking an appointment completed and recording
// its treatment. Only the assigned doctor may complete an appointment.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Doctor ID not found in token")
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appt, err := h.Booking.Complete(appointmentID, doctorID, req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment completed successfully", appt)
}

// AdminEditAppointmentRequest represents the request body for an admin edit.
// Empty fields keep the current values.
type AdminEditAppointmentRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
}

// AdminEditAppointment handles editing any field of an appointment (admin).
func (h *AppointmentHandler) AdminEditAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req AdminEditAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appt, err := h.Booking.AdminEdit(appointmentID, services.AdminEditInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    models.AppointmentStatus(req.Status),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment updated successfully", appt)
}

// UpdateStatusRequest represents the request body for an admin status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAppointmentStatus handles setting an appointment's status (admin).
// Schedule fields are untouched, so the same gates re-run against the
// current date and time.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Booking.AdminEdit(appointmentID, services.AdminEditInput{
		Status: models.AppointmentStatus(req.Status),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appt)
}

// DeleteAppointment handles permanently removing an appointment (admin).
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", appt.ID).Delete(&models.Treatment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Appointment{}, "id = ?", appt.ID).Error
	}); err != nil {
		utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment deleted successfully", nil)
}

// GetAppointmentsForDoctor handles fetching all appointments of one doctor (admin).
func (h *AppointmentHandler) GetAppointmentsForDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var appointments []models.Appointment
	err := h.DB.Preload("Patient").Preload("Treatment").
		Where("doctor_id = ?", doctorID).
		Order("date asc, time asc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentsForPatient handles fetching all appointments of one patient.
// Accessible by doctors and admins.
func (h *AppointmentHandler) GetAppointmentsForPatient(c *gin.Context) {
	patientID := c.Param("id")

	var appointments []models.Appointment
	err := h.DB.Preload("Doctor").Preload("Treatment").
		Where("patient_id = ?", patientID).
		Order("date asc, time asc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetTreatmentHistory handles fetching a patient's completed appointments with
// their treatments, newest first.
func (h *AppointmentHandler) GetTreatmentHistory(c *gin.Context) {
	patientID := c.Param("id")

	requesterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	requesterRole, _ := middleware.GetUserRoleFromContext(c)

	if requesterRole == models.RolePatient && requesterID != patientID {
		utils.Forbidden(c, "You are not authorized to view this patient's history")
		return
	}

	var appointments []models.Appointment
	err := h.DB.Preload("Doctor").Preload("Treatment").
		Where("patient_id = ? AND status = ?", patientID, models.StatusCompleted).
		Order("date desc, time desc").
		Find(&appointments).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch treatment history: "+err.Error())
		return
	}

	utils.Success(c, "Treatment history fetched successfully", appointments)
}
