package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecordHandler handles patient record uploads and downloads.
type RecordHandler struct {
	DB *gorm.DB
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{DB: db}
}

// recordSummary is the record metadata returned to clients, without FileData.
type recordSummary struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patientId"`
	FileName     string    `json:"fileName"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	CreatedAt    time.Time `json:"createdAt"`
}

func summarize(r models.PatientRecord) recordSummary {
	return recordSummary{
		ID:           r.ID,
		PatientID:    r.PatientID,
		FileName:     r.FileName,
		OriginalName: r.OriginalName,
		FileType:     r.FileType,
		CreatedAt:    r.CreatedAt,
	}
}

// UploadRecord handles a patient uploading a medical history file, stored as
// binary data in the database.
func (h *RecordHandler) UploadRecord(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Patient ID not found in token")
		return
	}

	file, header, err := c.Request.FormFile("record")
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}
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

	record := models.PatientRecord{
		PatientID:    patientID,
		FileName:     fmt.Sprintf("%s_%d_%s", patientID, time.Now().Unix(), filepath.Base(header.Filename)),
		OriginalName: header.Filename,
		FileType:     header.Header.Get("Content-Type"),
		FileData:     fileData,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to store record: "+err.Error())
		return
	}

	utils.Created(c, "Record uploaded successfully", summarize(record))
}

// GetRecordsForPatient handles listing a patient's records.
// Accessible by the patient themselves, doctors, and admins.
func (h *RecordHandler) GetRecordsForPatient(c *gin.Context) {
	patientID := c.Param("id")

	requesterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	requesterRole, _ := middleware.GetUserRoleFromContext(c)

	if requesterRole == models.RolePatient && requesterID != patientID {
		utils.Forbidden(c, "You are not authorized to view this patient's records")
		return
	}

	var records []models.PatientRecord
	err := h.DB.Select("id", "patient_id", "file_name", "original_name", "file_type", "created_at").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&records).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch records: "+err.Error())
		return
	}

	summaries := make([]recordSummary, len(records))
	for i, r := range records {
		summaries[i] = summarize(r)
	}

	utils.Success(c, "Records fetched successfully", summaries)
}

// DownloadRecord handles serving a record's file data.
// Accessible by the owning patient, doctors, and admins.
func (h *RecordHandler) DownloadRecord(c *gin.Context) {
	recordID := c.Param("id")

	requesterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	requesterRole, _ := middleware.GetUserRoleFromContext(c)

	var record models.PatientRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if requesterRole == models.RolePatient && record.PatientID != requesterID {
		utils.Forbidden(c, "You are not authorized to download this record")
		return
	}

	c.Writer.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.OriginalName))
	c.Data(http.StatusOK, record.FileType, record.FileData)
}

// DeleteRecord handles removing a record.
// Accessible by the owning patient or an admin.
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID := c.Param("id")

	requesterID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	requesterRole, _ := middleware.GetUserRoleFromContext(c)

	var record models.PatientRecord
	if err := h.DB.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if requesterRole != models.RoleAdmin && record.PatientID != requesterID {
		utils.Forbidden(c, "You are not authorized to delete this record")
		return
	}

	if err := h.DB.Delete(&models.PatientRecord{}, "id = ?", record.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete record: "+err.Error())
		return
	}

	utils.Success(c, "Record deleted successfully", nil)
}
