package handlers

import (
	"time"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles user-related requests (typically admin operations).
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// CreateUserRequest represents the request body for creating a user by an admin.
// Specialization is required when creating a doctor.
type CreateUserRequest struct {
	FirstName        string `json:"firstName" binding:"required"`
	LastName         string `json:"lastName" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	Role             string `json:"role" binding:"required,oneof=patient doctor admin"`
	Age              *int   `json:"age"`
	Gender           string `json:"gender"`
	Contact          string `json:"contact"`
	Specialization   string `json:"specialization"`
	AvailabilityNote string `json:"availabilityNote"`
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if models.Role(req.Role) == models.RoleDoctor && req.Specialization == "" {
		utils.BadRequest(c, "Specialization is required for doctors")
		return
	}

	user := models.User{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Role:             models.Role(req.Role),
		Age:              req.Age,
		Gender:           req.Gender,
		Contact:          req.Contact,
		Specialization:   req.Specialization,
		AvailabilityNote: req.AvailabilityNote,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		if services.IsDuplicateKey(err) {
			utils.Conflict(c, "A user with this email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles fetching users (admin), optionally filtered by a search
// string over name/email/specialization and a role.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Order("created_at desc")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR specialization LIKE ?",
			like, like, like, like,
		)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
type UpdateUserRequest struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email,omitempty"`
	Password         string `json:"password,omitempty"`
	Age              *int   `json:"age"`
	Gender           string `json:"gender"`
	Contact          string `json:"contact"`
	Specialization   string `json:"specialization"`
	AvailabilityNote string `json:"availabilityNote"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil { // Use ShouldBindJSON for partial updates
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.Contact != "" {
		user.Contact = req.Contact
	}
	if req.Specialization != "" {
		user.Specialization = req.Specialization
	}
	if req.AvailabilityNote != "" {
		user.AvailabilityNote = req.AvailabilityNote
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			utils.InternalServerError(c, "Failed to hash password: "+err.Error())
			return
		}
	}

	if err := h.DB.Save(&user).Error; err != nil {
		if services.IsDuplicateKey(err) {
			utils.Conflict(c, "Email is already in use")
			return
		}
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}

// GetDoctors handles fetching all users with the doctor role, optionally
// filtered by specialization. Accessible to patients for booking.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Where("role = ?", models.RoleDoctor).Order("created_at desc")
	if spec := c.Query("spec"); spec != "" {
		query = query.Where("specialization LIKE ?", "%"+spec+"%")
	}

	var doctors []models.User
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitizedDoctors := make([]models.UserSanitized, len(doctors))
	for i, doctor := range doctors {
		sanitizedDoctors[i] = doctor.Sanitize()
	}

	utils.Success(c, "Doctors fetched successfully", sanitizedDoctors)
}

// GetSpecializations returns the distinct doctor specializations, for the
// search dropdown.
func (h *UserHandler) GetSpecializations(c *gin.Context) {
	var specs []string
	err := h.DB.Model(&models.User{}).
		Where("role = ? AND specialization <> ''", models.RoleDoctor).
		Distinct("specialization").
		Order("specialization asc").
		Pluck("specialization", &specs).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch specializations: "+err.Error())
		return
	}

	utils.Success(c, "Specializations fetched successfully", specs)
}

// GetDoctorPatients handles fetching all patients.
// This endpoint is accessible to doctors and admins.
func (h *UserHandler) GetDoctorPatients(c *gin.Context) {
	_, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleDoctor && userRole != models.RoleAdmin {
		utils.Forbidden(c, "Only doctors and admins can view patient lists")
		return
	}

	var patients []models.User
	if err := h.DB.Where("role = ?", models.RolePatient).Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	sanitizedPatients := make([]models.UserSanitized, len(patients))
	for i, patient := range patients {
		sanitizedPatients[i] = patient.Sanitize()
	}

	utils.Success(c, "Patients fetched successfully", sanitizedPatients)
}

// AdminStats is the dashboard summary an admin sees.
type AdminStats struct {
	TotalDoctors         int64 `json:"totalDoctors"`
	TotalPatients        int64 `json:"totalPatients"`
	TotalAppointments    int64 `json:"totalAppointments"`
	UpcomingAppointments int64 `json:"upcomingAppointments"`
}

// GetStats handles the admin dashboard statistics.
func (h *UserHandler) GetStats(c *gin.Context) {
	var stats AdminStats

	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RoleDoctor).Count(&stats.TotalDoctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to count doctors: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.User{}).Where("role = ?", models.RolePatient).Count(&stats.TotalPatients).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}
	if err := h.DB.Model(&models.Appointment{}).Count(&stats.TotalAppointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}
	// Dates are "YYYY-MM-DD" strings, so string comparison orders correctly.
	today := time.Now().Format("2006-01-02")
	if err := h.DB.Model(&models.Appointment{}).Where("date >= ?", today).Count(&stats.UpcomingAppointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to count upcoming appointments: "+err.Error())
		return
	}

	utils.Success(c, "Statistics fetched successfully", stats)
}
