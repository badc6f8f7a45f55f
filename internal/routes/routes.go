package routes

import (
	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	recordHandler := handlers.NewRecordHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Patient lists for doctors/admins
			userRoutes.GET("/doctor-patients", userHandler.GetDoctorPatients)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Doctor directory and schedules
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", userHandler.GetDoctors)
			doctorRoutes.GET("/specializations", userHandler.GetSpecializations)
			doctorRoutes.GET("/:id/availability", doctorHandler.GetAvailability)
			doctorRoutes.GET("/:id/slots", doctorHandler.GetSlots)

			doctorRoutes.PUT("/:id/availability",
				middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.SetAvailability)
			doctorRoutes.GET("/:id/appointments",
				middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.GetAppointmentsForDoctor)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CreateAppointment)

			// Role-scoped listing; authorization for single reads is in the handler
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			appointmentRoutes.PATCH("/:id/reschedule",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.RescheduleAppointment)
			appointmentRoutes.PATCH("/:id/cancel",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CancelAppointment)
			appointmentRoutes.PATCH("/:id/complete",
				middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.CompleteAppointment)

			appointmentRoutes.PATCH("/:id/status",
				middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PUT("/:id",
				middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.AdminEditAppointment)
			appointmentRoutes.DELETE("/:id",
				middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.DeleteAppointment)
		}

		// Patient-centric views
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("/:id/appointments",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.GetAppointmentsForPatient)
			patientRoutes.GET("/:id/history", appointmentHandler.GetTreatmentHistory)
			patientRoutes.GET("/:id/records", recordHandler.GetRecordsForPatient)
		}

		// Patient record uploads and downloads
		recordRoutes := private.Group("/records")
		{
			recordRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RolePatient), recordHandler.UploadRecord)
			recordRoutes.GET("/:id/download", recordHandler.DownloadRecord)
			recordRoutes.DELETE("/:id", recordHandler.DeleteRecord)
		}

		// Admin dashboard
		adminGroup := private.Group("/admin")
		adminGroup.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminGroup.GET("/stats", userHandler.GetStats)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
