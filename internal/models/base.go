package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// Database connection instance
var DB *gorm.DB

// InitDB initializes database connection
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var err error

	// Connect to MySQL database
	DB, err = gorm.Open(mysql.Open(config.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(DB); err != nil {
		return nil, err
	}

	return DB, nil
}

// Migrate runs auto-migration for all application models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&AvailabilityWindow{},
		&Appointment{},
		&Treatment{},
		&PatientRecord{},
	)
}

// EnsureDefaultAdmin creates the bootstrap admin account if no user with
// the given email exists yet.
func EnsureDefaultAdmin(db *gorm.DB, email, password string) error {
	var existing User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	admin := User{
		Email:     email,
		FirstName: "Super",
		LastName:  "Admin",
		Role:      RoleAdmin,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	return db.Create(&admin).Error
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN string
}
