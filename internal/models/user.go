package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents a patient, doctor or admin account. Patients and doctors
// share this table; the role-specific columns are simply unused for the
// other roles.
type User struct {
	BaseModel
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName string `gorm:"size:100" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`
	Role      Role   `gorm:"size:20;default:'patient'" json:"role"`

	// Patient fields
	Age     *int   `json:"age,omitempty"`
	Gender  string `gorm:"size:20" json:"gender,omitempty"`
	Contact string `gorm:"size:50" json:"contact,omitempty"`

	// Doctor fields
	Specialization   string `gorm:"size:150;index" json:"specialization,omitempty"`
	AvailabilityNote string `gorm:"type:text" json:"availabilityNote,omitempty"` // free-text note shown to patients

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken       `gorm:"foreignKey:UserID" json:"-"`
	AvailabilityWindows []AvailabilityWindow `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
	DoctorAppointments  []Appointment        `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment        `gorm:"foreignKey:PatientID" json:"-"`
	Records             []PatientRecord      `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             Role      `json:"role"`
	Age              *int      `json:"age,omitempty"`
	Gender           string    `json:"gender,omitempty"`
	Contact          string    `json:"contact,omitempty"`
	Specialization   string    `json:"specialization,omitempty"`
	AvailabilityNote string    `json:"availabilityNote,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		Age:              u.Age,
		Gender:           u.Gender,
		Contact:          u.Contact,
		Specialization:   u.Specialization,
		AvailabilityNote: u.AvailabilityNote,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
