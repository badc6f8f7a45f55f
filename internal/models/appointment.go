package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "Booked"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a scheduled consultation. Date and Time are naive
// single-timezone values stored in the external text formats ("YYYY-MM-DD",
// "HH:MM"); the scheduling package parses them for all comparisons.
//
// The composite unique index hardens the exact-equal double-booking race
// beyond the guard-band check that runs inside every booking transaction.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index;uniqueIndex:idx_doctor_slot" json:"doctorId"`
	Date      string            `gorm:"size:10;index;uniqueIndex:idx_doctor_slot" json:"date"`
	Time      string            `gorm:"size:5;uniqueIndex:idx_doctor_slot" json:"time"`
	Status    AppointmentStatus `gorm:"size:20;default:'Booked'" json:"status"`

	// Relations
	Patient   User       `gorm:"foreignKey:PatientID" json:"-"`
	Doctor    User       `gorm:"foreignKey:DoctorID" json:"-"`
	Treatment *Treatment `gorm:"foreignKey:AppointmentID" json:"treatment,omitempty"`
}

// Treatment holds the outcome a doctor records when completing an
// appointment. One row per appointment; repeated completions merge fields.
type Treatment struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Diagnosis     string `gorm:"type:text" json:"diagnosis"`
	Prescription  string `gorm:"type:text" json:"prescription"`
	Notes         string `gorm:"type:text" json:"notes"`
}
