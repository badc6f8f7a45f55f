package models

// AvailabilityWindow is a recurring weekly interval during which a doctor
// accepts appointments. DayOfWeek is 0=Monday .. 6=Sunday. StartTime and
// EndTime are "HH:MM" wall-clock strings with StartTime < EndTime, validated
// when the window is entered. Multiple windows per (doctor, day) may exist
// and may overlap; the store trusts them as entered.
type AvailabilityWindow struct {
	BaseModel
	DoctorID  string `gorm:"size:36;index:idx_doctor_day" json:"doctorId"`
	DayOfWeek int    `gorm:"index:idx_doctor_day" json:"dayOfWeek"`
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`

	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}
