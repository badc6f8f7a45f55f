package models

// PatientRecord represents a medical history file a patient uploads, stored
// as binary data in the database. FileName is the generated server-side
// name, OriginalName the name the file was uploaded with. An appointment
// booked together with an upload links to the record.
type PatientRecord struct {
	BaseModel
	PatientID    string `gorm:"size:36;index" json:"patientId"`
	FileName     string `gorm:"size:255;not null" json:"fileName"`
	OriginalName string `gorm:"size:255" json:"originalName"`
	FileType     string `gorm:"size:100" json:"fileType"`                // MIME type of the file
	FileData     []byte `gorm:"type:longblob;not null" json:"-"`         // File content as binary data (longblob for MySQL)
	Patient      User   `gorm:"foreignKey:PatientID" json:"-"`
}
