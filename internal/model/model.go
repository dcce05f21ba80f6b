package model

// Role values found on account records.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Account is the identity record owned by the directory. Specialty is only
// set for doctors that declared one.
type Account struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email,omitempty"`
	Role      string  `json:"role"`
	Specialty *string `json:"specialty,omitempty"`
	Image     string  `json:"image,omitempty"`
}

type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Image     string `json:"image"`
}

// Appointment keeps a copy of the doctor fields taken at booking time.
type Appointment struct {
	ID          string `json:"id"`
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
	DoctorID    string `json:"doctorId"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Specialty   string `json:"specialty"`
	Status      Status `json:"status"`
}

// Session is the authenticated user booking the appointment.
type Session struct {
	UserID string
	Name   string
}
