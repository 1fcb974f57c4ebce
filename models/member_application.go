package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application status. Historical data used a mix of literals ("pending",
// "approved", "Verified"); CanonicalStatus folds them into this set and all
// comparisons go through the constants.
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
	StatusRejected = "Rejected"
)

// MemberApplication is one membership application row. Column names match
// the original form_responses table so existing data remains readable.
type MemberApplication struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Identity
	NameInFull    string `gorm:"column:name_in_full;not null" json:"name_in_full"`
	Email         string `gorm:"not null" json:"email"`
	NICNumber     string `gorm:"column:nic_number;not null;index" json:"nic_number"`
	DOB           string `gorm:"column:dob" json:"dob"`
	Gender        string `json:"gender"`
	MaritalStatus string `gorm:"column:marital_status" json:"marital_status"`

	// Contact
	PhoneNumberPersonal string `gorm:"column:phone_number_personal" json:"phone_number_personal"`
	WhatsappNumber      string `gorm:"column:whatsapp_number" json:"whatsapp_number"`

	// Addresses
	OfficialAddress string `gorm:"column:official_address" json:"official_address"`
	PersonalAddress string `gorm:"column:personal_address" json:"personal_address"`

	// Work
	Category          string `gorm:"index" json:"category"`
	Designation       string `json:"designation"`
	ProvinceWorkPlace string `gorm:"column:province_work_place" json:"province_work_place"`
	DistrictWorkPlace string `gorm:"column:district_work_place" json:"district_work_place"`
	RDHS              string `gorm:"column:rdhs" json:"rdhs"`
	Institution       string `gorm:"column:type_of_organization_hospital" json:"type_of_organization_hospital"`

	// Employment
	FirstAppointmentDate       string `gorm:"column:first_appointment_date" json:"first_appointment_date"`
	EmploymentNumber           string `gorm:"column:employment_number_salary_number" json:"employment_number_salary_number"`
	CollegeOfNursing           string `gorm:"column:college_of_nursing_university" json:"college_of_nursing_university"`
	NursingCouncilRegistration string `gorm:"column:nursing_council_registration_number" json:"nursing_council_registration_number"`
	EducationalQualifications  string `gorm:"column:educational_qualifications;type:text" json:"educational_qualifications"`
	Specialties                string `gorm:"column:specialties_special_trainings;type:text" json:"specialties_special_trainings"`

	// Signature: storage key of the uploaded image, or the original
	// external URL when the row predates in-app storage.
	Signature string `gorm:"type:text" json:"signature,omitempty"`

	Status string `gorm:"not null;default:Pending;index" json:"status"`

	// Review stamps
	ReviewedByID *string    `gorm:"type:uuid" json:"reviewed_by_id,omitempty"`
	ReviewedBy   *User      `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	// Request metadata
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID and normalize status
func (m *MemberApplication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = StatusPending
	} else {
		m.Status = CanonicalStatus(m.Status)
	}
	return nil
}

// TableName specifies the table name
func (MemberApplication) TableName() string {
	return "form_responses"
}

// CanonicalStatus maps historical status literals onto the canonical set.
// Unrecognized values fold to Pending.
func CanonicalStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "verified", "approved":
		return StatusVerified
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}

// IsValidStatus checks if the status is one of the canonical values
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}
