package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Institution represents a workplace. Standard categories scope an
// institution by category, province, and district; direct-location
// categories scope by category alone, so ProvinceID and DistrictID are
// nullable.
type Institution struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CategoryID string   `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	ProvinceID *string   `gorm:"type:uuid;index" json:"province_id,omitempty"`
	Province   *Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`

	DistrictID *string   `gorm:"type:uuid;index" json:"district_id,omitempty"`
	District   *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`

	Name     string `gorm:"size:200;not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (i *Institution) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Institution) TableName() string {
	return "institutions"
}
