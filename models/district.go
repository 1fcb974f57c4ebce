package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// District represents a district within a province
type District struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProvinceID string   `gorm:"type:uuid;not null;index;uniqueIndex:idx_district_prov_name" json:"province_id"`
	Province   Province `gorm:"foreignKey:ProvinceID" json:"province,omitempty"`

	Name     string `gorm:"size:100;not null;uniqueIndex:idx_district_prov_name" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (District) TableName() string {
	return "districts"
}
