package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Province represents a top-level geographic division
type Province struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Districts []District `gorm:"foreignKey:ProvinceID" json:"districts,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Province) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Province) TableName() string {
	return "provinces"
}
