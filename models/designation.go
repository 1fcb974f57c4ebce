package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DesignationOption is one entry in a category's constrained designation
// list. Only categories with DesignationInput "list" have rows here;
// text-input categories accept arbitrary designations.
type DesignationOption struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CategoryID string   `gorm:"type:uuid;not null;index:idx_designation_cat_order" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Name      string `gorm:"size:150;not null" json:"name"`
	SortOrder int    `gorm:"not null;default:0;index:idx_designation_cat_order" json:"sort_order"`
	IsActive  bool   `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (d *DesignationOption) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (DesignationOption) TableName() string {
	return "designation_options"
}
