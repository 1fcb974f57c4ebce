package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Designation input modes
const (
	DesignationInputList = "list" // designation chosen from DesignationOption rows
	DesignationInputText = "text" // designation entered as free text
)

// Category represents a work category. The classification flags drive the
// cascading selection flow: direct-location categories skip province and
// district entirely, and text-input categories accept a free-text
// designation instead of a constrained list.
type Category struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name             string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsDirectLocation bool   `gorm:"not null;default:false" json:"is_direct_location"`
	DesignationInput string `gorm:"not null;default:list" json:"designation_input"` // list, text
	IsActive         bool   `gorm:"not null;default:true" json:"is_active"`

	// Relationships
	Institutions []Institution       `gorm:"foreignKey:CategoryID" json:"institutions,omitempty"`
	Designations []DesignationOption `gorm:"foreignKey:CategoryID" json:"designations,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// UsesTextDesignation reports whether designation is free text for this category
func (c *Category) UsesTextDesignation() bool {
	return c.DesignationInput == DesignationInputText
}

// TableName specifies the table name
func (Category) TableName() string {
	return "categories"
}
