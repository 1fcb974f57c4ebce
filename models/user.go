package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:user" json:"role"` // user, admin

	// IsLocked is set by an administrator; locked users are signed out on
	// their next request and cannot log in until unlocked.
	IsLocked bool `gorm:"not null;default:false" json:"is_locked"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil        *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole checks if the role is valid
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// UserPatch is a partial update to a user's administrative attributes.
// Nil fields are left untouched.
type UserPatch struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsLocked *bool   `json:"is_locked,omitempty"`
}

// Apply merges the patch into the user, returning the set of changed columns.
func (p UserPatch) Apply(u *User) map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Name != nil && *p.Name != u.Name {
		u.Name = *p.Name
		updates["name"] = *p.Name
	}
	if p.Role != nil && *p.Role != u.Role {
		u.Role = *p.Role
		updates["role"] = *p.Role
	}
	if p.IsLocked != nil && *p.IsLocked != u.IsLocked {
		u.IsLocked = *p.IsLocked
		updates["is_locked"] = *p.IsLocked
	}
	return updates
}
