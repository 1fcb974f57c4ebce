package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gnoa_membership_go/models"

	"gorm.io/gorm"
)

var (
	ErrEmailTaken   = errors.New("email already in use")
	ErrLastAdmin    = errors.New("cannot remove the last admin")
	ErrSelfLock     = errors.New("cannot lock your own account")
	ErrSelfDemote   = errors.New("cannot change your own role")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	ErrInvalidRole  = errors.New("invalid role")
	ErrSelfDeletion = errors.New("cannot delete your own account")
)

// CreateUser creates an account with a hashed password
func CreateUser(db *gorm.DB, name, email, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by creation time
func ListUsers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Order("created_at ASC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUserByID fetches a user by ID
func GetUserByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// PatchUser applies a partial update to a user's name, role, or lock state.
// The acting admin cannot lock themselves or change their own role, and the
// last remaining admin cannot be demoted or locked. Locking purges the
// user's sessions so the lock takes effect immediately.
func PatchUser(db *gorm.DB, actor *models.User, userID string, patch models.UserPatch) (*models.User, map[string]interface{}, error) {
	user, err := GetUserByID(db, userID)
	if err != nil {
		return nil, nil, err
	}

	if patch.Role != nil && !models.IsValidRole(*patch.Role) {
		return nil, nil, ErrInvalidRole
	}
	if actor.ID == user.ID {
		if patch.IsLocked != nil && *patch.IsLocked {
			return nil, nil, ErrSelfLock
		}
		if patch.Role != nil && *patch.Role != user.Role {
			return nil, nil, ErrSelfDemote
		}
	}

	demoting := patch.Role != nil && user.Role == models.RoleAdmin && *patch.Role != models.RoleAdmin
	locking := patch.IsLocked != nil && *patch.IsLocked && !user.IsLocked
	if user.IsAdmin() && (demoting || locking) {
		remaining, err := activeAdminCount(db, user.ID)
		if err != nil {
			return nil, nil, err
		}
		if remaining == 0 {
			return nil, nil, ErrLastAdmin
		}
	}

	updates := patch.Apply(user)
	if len(updates) == 0 {
		return user, updates, nil
	}

	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update user: %w", err)
	}

	if locked, ok := updates["is_locked"].(bool); ok && locked {
		if err := DeleteUserSessions(db, user.ID); err != nil {
			log.Printf("[USER] Failed to purge sessions of locked user %s: %v", user.ID, err)
		}
	}
	return user, updates, nil
}

// DeleteUser removes an account. The acting admin cannot delete themselves,
// and the last admin cannot be deleted.
func DeleteUser(db *gorm.DB, actor *models.User, userID string) (*models.User, error) {
	if actor.ID == userID {
		return nil, ErrSelfDeletion
	}

	user, err := GetUserByID(db, userID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		remaining, err := activeAdminCount(db, user.ID)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			return nil, ErrLastAdmin
		}
	}

	if err := DeleteUserSessions(db, user.ID); err != nil {
		log.Printf("[USER] Failed to purge sessions of deleted user %s: %v", user.ID, err)
	}
	if err := db.Delete(user).Error; err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// activeAdminCount counts unlocked admins other than the given user
func activeAdminCount(db *gorm.DB, excludeID string) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("role = ? AND is_locked = ? AND id != ?", models.RoleAdmin, false, excludeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
