package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gnoa_membership_go/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionDuration = 7 * 24 * time.Hour
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

// dummyHash is compared when the email does not match any user, so a login
// attempt takes the same time whether or not the account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked")
)

// generateSessionToken creates a cryptographically random session token
func generateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// AuthenticateUser checks credentials and enforces the lockout policy.
// Failed attempts are counted per user; crossing the threshold locks the
// account for a cooldown period. A manual lock by an admin holds until an
// admin clears it.
func AuthenticateUser(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a bcrypt comparison anyway.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.IsLocked {
		return nil, ErrAccountLocked
	}
	if user.LockoutUntil != nil && user.LockoutUntil.After(time.Now()) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if err := recordFailedLogin(db, &user); err != nil {
			log.Printf("[AUTH] Failed to record failed login for %s: %v", user.Email, err)
		}
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"lockout_until":         nil,
		"last_login_at":         now,
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Printf("[AUTH] Failed to reset login counters for %s: %v", user.Email, err)
	}
	user.FailedLoginAttempts = 0
	user.LockoutUntil = nil
	user.LastLoginAt = &now

	return &user, nil
}

func recordFailedLogin(db *gorm.DB, user *models.User) error {
	attempts := user.FailedLoginAttempts + 1
	updates := map[string]interface{}{
		"failed_login_attempts": attempts,
	}
	if attempts >= maxFailedLogins {
		until := time.Now().Add(lockoutDuration)
		updates["lockout_until"] = until
		log.Printf("[AUTH] Account %s locked out until %s after %d failed attempts",
			user.Email, until.Format(time.RFC3339), attempts)
	}
	return db.Model(user).Updates(updates).Error
}

// CreateSession creates a new session for a user
func CreateSession(db *gorm.DB, userID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}

	session := models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(sessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := db.Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// ValidateSession looks up a session token and returns its user. Expired
// sessions and sessions of locked accounts are rejected; a locked account's
// sessions are removed so the lock takes effect immediately.
func ValidateSession(db *gorm.DB, token string) (*models.User, error) {
	var session models.Session
	err := db.Preload("User").Where("token = ?", token).First(&session).Error
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		_ = db.Delete(&session).Error
		return nil, gorm.ErrRecordNotFound
	}

	if session.User.IsLocked {
		if err := DeleteUserSessions(db, session.UserID); err != nil {
			log.Printf("[AUTH] Failed to purge sessions of locked user %s: %v", session.UserID, err)
		}
		return nil, ErrAccountLocked
	}

	return &session.User, nil
}

// DeleteSession removes a session by token (logout)
func DeleteSession(db *gorm.DB, token string) error {
	return db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteUserSessions removes every session of a user
func DeleteUserSessions(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

// CleanupExpiredSessions removes expired sessions, returning the count
func CleanupExpiredSessions(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
