package services

import (
	"testing"
	"time"

	"gnoa_membership_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Session{})
	assert.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	user, err := CreateUser(db, "Test User", email, password, models.RoleUser)
	assert.NoError(t, err)
	return user
}

func TestAuthenticateUser(t *testing.T) {
	db := setupAuthTestDB(t)
	createTestUser(t, db, "nurse@gnoa.lk", "correct-horse-battery")

	t.Run("Success", func(t *testing.T) {
		user, err := AuthenticateUser(db, "nurse@gnoa.lk", "correct-horse-battery")
		assert.NoError(t, err)
		assert.Equal(t, "nurse@gnoa.lk", user.Email)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := AuthenticateUser(db, "nurse@gnoa.lk", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := AuthenticateUser(db, "nobody@gnoa.lk", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticateUserLockout(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "lockme@gnoa.lk", "correct-horse-battery")

	for i := 0; i < maxFailedLogins; i++ {
		_, err := AuthenticateUser(db, user.Email, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Crossing the threshold locks the account, even for the right password.
	_, err := AuthenticateUser(db, user.Email, "correct-horse-battery")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Expired cooldown unlocks.
	past := time.Now().Add(-1 * time.Minute)
	assert.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("lockout_until", past).Error)

	authed, err := AuthenticateUser(db, user.Email, "correct-horse-battery")
	assert.NoError(t, err)
	assert.Equal(t, 0, authed.FailedLoginAttempts)
}

func TestAuthenticateUserManualLock(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "locked@gnoa.lk", "correct-horse-battery")

	assert.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_locked", true).Error)

	_, err := AuthenticateUser(db, user.Email, "correct-horse-battery")
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestSessionLifecycle(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "session@gnoa.lk", "correct-horse-battery")

	session, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	validated, err := ValidateSession(db, session.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, validated.ID)

	assert.NoError(t, DeleteSession(db, session.Token))
	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)
}

func TestValidateSessionExpired(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "expired@gnoa.lk", "correct-horse-battery")

	session, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	assert.NoError(t, db.Model(&models.Session{}).Where("id = ?", session.ID).
		Update("expires_at", time.Now().Add(-1*time.Minute)).Error)

	_, err = ValidateSession(db, session.Token)
	assert.Error(t, err)

	// Expired sessions are removed on validation.
	var count int64
	db.Model(&models.Session{}).Where("id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestValidateSessionLockedUserPurged(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "purge@gnoa.lk", "correct-horse-battery")

	session, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	assert.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("is_locked", true).Error)

	_, err = ValidateSession(db, session.Token)
	assert.ErrorIs(t, err, ErrAccountLocked)

	var count int64
	db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupAuthTestDB(t)
	user := createTestUser(t, db, "cleanup@gnoa.lk", "correct-horse-battery")

	live, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)
	stale, err := CreateSession(db, user.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	assert.NoError(t, db.Model(&models.Session{}).Where("id = ?", stale.ID).
		Update("expires_at", time.Now().Add(-1*time.Hour)).Error)

	removed, err := CleanupExpiredSessions(db)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = ValidateSession(db, live.Token)
	assert.NoError(t, err)
}
