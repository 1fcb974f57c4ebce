package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"gnoa_membership_go/config"
	"gnoa_membership_go/db"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while letting async audit
	// writers reach the same database.
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Category{},
		&models.Province{},
		&models.District{},
		&models.Institution{},
		&models.DesignationOption{},
		&models.MemberApplication{},
		&models.AuditLog{},
	)
	assert.NoError(t, err)

	if services.Storage == nil {
		services.Storage = services.NewLocalStorage(t.TempDir())
	}

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:   "test",
		EmailTestMode: true,
	})

	return e, c, rec
}

// createAdmin inserts an admin account and attaches it to the context the
// way RequireAuth would. Emails are randomized so repeated calls within a
// test do not collide.
func createAdmin(t *testing.T, testDB *gorm.DB, c echo.Context) *models.User {
	email := "admin-" + uuid.New().String()[:8] + "@gnoa.lk"
	user, err := services.CreateUser(testDB, "Admin", email, "longenough", models.RoleAdmin)
	assert.NoError(t, err)
	c.Set(middleware.ContextKeyUser, user)
	return user
}
