package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestCreateUserHandler(t *testing.T) {
	testDB := setupTestDB(t)

	t.Run("Success", func(t *testing.T) {
		body := `{"name":"New Admin","email":"New@GNOA.lk","password":"longenough","role":"admin"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createAdmin(t, testDB, c)

		assert.NoError(t, CreateUserHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var user models.User
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "new@gnoa.lk", user.Email)
		assert.Empty(t, user.Password, "hash never leaves the server")
	})

	t.Run("MissingFields", func(t *testing.T) {
		body := `{"name":"No Password","email":"np@gnoa.lk"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createAdmin(t, testDB, c)

		err := CreateUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		body := `{"name":"Weak","email":"weak@gnoa.lk","password":"short","role":"user"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createAdmin(t, testDB, c)

		err := CreateUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		body := `{"name":"Again","email":"new@gnoa.lk","password":"longenough","role":"user"}`
		_, c, _ := setupEcho(http.MethodPost, "/api/users", strings.NewReader(body))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createAdmin(t, testDB, c)

		err := CreateUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestPatchUserHandler(t *testing.T) {
	testDB := setupTestDB(t)

	t.Run("LockUser", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPatch, "/api/users/x", strings.NewReader(`{"is_locked":true}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		admin := createAdmin(t, testDB, c)
		target := createAdmin(t, testDB, c)
		c.Set(middleware.ContextKeyUser, admin) // createAdmin left target in context; restore the actor
		c.SetParamNames("id")
		c.SetParamValues(target.ID)

		assert.NoError(t, PatchUserHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var stored models.User
		assert.NoError(t, testDB.First(&stored, "id = ?", target.ID).Error)
		assert.True(t, stored.IsLocked)
	})

	t.Run("SelfLockConflicts", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPatch, "/api/users/x", strings.NewReader(`{"is_locked":true}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		admin := createAdmin(t, testDB, c)
		c.SetParamNames("id")
		c.SetParamValues(admin.ID)

		err := PatchUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPatch, "/api/users/missing", strings.NewReader(`{"name":"x"}`))
		c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		createAdmin(t, testDB, c)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		err := PatchUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestDeleteUserHandler(t *testing.T) {
	testDB := setupTestDB(t)

	t.Run("SelfDeletionConflicts", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/api/users/x", nil)
		admin := createAdmin(t, testDB, c)
		c.SetParamNames("id")
		c.SetParamValues(admin.ID)

		err := DeleteUserHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusConflict, he.Code)
	})

	t.Run("Success", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/users/x", nil)
		admin := createAdmin(t, testDB, c)
		target := createAdmin(t, testDB, c)
		c.Set(middleware.ContextKeyUser, admin)
		c.SetParamNames("id")
		c.SetParamValues(target.ID)

		assert.NoError(t, DeleteUserHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		testDB.Model(&models.User{}).Where("id = ?", target.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}
