package handlers

import (
	"errors"
	"net/http"

	"gnoa_membership_go/db"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type createUserRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// userErrorStatus maps service validation errors onto HTTP statuses
func userErrorStatus(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrSelfLock),
		errors.Is(err, services.ErrSelfDemote),
		errors.Is(err, services.ErrSelfDeletion),
		errors.Is(err, services.ErrLastAdmin):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Operation failed")
}

// ListUsersHandler returns all accounts
// GET /api/users
func ListUsersHandler(c echo.Context) error {
	users, err := services.ListUsers(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUserHandler creates a new account
// POST /api/users
func CreateUserHandler(c echo.Context) error {
	actor := middleware.GetCurrentUser(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and password are required")
	}

	user, err := services.CreateUser(db.DB, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return userErrorStatus(err)
	}

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         actor,
		Action:       models.AuditActionCreate,
		ResourceType: "User",
		ResourceID:   user.ID,
		ResourceName: user.Email,
		NewValues:    map[string]string{"name": user.Name, "email": user.Email, "role": user.Role},
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	return c.JSON(http.StatusCreated, user)
}

// PatchUserHandler updates a user's name, role, or lock state
// PATCH /api/users/:id
func PatchUserHandler(c echo.Context) error {
	actor := middleware.GetCurrentUser(c)

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	target, err := services.GetUserByID(db.DB, c.Param("id"))
	if err != nil {
		return userErrorStatus(err)
	}
	before := map[string]interface{}{
		"name": target.Name, "role": target.Role, "is_locked": target.IsLocked,
	}

	user, updates, err := services.PatchUser(db.DB, actor, c.Param("id"), patch)
	if err != nil {
		return userErrorStatus(err)
	}

	if len(updates) > 0 {
		action := models.AuditActionUpdate
		if locked, ok := updates["is_locked"].(bool); ok {
			if locked {
				action = models.AuditActionLock
			} else {
				action = models.AuditActionUnlock
			}
		}
		services.RecordAudit(db.DB, services.AuditEntry{
			User:         actor,
			Action:       action,
			ResourceType: "User",
			ResourceID:   user.ID,
			ResourceName: user.Email,
			OldValues:    before,
			NewValues:    updates,
			IPAddress:    c.RealIP(),
			UserAgent:    c.Request().UserAgent(),
		})
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUserHandler removes an account
// DELETE /api/users/:id
func DeleteUserHandler(c echo.Context) error {
	actor := middleware.GetCurrentUser(c)

	user, err := services.DeleteUser(db.DB, actor, c.Param("id"))
	if err != nil {
		return userErrorStatus(err)
	}

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         actor,
		Action:       models.AuditActionDelete,
		ResourceType: "User",
		ResourceID:   user.ID,
		ResourceName: user.Email,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	return c.NoContent(http.StatusNoContent)
}
