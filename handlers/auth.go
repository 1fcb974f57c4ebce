package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gnoa_membership_go/config"
	"gnoa_membership_go/db"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
)

const sessionMaxAge = 7 * 24 * 60 * 60 // seconds, matches session duration

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginHandler handles the login submission
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := services.AuthenticateUser(db.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAccountLocked) {
			return echo.NewHTTPError(http.StatusForbidden, "Account is locked. Contact an administrator or try again later.")
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	cfg := c.Get("config").(*config.Config)
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         user,
		Action:       models.AuditActionLogin,
		ResourceType: "User",
		ResourceID:   user.ID,
		ResourceName: user.Email,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", "/admin")
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, user)
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to end session")
		}
	}
	middleware.ClearSessionCookie(c)

	if user != nil {
		services.RecordAudit(db.DB, services.AuditEntry{
			User:         user,
			Action:       models.AuditActionLogout,
			ResourceType: "User",
			ResourceID:   user.ID,
			ResourceName: user.Email,
			IPAddress:    c.RealIP(),
			UserAgent:    c.Request().UserAgent(),
		})
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the authenticated user
func MeHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}
