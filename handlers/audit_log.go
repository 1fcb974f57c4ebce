package handlers

import (
	"net/http"
	"strconv"

	"gnoa_membership_go/db"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
)

// ListAuditLogsHandler returns a page of the activity trail. Filterable by
// actor, resource, and action.
// GET /api/audit-logs
func ListAuditLogsHandler(c echo.Context) error {
	filter := services.AuditFilter{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Action:       c.QueryParam("action"),
	}
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		filter.PageSize = size
	}

	logs, total, err := services.ListAuditLogs(db.DB, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list audit logs")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}
