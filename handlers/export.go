package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gnoa_membership_go/db"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ExportApplicationPDFHandler renders one application as the printable
// membership form
// GET /api/applications/:id/pdf
func ExportApplicationPDFHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	application, err := services.GetApplicationByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch application")
	}

	pdf, err := services.GenerateMembershipPDF(c.Request().Context(), application)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         user,
		Action:       models.AuditActionExport,
		ResourceType: "MemberApplication",
		ResourceID:   application.ID,
		ResourceName: application.NameInFull,
		Description:  "Membership form exported as PDF",
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	filename := fmt.Sprintf("membership_%s.pdf", application.NICNumber)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ExportApplicationsExcelHandler exports the filtered member list as xlsx.
// The same filter parameters as the list endpoint apply.
// GET /api/applications/export
func ExportApplicationsExcelHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	filter := parseMemberFilter(c)

	applications, err := services.ListApplicationsForExport(db.DB, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list applications")
	}

	workbook, err := services.ExportApplicationsExcel(applications)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build workbook")
	}

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         user,
		Action:       models.AuditActionExport,
		ResourceType: "MemberApplication",
		ResourceID:   "bulk",
		Description:  fmt.Sprintf("Exported %d applications to Excel", len(applications)),
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	filename := fmt.Sprintf("members_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// GetSignatureHandler streams a stored signature image
// GET /api/applications/:id/signature
func GetSignatureHandler(c echo.Context) error {
	application, err := services.GetApplicationByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch application")
	}

	if application.Signature == "" {
		return echo.NewHTTPError(http.StatusNotFound, "No signature on file")
	}

	// Legacy rows hold an external URL rather than a storage key.
	if len(application.Signature) > 4 && application.Signature[:4] == "http" {
		return c.Redirect(http.StatusTemporaryRedirect, application.Signature)
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), application.Signature)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Signature not found in storage")
	}
	defer reader.Close()

	return c.Stream(http.StatusOK, contentType, reader)
}
