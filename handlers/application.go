package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gnoa_membership_go/config"
	"gnoa_membership_go/db"
	"gnoa_membership_go/middleware"
	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// applicationRequest is the public application form payload. The Website
// field is a honeypot: it is hidden on the real form, so any value means a
// bot filled it.
type applicationRequest struct {
	NameInFull    string `json:"name_in_full" form:"name_in_full"`
	Email         string `json:"email" form:"email"`
	NICNumber     string `json:"nic_number" form:"nic_number"`
	DOB           string `json:"dob" form:"dob"`
	Gender        string `json:"gender" form:"gender"`
	MaritalStatus string `json:"marital_status" form:"marital_status"`

	PhoneNumberPersonal string `json:"phone_number_personal" form:"phone_number_personal"`
	WhatsappNumber      string `json:"whatsapp_number" form:"whatsapp_number"`
	OfficialAddress     string `json:"official_address" form:"official_address"`
	PersonalAddress     string `json:"personal_address" form:"personal_address"`

	Category          string `json:"category" form:"category"`
	Designation       string `json:"designation" form:"designation"`
	ProvinceWorkPlace string `json:"province_work_place" form:"province_work_place"`
	DistrictWorkPlace string `json:"district_work_place" form:"district_work_place"`
	RDHS              string `json:"rdhs" form:"rdhs"`
	Institution       string `json:"type_of_organization_hospital" form:"type_of_organization_hospital"`

	FirstAppointmentDate       string `json:"first_appointment_date" form:"first_appointment_date"`
	EmploymentNumber           string `json:"employment_number_salary_number" form:"employment_number_salary_number"`
	CollegeOfNursing           string `json:"college_of_nursing_university" form:"college_of_nursing_university"`
	NursingCouncilRegistration string `json:"nursing_council_registration_number" form:"nursing_council_registration_number"`
	EducationalQualifications  string `json:"educational_qualifications" form:"educational_qualifications"`
	Specialties                string `json:"specialties_special_trainings" form:"specialties_special_trainings"`

	Signature string `json:"signature" form:"signature"`
	Website   string `json:"website" form:"website"`
}

// SubmitApplicationHandler accepts a public membership application
// POST /api/applications
func SubmitApplicationHandler(c echo.Context) error {
	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	// Honeypot tripped: report success without storing anything.
	if req.Website != "" {
		return c.JSON(http.StatusCreated, map[string]string{"status": "received"})
	}

	ctx := c.Request().Context()

	required := map[string]string{
		"name_in_full":                  req.NameInFull,
		"email":                         req.Email,
		"nic_number":                    req.NICNumber,
		"phone_number_personal":         req.PhoneNumberPersonal,
		"category":                      req.Category,
		"designation":                   req.Designation,
		"type_of_organization_hospital": req.Institution,
	}
	for field, value := range required {
		if services.SanitizeText(value) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s is required", field))
		}
	}

	store := services.NewReferenceStore(db.DB)
	category, err := store.CategoryByName(ctx, services.SanitizeText(req.Category))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown category")
	}

	if category.IsDirectLocation {
		// Location fields do not apply to this category.
		req.ProvinceWorkPlace = ""
		req.DistrictWorkPlace = ""
		req.RDHS = ""
	} else {
		if services.SanitizeText(req.ProvinceWorkPlace) == "" || services.SanitizeText(req.DistrictWorkPlace) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "province_work_place and district_work_place are required")
		}
	}

	if !category.UsesTextDesignation() {
		names, err := store.DesignationNames(ctx, category.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to validate designation")
		}
		valid := false
		for _, name := range names {
			if name == services.SanitizeText(req.Designation) {
				valid = true
				break
			}
		}
		if !valid {
			return echo.NewHTTPError(http.StatusBadRequest, "Designation is not valid for this category")
		}
	}

	signatureKey := ""
	if req.Signature != "" {
		signatureKey, err = services.StoreSignature(ctx, req.Signature)
		if err != nil {
			if errors.Is(err, services.ErrSignatureTooLarge) {
				return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Signature image is too large")
			}
			if errors.Is(err, services.ErrInvalidSignature) {
				return echo.NewHTTPError(http.StatusBadRequest, "Signature image is invalid")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store signature")
		}
	}

	application := models.MemberApplication{
		NameInFull:                 services.SanitizeText(req.NameInFull),
		Email:                      services.SanitizeText(req.Email),
		NICNumber:                  services.SanitizeText(req.NICNumber),
		DOB:                        services.SanitizeText(req.DOB),
		Gender:                     services.SanitizeText(req.Gender),
		MaritalStatus:              services.SanitizeText(req.MaritalStatus),
		PhoneNumberPersonal:        services.SanitizeText(req.PhoneNumberPersonal),
		WhatsappNumber:             services.SanitizeText(req.WhatsappNumber),
		OfficialAddress:            services.SanitizeText(req.OfficialAddress),
		PersonalAddress:            services.SanitizeText(req.PersonalAddress),
		Category:                   category.Name,
		Designation:                services.SanitizeText(req.Designation),
		ProvinceWorkPlace:          services.SanitizeText(req.ProvinceWorkPlace),
		DistrictWorkPlace:          services.SanitizeText(req.DistrictWorkPlace),
		RDHS:                       services.SanitizeText(req.RDHS),
		Institution:                services.SanitizeText(req.Institution),
		FirstAppointmentDate:       services.SanitizeText(req.FirstAppointmentDate),
		EmploymentNumber:           services.SanitizeText(req.EmploymentNumber),
		CollegeOfNursing:           services.SanitizeText(req.CollegeOfNursing),
		NursingCouncilRegistration: services.SanitizeText(req.NursingCouncilRegistration),
		EducationalQualifications:  services.SanitizeText(req.EducationalQualifications),
		Specialties:                services.SanitizeText(req.Specialties),
		Signature:                  signatureKey,
		IPAddress:                  c.RealIP(),
		UserAgent:                  c.Request().UserAgent(),
	}

	if err := services.CreateApplication(db.DB, &application); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save application")
	}

	cfg := c.Get("config").(*config.Config)
	services.SendEmailAsync(cfg, services.BuildApplicationReceiptEmail(
		application.Email, application.NameInFull, application.ID))

	services.RecordAudit(db.DB, services.AuditEntry{
		Action:       models.AuditActionCreate,
		ResourceType: "MemberApplication",
		ResourceID:   application.ID,
		ResourceName: application.NameInFull,
		Description:  "Public application submitted",
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	return c.JSON(http.StatusCreated, map[string]string{
		"status": "received",
		"id":     application.ID,
	})
}

// parseMemberFilter builds a MemberFilter from list query parameters
func parseMemberFilter(c echo.Context) services.MemberFilter {
	filter := services.MemberFilter{
		Name:        c.QueryParam("name"),
		Email:       c.QueryParam("email"),
		Designation: c.QueryParam("designation"),
		NIC:         c.QueryParam("nic"),
		Phone:       c.QueryParam("phone"),
		Address:     c.QueryParam("address"),
		Gender:      c.QueryParam("gender"),
		Category:    c.QueryParam("category"),
		Status:      c.QueryParam("status"),
		Institution: c.QueryParam("institution"),
		Province:    c.QueryParam("province"),
		District:    c.QueryParam("district"),
	}
	filter.ResolveCategoryMode(c.Request().Context(), services.NewReferenceStore(db.DB))

	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		filter.PageSize = size
	}

	if from := c.QueryParam("created_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := c.QueryParam("created_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Include the whole end day.
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.CreatedTo = &end
		}
	}

	return filter
}

// ListApplicationsHandler returns a filtered page of applications
// GET /api/applications
func ListApplicationsHandler(c echo.Context) error {
	filter := parseMemberFilter(c)

	applications, total, err := services.ListApplications(db.DB, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list applications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = services.DefaultPageSize
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"applications": applications,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

// GetApplicationHandler returns one application
// GET /api/applications/:id
func GetApplicationHandler(c echo.Context) error {
	application, err := services.GetApplicationByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch application")
	}
	return c.JSON(http.StatusOK, application)
}

// reviewApplication is shared by the verify and reject endpoints
func reviewApplication(c echo.Context, status string, action models.AuditAction) error {
	user := middleware.GetCurrentUser(c)

	application, err := services.ReviewApplication(db.DB, c.Param("id"), status, user)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}

	cfg := c.Get("config").(*config.Config)
	services.SendEmailAsync(cfg, services.BuildApplicationReviewEmail(
		application.Email, application.NameInFull, status == models.StatusVerified))

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         user,
		Action:       action,
		ResourceType: "MemberApplication",
		ResourceID:   application.ID,
		ResourceName: application.NameInFull,
		OldValues:    map[string]string{"status": models.StatusPending},
		NewValues:    map[string]string{"status": status},
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	return c.JSON(http.StatusOK, application)
}

// VerifyApplicationHandler marks a pending application as verified
// POST /api/applications/:id/verify
func VerifyApplicationHandler(c echo.Context) error {
	return reviewApplication(c, models.StatusVerified, models.AuditActionVerify)
}

// RejectApplicationHandler marks a pending application as rejected
// POST /api/applications/:id/reject
func RejectApplicationHandler(c echo.Context) error {
	return reviewApplication(c, models.StatusRejected, models.AuditActionReject)
}

// DeleteApplicationHandler removes an application
// DELETE /api/applications/:id
func DeleteApplicationHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	application, err := services.GetApplicationByID(db.DB, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch application")
	}

	if err := services.DeleteApplication(db.DB, application.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete application")
	}

	services.RecordAudit(db.DB, services.AuditEntry{
		User:         user,
		Action:       models.AuditActionDelete,
		ResourceType: "MemberApplication",
		ResourceID:   application.ID,
		ResourceName: application.NameInFull,
		IPAddress:    c.RealIP(),
		UserAgent:    c.Request().UserAgent(),
	})

	return c.NoContent(http.StatusNoContent)
}

// DashboardHandler returns application counts per status
// GET /api/dashboard
func DashboardHandler(c echo.Context) error {
	counts, err := services.StatusCounts(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute counts")
	}
	return c.JSON(http.StatusOK, counts)
}
