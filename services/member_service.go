package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gnoa_membership_go/models"

	"gorm.io/gorm"
)

// DefaultPageSize is the page length of the member list views
const DefaultPageSize = 20

// MemberFilter describes the admin list filters. Zero values mean "not
// filtered". Text fields match as case-insensitive contains; phone and
// address each search a pair of columns.
type MemberFilter struct {
	Name        string
	Email       string
	Designation string
	NIC         string
	Phone       string
	Address     string

	Gender      string
	Category    string
	Status      string
	Institution string
	Province    string
	District    string

	CreatedFrom *time.Time
	CreatedTo   *time.Time

	Page     int
	PageSize int

	// Category classification, filled in by ResolveCategoryMode. Location
	// filters are skipped for direct-location categories, and designation
	// matches exactly when the category constrains it to a list.
	categoryDirectLocation bool
	designationListMode    bool
}

// ResolveCategoryMode looks up the category filter's classification flags so
// Apply can gate the location and designation predicates. A missing or
// unknown category leaves both flags off, which applies every filter as-is.
func (f *MemberFilter) ResolveCategoryMode(ctx context.Context, store ReferenceStore) {
	f.categoryDirectLocation = false
	f.designationListMode = false
	if f.Category == "" {
		return
	}
	category, err := store.CategoryByName(ctx, f.Category)
	if err != nil {
		return
	}
	f.categoryDirectLocation = category.IsDirectLocation
	f.designationListMode = !category.UsesTextDesignation()
}

// containsPattern builds a case-insensitive LIKE pattern
func containsPattern(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}

// Apply compiles the filter onto a query. Each set field adds one clause;
// the compiled query is reused for both the count and the page fetch.
func (f *MemberFilter) Apply(query *gorm.DB) *gorm.DB {
	if f.Name != "" {
		query = query.Where("LOWER(name_in_full) LIKE ?", containsPattern(f.Name))
	}
	if f.Email != "" {
		query = query.Where("LOWER(email) LIKE ?", containsPattern(f.Email))
	}
	if f.Designation != "" {
		if f.designationListMode {
			query = query.Where("designation = ?", f.Designation)
		} else {
			query = query.Where("LOWER(designation) LIKE ?", containsPattern(f.Designation))
		}
	}
	if f.NIC != "" {
		query = query.Where("LOWER(nic_number) LIKE ?", containsPattern(f.NIC))
	}
	if f.Phone != "" {
		pattern := containsPattern(f.Phone)
		query = query.Where("LOWER(phone_number_personal) LIKE ? OR LOWER(whatsapp_number) LIKE ?", pattern, pattern)
	}
	if f.Address != "" {
		pattern := containsPattern(f.Address)
		query = query.Where("LOWER(official_address) LIKE ? OR LOWER(personal_address) LIKE ?", pattern, pattern)
	}
	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		query = query.Where("status = ?", models.CanonicalStatus(f.Status))
	}
	if f.Institution != "" {
		query = query.Where("type_of_organization_hospital = ?", f.Institution)
	}
	if !f.categoryDirectLocation {
		if f.Province != "" {
			query = query.Where("province_work_place = ?", f.Province)
		}
		if f.District != "" {
			query = query.Where("district_work_place = ?", f.District)
		}
	}
	if f.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		query = query.Where("created_at <= ?", *f.CreatedTo)
	}
	return query
}

// normalize clamps pagination to sane bounds
func (f *MemberFilter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = DefaultPageSize
	}
}

// ListApplications returns one page of applications matching the filter,
// newest first, along with the total match count
func ListApplications(db *gorm.DB, filter MemberFilter) ([]models.MemberApplication, int64, error) {
	filter.normalize()

	base := filter.Apply(db.Model(&models.MemberApplication{}))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var applications []models.MemberApplication
	err := base.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&applications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	return applications, total, nil
}

// ListApplicationsForExport returns every application matching the filter,
// newest first, without pagination
func ListApplicationsForExport(db *gorm.DB, filter MemberFilter) ([]models.MemberApplication, error) {
	var applications []models.MemberApplication
	err := filter.Apply(db.Model(&models.MemberApplication{})).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for export: %w", err)
	}
	return applications, nil
}

// GetApplicationByID fetches a single application with its reviewer
func GetApplicationByID(db *gorm.DB, id string) (*models.MemberApplication, error) {
	var application models.MemberApplication
	err := db.Preload("ReviewedBy").First(&application, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// CreateApplication persists a new application. The NIC is uppercased so
// the two historical NIC formats compare consistently.
func CreateApplication(db *gorm.DB, application *models.MemberApplication) error {
	application.NICNumber = strings.ToUpper(strings.TrimSpace(application.NICNumber))
	application.Status = models.StatusPending
	if err := db.Create(application).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// ReviewApplication moves an application to Verified or Rejected and stamps
// the reviewer. Only pending applications can be reviewed.
func ReviewApplication(db *gorm.DB, id, status string, reviewer *models.User) (*models.MemberApplication, error) {
	if status != models.StatusVerified && status != models.StatusRejected {
		return nil, fmt.Errorf("invalid review status: %s", status)
	}

	application, err := GetApplicationByID(db, id)
	if err != nil {
		return nil, err
	}
	if application.Status != models.StatusPending {
		return nil, fmt.Errorf("application already reviewed (status %s)", application.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         status,
		"reviewed_by_id": reviewer.ID,
		"reviewed_at":    now,
	}
	if err := db.Model(application).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	application.Status = status
	application.ReviewedByID = &reviewer.ID
	application.ReviewedAt = &now
	return application, nil
}

// DeleteApplication soft deletes an application
func DeleteApplication(db *gorm.DB, id string) error {
	result := db.Delete(&models.MemberApplication{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete application: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StatusCounts returns the number of applications per canonical status
func StatusCounts(db *gorm.DB) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := db.Model(&models.MemberApplication{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := map[string]int64{
		models.StatusPending:  0,
		models.StatusVerified: 0,
		models.StatusRejected: 0,
	}
	for _, r := range rows {
		counts[models.CanonicalStatus(r.Status)] += r.Count
	}
	return counts, nil
}
