package services

import (
	"context"

	"gnoa_membership_go/models"

	"gorm.io/gorm"
)

// ReferenceStore provides read access to the reference-data tables consumed
// by the selection engine and the filter views. It exists as an interface so
// the engine can be exercised against a fake store in tests.
type ReferenceStore interface {
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Provinces(ctx context.Context) ([]models.Province, error)
	ProvinceByName(ctx context.Context, name string) (*models.Province, error)
	DistrictsByProvince(ctx context.Context, provinceID string) ([]models.District, error)
	DistrictByName(ctx context.Context, provinceID, name string) (*models.District, error)
	InstitutionNames(ctx context.Context, categoryID, provinceID, districtID string) ([]string, error)
	DesignationNames(ctx context.Context, categoryID string) ([]string, error)
}

// GormReferenceStore implements ReferenceStore against the database
type GormReferenceStore struct {
	db *gorm.DB
}

// NewReferenceStore creates a ReferenceStore backed by the given database
func NewReferenceStore(db *gorm.DB) *GormReferenceStore {
	return &GormReferenceStore{db: db}
}

// CategoryByName fetches an active category by its exact name
func (s *GormReferenceStore) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Categories returns all active categories ordered by name
func (s *GormReferenceStore) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

// Provinces returns all active provinces ordered by name
func (s *GormReferenceStore) Provinces(ctx context.Context) ([]models.Province, error) {
	var provinces []models.Province
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&provinces).Error
	return provinces, err
}

// DistrictsByProvince returns the active districts of a province
func (s *GormReferenceStore) DistrictsByProvince(ctx context.Context, provinceID string) ([]models.District, error) {
	var districts []models.District
	err := s.db.WithContext(ctx).
		Where("province_id = ? AND is_active = ?", provinceID, true).
		Order("name ASC").
		Find(&districts).Error
	return districts, err
}

// InstitutionNames returns institution names for the given scope. Province
// and district IDs are ignored when empty (direct-location categories scope
// by category alone).
func (s *GormReferenceStore) InstitutionNames(ctx context.Context, categoryID, provinceID, districtID string) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&models.Institution{}).
		Where("category_id = ? AND is_active = ?", categoryID, true)

	if provinceID != "" {
		query = query.Where("province_id = ?", provinceID)
	}
	if districtID != "" {
		query = query.Where("district_id = ?", districtID)
	}

	var names []string
	err := query.Order("name ASC").Pluck("name", &names).Error
	return names, err
}

// DesignationNames returns the constrained designation list for a category,
// ordered by sort order. Categories without a list yield an empty slice.
func (s *GormReferenceStore) DesignationNames(ctx context.Context, categoryID string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.DesignationOption{}).
		Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("sort_order ASC").
		Pluck("name", &names).Error
	return names, err
}

// ProvinceByName fetches an active province by its exact name
func (s *GormReferenceStore) ProvinceByName(ctx context.Context, name string) (*models.Province, error) {
	var province models.Province
	err := s.db.WithContext(ctx).
		Where("name = ? AND is_active = ?", name, true).
		First(&province).Error
	if err != nil {
		return nil, err
	}
	return &province, nil
}

// DistrictByName fetches an active district by name within a province
func (s *GormReferenceStore) DistrictByName(ctx context.Context, provinceID, name string) (*models.District, error) {
	var district models.District
	err := s.db.WithContext(ctx).
		Where("province_id = ? AND name = ? AND is_active = ?", provinceID, name, true).
		First(&district).Error
	if err != nil {
		return nil, err
	}
	return &district, nil
}
