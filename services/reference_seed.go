package services

import (
	"fmt"
	"log"

	"gnoa_membership_go/models"

	"gorm.io/gorm"
)

// provinceDistricts maps each province to its districts
var provinceDistricts = map[string][]string{
	"Western":       {"Colombo", "Gampaha", "Kalutara"},
	"Central":       {"Kandy", "Matale", "Nuwara Eliya"},
	"Southern":      {"Galle", "Matara", "Hambantota"},
	"Northern":      {"Jaffna", "Kilinochchi", "Mannar", "Mullaitivu", "Vavuniya"},
	"Eastern":       {"Ampara", "Batticaloa", "Trincomalee"},
	"North Western": {"Kurunegala", "Puttalam"},
	"North Central": {"Anuradhapura", "Polonnaruwa"},
	"Uva":           {"Badulla", "Monaragala"},
	"Sabaragamuwa":  {"Ratnapura", "Kegalle"},
}

type categorySeed struct {
	Name             string
	IsDirectLocation bool
	DesignationInput string
	Designations     []string
}

// categorySeeds defines the service categories and their behavior. Direct
// location categories skip the province and district steps; categories
// without a designation list take the designation as free text.
var categorySeeds = []categorySeed{
	{
		Name:             "Hospital Services",
		DesignationInput: models.DesignationInputList,
		Designations: []string{
			"Chief Nursing Officer",
			"Deputy Chief Nursing Officer",
			"Senior Nursing Officer",
			"Nursing Officer",
			"Staff Nurse",
			"Ward Manager",
			"Clinical Nurse Specialist",
		},
	},
	{
		Name:             "Public Health",
		DesignationInput: models.DesignationInputText,
	},
	{
		Name:             "Education",
		DesignationInput: models.DesignationInputList,
		Designations: []string{
			"Nursing Tutor",
			"Senior Nursing Tutor",
			"Principal - School of Nursing",
			"Vice Principal - School of Nursing",
			"Lecturer in Nursing",
			"Clinical Instructor",
		},
	},
	{
		Name:             "RDHS",
		DesignationInput: models.DesignationInputText,
	},
	{
		Name:             "MOH Divisions",
		DesignationInput: models.DesignationInputText,
	},
	{
		Name:             "Line Ministry",
		IsDirectLocation: true,
		DesignationInput: models.DesignationInputText,
	},
	{
		Name:             "Nursing Training School",
		IsDirectLocation: true,
		DesignationInput: models.DesignationInputText,
	},
}

// directInstitutions lists the institutions of the direct-location
// categories, which are not scoped to a province or district
var directInstitutions = map[string][]string{
	"Line Ministry": {
		"Ministry of Health - Head Office",
		"Directorate of Nursing",
		"National Blood Transfusion Service",
		"Medical Supplies Division",
	},
	"Nursing Training School": {
		"National School of Nursing - Colombo",
		"School of Nursing - Kandy",
		"School of Nursing - Galle",
		"School of Nursing - Jaffna",
		"School of Nursing - Kurunegala",
	},
}

// standardInstitutions lists starter hospitals and schools for the
// location-scoped categories, keyed by category, province, and district
var standardInstitutions = []struct {
	Category string
	Province string
	District string
	Names    []string
}{
	{"Hospital Services", "Western", "Colombo", []string{
		"National Hospital of Sri Lanka",
		"Castle Street Hospital for Women",
		"Lady Ridgeway Hospital for Children",
	}},
	{"Hospital Services", "Western", "Gampaha", []string{
		"District General Hospital - Gampaha",
	}},
	{"Hospital Services", "Central", "Kandy", []string{
		"Teaching Hospital - Kandy",
	}},
	{"Hospital Services", "Southern", "Galle", []string{
		"Teaching Hospital - Karapitiya",
	}},
	{"Education", "Western", "Colombo", []string{
		"Post Basic College of Nursing - Colombo",
	}},
}

// SeedReferenceData populates provinces, districts, categories, designation
// lists, and starter institutions. Idempotent: skips any table that already
// has rows.
func SeedReferenceData(db *gorm.DB) error {
	if err := seedProvinces(db); err != nil {
		return fmt.Errorf("failed to seed provinces: %w", err)
	}
	if err := seedCategories(db); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := seedInstitutions(db); err != nil {
		return fmt.Errorf("failed to seed institutions: %w", err)
	}
	return nil
}

func seedProvinces(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Province{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[SEED] Provinces already seeded (%d rows), skipping", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for provinceName, districtNames := range provinceDistricts {
			province := models.Province{Name: provinceName, IsActive: true}
			if err := tx.Create(&province).Error; err != nil {
				return fmt.Errorf("failed to create province %s: %w", provinceName, err)
			}
			for _, districtName := range districtNames {
				district := models.District{
					ProvinceID: province.ID,
					Name:       districtName,
					IsActive:   true,
				}
				if err := tx.Create(&district).Error; err != nil {
					return fmt.Errorf("failed to create district %s: %w", districtName, err)
				}
			}
		}
		log.Printf("[SEED] Seeded %d provinces", len(provinceDistricts))
		return nil
	})
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[SEED] Categories already seeded (%d rows), skipping", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range categorySeeds {
			category := models.Category{
				Name:             seed.Name,
				IsDirectLocation: seed.IsDirectLocation,
				DesignationInput: seed.DesignationInput,
				IsActive:         true,
			}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to create category %s: %w", seed.Name, err)
			}
			for i, name := range seed.Designations {
				option := models.DesignationOption{
					CategoryID: category.ID,
					Name:       name,
					SortOrder:  i,
					IsActive:   true,
				}
				if err := tx.Create(&option).Error; err != nil {
					return fmt.Errorf("failed to create designation %s: %w", name, err)
				}
			}
		}
		log.Printf("[SEED] Seeded %d categories", len(categorySeeds))
		return nil
	})
}

func seedInstitutions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Institution{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("[SEED] Institutions already seeded (%d rows), skipping", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for categoryName, names := range directInstitutions {
			var category models.Category
			if err := tx.Where("name = ?", categoryName).First(&category).Error; err != nil {
				return fmt.Errorf("failed to find category %s: %w", categoryName, err)
			}
			for _, name := range names {
				inst := models.Institution{
					CategoryID: category.ID,
					Name:       name,
					IsActive:   true,
				}
				if err := tx.Create(&inst).Error; err != nil {
					return fmt.Errorf("failed to create institution %s: %w", name, err)
				}
			}
		}

		for _, seed := range standardInstitutions {
			var category models.Category
			if err := tx.Where("name = ?", seed.Category).First(&category).Error; err != nil {
				return fmt.Errorf("failed to find category %s: %w", seed.Category, err)
			}
			var province models.Province
			if err := tx.Where("name = ?", seed.Province).First(&province).Error; err != nil {
				return fmt.Errorf("failed to find province %s: %w", seed.Province, err)
			}
			var district models.District
			if err := tx.Where("province_id = ? AND name = ?", province.ID, seed.District).First(&district).Error; err != nil {
				return fmt.Errorf("failed to find district %s: %w", seed.District, err)
			}
			for _, name := range seed.Names {
				inst := models.Institution{
					CategoryID: category.ID,
					ProvinceID: &province.ID,
					DistrictID: &district.ID,
					Name:       name,
					IsActive:   true,
				}
				if err := tx.Create(&inst).Error; err != nil {
					return fmt.Errorf("failed to create institution %s: %w", name, err)
				}
			}
		}
		log.Println("[SEED] Seeded starter institutions")
		return nil
	})
}
