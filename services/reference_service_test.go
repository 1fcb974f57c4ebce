package services

import (
	"context"
	"testing"

	"gnoa_membership_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReferenceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.Category{},
		&models.Province{},
		&models.District{},
		&models.Institution{},
		&models.DesignationOption{},
	)
	assert.NoError(t, err)

	assert.NoError(t, SeedReferenceData(db))
	return db
}

func TestSeedReferenceData(t *testing.T) {
	db := setupReferenceTestDB(t)

	var provinces, districts, categories int64
	db.Model(&models.Province{}).Count(&provinces)
	db.Model(&models.District{}).Count(&districts)
	db.Model(&models.Category{}).Count(&categories)
	assert.Equal(t, int64(9), provinces)
	assert.Equal(t, int64(25), districts)
	assert.Equal(t, int64(7), categories)

	// Seeding again must not duplicate.
	assert.NoError(t, SeedReferenceData(db))
	db.Model(&models.Province{}).Count(&provinces)
	assert.Equal(t, int64(9), provinces)
}

func TestReferenceStoreQueries(t *testing.T) {
	db := setupReferenceTestDB(t)
	ctx := context.Background()
	store := NewReferenceStore(db)

	t.Run("CategoryFlags", func(t *testing.T) {
		hospital, err := store.CategoryByName(ctx, "Hospital Services")
		assert.NoError(t, err)
		assert.False(t, hospital.IsDirectLocation)
		assert.False(t, hospital.UsesTextDesignation())

		ministry, err := store.CategoryByName(ctx, "Line Ministry")
		assert.NoError(t, err)
		assert.True(t, ministry.IsDirectLocation)
		assert.True(t, ministry.UsesTextDesignation())

		_, err = store.CategoryByName(ctx, "Unknown")
		assert.Error(t, err)
	})

	t.Run("DistrictsOrdered", func(t *testing.T) {
		western, err := store.ProvinceByName(ctx, "Western")
		assert.NoError(t, err)

		districts, err := store.DistrictsByProvince(ctx, western.ID)
		assert.NoError(t, err)
		assert.Len(t, districts, 3)
		assert.Equal(t, "Colombo", districts[0].Name)
		assert.Equal(t, "Gampaha", districts[1].Name)
		assert.Equal(t, "Kalutara", districts[2].Name)
	})

	t.Run("DistrictByNameScopedToProvince", func(t *testing.T) {
		western, err := store.ProvinceByName(ctx, "Western")
		assert.NoError(t, err)

		district, err := store.DistrictByName(ctx, western.ID, "Colombo")
		assert.NoError(t, err)
		assert.Equal(t, western.ID, district.ProvinceID)

		// Galle belongs to Southern, not Western.
		_, err = store.DistrictByName(ctx, western.ID, "Galle")
		assert.Error(t, err)
	})

	t.Run("DesignationListOrdered", func(t *testing.T) {
		hospital, err := store.CategoryByName(ctx, "Hospital Services")
		assert.NoError(t, err)

		names, err := store.DesignationNames(ctx, hospital.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Chief Nursing Officer", names[0])
		assert.Len(t, names, 7)
	})

	t.Run("TextCategoryHasNoDesignations", func(t *testing.T) {
		publicHealth, err := store.CategoryByName(ctx, "Public Health")
		assert.NoError(t, err)

		names, err := store.DesignationNames(ctx, publicHealth.ID)
		assert.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("DirectLocationInstitutions", func(t *testing.T) {
		ministry, err := store.CategoryByName(ctx, "Line Ministry")
		assert.NoError(t, err)

		names, err := store.InstitutionNames(ctx, ministry.ID, "", "")
		assert.NoError(t, err)
		assert.NotEmpty(t, names)
		assert.Contains(t, names, "Directorate of Nursing")
	})

	t.Run("StandardInstitutionsScopedByLocation", func(t *testing.T) {
		hospital, err := store.CategoryByName(ctx, "Hospital Services")
		assert.NoError(t, err)
		western, err := store.ProvinceByName(ctx, "Western")
		assert.NoError(t, err)
		colombo, err := store.DistrictByName(ctx, western.ID, "Colombo")
		assert.NoError(t, err)

		names, err := store.InstitutionNames(ctx, hospital.ID, western.ID, colombo.ID)
		assert.NoError(t, err)
		assert.Contains(t, names, "National Hospital of Sri Lanka")

		gampaha, err := store.DistrictByName(ctx, western.ID, "Gampaha")
		assert.NoError(t, err)
		names, err = store.InstitutionNames(ctx, hospital.ID, western.ID, gampaha.ID)
		assert.NoError(t, err)
		assert.NotContains(t, names, "National Hospital of Sri Lanka")
		assert.Contains(t, names, "District General Hospital - Gampaha")
	})
}

func TestSelectionEngineAgainstSeededData(t *testing.T) {
	db := setupReferenceTestDB(t)
	ctx := context.Background()
	store := NewReferenceStore(db)

	engine := NewSelectionEngine(store)
	assert.NoError(t, engine.Set(ctx, FieldCategory, "Hospital Services"))
	assert.NoError(t, engine.Set(ctx, FieldProvince, "Western"))
	assert.NoError(t, engine.Set(ctx, FieldDistrict, "Colombo"))

	state, opts := engine.Snapshot()
	assert.Equal(t, "Colombo", state.District)
	assert.Contains(t, opts.Institutions, "National Hospital of Sri Lanka")
	assert.Len(t, opts.Designations, 7)
}
