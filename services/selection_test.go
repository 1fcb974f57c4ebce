package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gnoa_membership_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// fakeReferenceStore serves canned reference data, with an optional delay
// per category name to simulate slow queries
type fakeReferenceStore struct {
	categories   map[string]*models.Category
	provinces    map[string]*models.Province
	districts    map[string][]models.District
	institutions map[string][]string
	designations map[string][]string
	delays       map[string]time.Duration
}

func newFakeStore() *fakeReferenceStore {
	hospital := &models.Category{ID: "cat-hosp", Name: "Hospital Services", DesignationInput: models.DesignationInputList}
	ministry := &models.Category{ID: "cat-min", Name: "Line Ministry", IsDirectLocation: true, DesignationInput: models.DesignationInputText}
	western := &models.Province{ID: "prov-w", Name: "Western"}
	southern := &models.Province{ID: "prov-s", Name: "Southern"}

	return &fakeReferenceStore{
		categories: map[string]*models.Category{
			hospital.Name: hospital,
			ministry.Name: ministry,
		},
		provinces: map[string]*models.Province{
			western.Name:  western,
			southern.Name: southern,
		},
		districts: map[string][]models.District{
			"prov-w": {
				{ID: "dist-col", ProvinceID: "prov-w", Name: "Colombo"},
				{ID: "dist-gam", ProvinceID: "prov-w", Name: "Gampaha"},
			},
			"prov-s": {
				{ID: "dist-gal", ProvinceID: "prov-s", Name: "Galle"},
			},
		},
		institutions: map[string][]string{
			"cat-hosp/prov-w/dist-col": {"National Hospital Colombo", "Castle Street Hospital"},
			"cat-hosp/prov-s/dist-gal": {"Karapitiya Teaching Hospital"},
			"cat-min//":                {"Ministry of Health - Head Office"},
		},
		designations: map[string][]string{
			"cat-hosp": {"Nursing Officer", "Ward Manager"},
		},
		delays: map[string]time.Duration{},
	}
}

func (f *fakeReferenceStore) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	if d := f.delays[name]; d > 0 {
		time.Sleep(d)
	}
	if c, ok := f.categories[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReferenceStore) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeReferenceStore) Provinces(ctx context.Context) ([]models.Province, error) {
	var out []models.Province
	for _, p := range f.provinces {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeReferenceStore) ProvinceByName(ctx context.Context, name string) (*models.Province, error) {
	if p, ok := f.provinces[name]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReferenceStore) DistrictsByProvince(ctx context.Context, provinceID string) ([]models.District, error) {
	return f.districts[provinceID], nil
}

func (f *fakeReferenceStore) DistrictByName(ctx context.Context, provinceID, name string) (*models.District, error) {
	for _, d := range f.districts[provinceID] {
		if d.Name == name {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReferenceStore) InstitutionNames(ctx context.Context, categoryID, provinceID, districtID string) ([]string, error) {
	return f.institutions[categoryID+"/"+provinceID+"/"+districtID], nil
}

func (f *fakeReferenceStore) DesignationNames(ctx context.Context, categoryID string) ([]string, error) {
	return f.designations[categoryID], nil
}

func TestSelectionCategoryChange(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	engine.Restore(SelectionState{
		Category:    "Line Ministry",
		Designation: "Coordinator",
		Institution: "Ministry of Health - Head Office",
	})

	err := engine.Set(ctx, FieldCategory, "Hospital Services")
	assert.NoError(t, err)

	state, opts := engine.Snapshot()
	assert.Equal(t, "Hospital Services", state.Category)
	assert.Empty(t, state.Designation, "category change must clear designation")
	assert.Empty(t, state.Institution, "category change must clear institution")
	assert.False(t, opts.DesignationFreeText)
	assert.True(t, opts.LocationRequired)
	assert.Equal(t, []string{"Nursing Officer", "Ward Manager"}, opts.Designations)
	// No province or district selected yet, so no institutions are offered.
	assert.Empty(t, opts.Institutions)
}

func TestSelectionDirectLocationCategory(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	engine.Restore(SelectionState{
		Category: "Hospital Services",
		Province: "Western",
		District: "Colombo",
		RDHS:     "Colombo RDHS",
	})

	err := engine.Set(ctx, FieldCategory, "Line Ministry")
	assert.NoError(t, err)

	state, opts := engine.Snapshot()
	assert.Empty(t, state.Province, "direct-location category must clear province")
	assert.Empty(t, state.District, "direct-location category must clear district")
	assert.Empty(t, state.RDHS, "direct-location category must clear RDHS")
	assert.False(t, opts.LocationRequired)
	assert.True(t, opts.DesignationFreeText)
	assert.Equal(t, []string{"Ministry of Health - Head Office"}, opts.Institutions)
}

func TestSelectionProvinceChange(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	engine.Restore(SelectionState{
		Category:    "Hospital Services",
		Province:    "Western",
		District:    "Colombo",
		Institution: "National Hospital Colombo",
	})

	err := engine.Set(ctx, FieldProvince, "Southern")
	assert.NoError(t, err)

	state, opts := engine.Snapshot()
	assert.Equal(t, "Southern", state.Province)
	assert.Empty(t, state.District, "province change must clear district")
	assert.Empty(t, state.Institution, "province change must clear institution")
	assert.Equal(t, []string{"Galle"}, opts.Districts)
}

func TestSelectionDistrictChange(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	engine.Restore(SelectionState{
		Category: "Hospital Services",
		Province: "Western",
	})

	err := engine.Set(ctx, FieldDistrict, "Colombo")
	assert.NoError(t, err)

	state, opts := engine.Snapshot()
	assert.Equal(t, "Colombo", state.District)
	assert.Equal(t, []string{"National Hospital Colombo", "Castle Street Hospital"}, opts.Institutions)
}

func TestSelectionStaleFetchDiscarded(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	// Resolving "Hospital Services" stalls long enough for a newer change to
	// land first.
	store.delays["Hospital Services"] = 60 * time.Millisecond

	engine := NewSelectionEngine(store)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = engine.Set(ctx, FieldCategory, "Hospital Services")
	}()

	time.Sleep(20 * time.Millisecond)
	err := engine.Set(ctx, FieldCategory, "Line Ministry")
	assert.NoError(t, err)
	wg.Wait()

	state, opts := engine.Snapshot()
	assert.Equal(t, "Line Ministry", state.Category)
	// The slow fetch for the superseded category must not overwrite the
	// newer option sets.
	assert.Equal(t, []string{"Ministry of Health - Head Office"}, opts.Institutions)
	assert.True(t, opts.DesignationFreeText)
}

func TestSelectionRestoreDirectLocationDropsDistricts(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	// A client can post a direct-location category together with leftover
	// location values from a previous category.
	engine.Restore(SelectionState{
		Category: "Line Ministry",
		Province: "Western",
		District: "Colombo",
	})

	assert.NoError(t, engine.RefreshAll(ctx))

	state, opts := engine.Snapshot()
	assert.Empty(t, state.Province)
	assert.Empty(t, state.District)
	assert.Empty(t, opts.Districts, "direct-location categories offer no districts")
	assert.False(t, opts.LocationRequired)
	assert.Equal(t, []string{"Ministry of Health - Head Office"}, opts.Institutions)
}

func TestSelectionProvinceIgnoredForDirectLocation(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())
	engine.Restore(SelectionState{Category: "Line Ministry"})

	err := engine.Set(ctx, FieldProvince, "Western")
	assert.NoError(t, err)

	_, opts := engine.Snapshot()
	assert.Empty(t, opts.Districts, "direct-location categories offer no districts")
}

func TestSelectionUnknownCategoryFailsOpen(t *testing.T) {
	ctx := context.Background()
	engine := NewSelectionEngine(newFakeStore())

	err := engine.Set(ctx, FieldCategory, "No Such Category")
	assert.NoError(t, err)

	_, opts := engine.Snapshot()
	assert.Empty(t, opts.Designations)
	assert.Empty(t, opts.Institutions)
	assert.True(t, opts.LocationRequired)
}
