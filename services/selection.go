package services

import (
	"context"
	"log"
	"sync"

	"gnoa_membership_go/models"
)

// SelectionField identifies one field of the cascading work-place selection
type SelectionField string

const (
	FieldCategory    SelectionField = "category"
	FieldProvince    SelectionField = "province"
	FieldDistrict    SelectionField = "district"
	FieldInstitution SelectionField = "institution"
	FieldDesignation SelectionField = "designation"
	FieldRDHS        SelectionField = "rdhs"
)

// SelectionState holds the current value of each cascading field, by name.
// Values are the display names the form submits, not row IDs.
type SelectionState struct {
	Category    string `json:"category"`
	Province    string `json:"province"`
	District    string `json:"district"`
	Institution string `json:"institution"`
	Designation string `json:"designation"`
	RDHS        string `json:"rdhs"`
}

// OptionSets holds the choices currently offered for each dependent field,
// plus the visibility flags derived from the selected category.
type OptionSets struct {
	Categories   []string `json:"categories"`
	Provinces    []string `json:"provinces"`
	Districts    []string `json:"districts"`
	Institutions []string `json:"institutions"`
	Designations []string `json:"designations"`

	// DesignationFreeText is true when the category takes a typed
	// designation instead of a constrained list.
	DesignationFreeText bool `json:"designation_free_text"`

	// LocationRequired is false for direct-location categories, which skip
	// the province and district steps entirely.
	LocationRequired bool `json:"location_required"`
}

// SelectionEngine drives the cascading category, province, district,
// institution, and designation fields. A change to one field clears its
// dependents and refetches their option sets; concurrent or superseded
// fetches are discarded via per-field generation counters so a slow query
// can never overwrite the options of a newer selection.
type SelectionEngine struct {
	store ReferenceStore

	mu    sync.Mutex
	state SelectionState
	opts  OptionSets
	gen   map[SelectionField]uint64
}

// NewSelectionEngine creates an engine over the given reference store
func NewSelectionEngine(store ReferenceStore) *SelectionEngine {
	return &SelectionEngine{
		store: store,
		gen:   make(map[SelectionField]uint64),
		opts:  OptionSets{LocationRequired: true},
	}
}

// Restore seeds the engine with a previously captured state without
// triggering any fetches. Used when a handler rebuilds the engine per
// request from the client's current form values.
func (e *SelectionEngine) Restore(state SelectionState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

// Snapshot returns the current state and option sets
func (e *SelectionEngine) Snapshot() (SelectionState, OptionSets) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.opts
}

// Set applies a new value to one field, clears the dependent fields per the
// cascade rules, and refreshes the dependent option sets. It blocks until
// the refresh completes, but a later Set on the same engine invalidates any
// in-flight fetches this call started.
func (e *SelectionEngine) Set(ctx context.Context, field SelectionField, value string) error {
	e.mu.Lock()

	switch field {
	case FieldCategory:
		e.state.Category = value
		e.state.Designation = ""
		e.state.Institution = ""
	case FieldProvince:
		e.state.Province = value
		e.state.District = ""
		e.state.Institution = ""
	case FieldDistrict:
		e.state.District = value
		e.state.Institution = ""
	case FieldInstitution:
		e.state.Institution = value
	case FieldDesignation:
		e.state.Designation = value
	case FieldRDHS:
		e.state.RDHS = value
	default:
		e.mu.Unlock()
		return nil
	}

	state := e.state
	e.mu.Unlock()

	switch field {
	case FieldCategory:
		return e.refreshForCategory(ctx, state)
	case FieldProvince:
		return e.refreshDependents(ctx, state, []SelectionField{FieldDistrict, FieldInstitution})
	case FieldDistrict:
		return e.refreshDependents(ctx, state, []SelectionField{FieldInstitution})
	}
	return nil
}

// refreshForCategory resolves the category's classification flags, applies
// the direct-location clearing rule, and refetches designations and
// institutions. Location fields are additionally cleared when the category
// skips them.
func (e *SelectionEngine) refreshForCategory(ctx context.Context, state SelectionState) error {
	var (
		category *models.Category
		err      error
	)
	if state.Category != "" {
		category, err = e.store.CategoryByName(ctx, state.Category)
		if err != nil {
			log.Printf("[SELECTION] Failed to resolve category %q: %v", state.Category, err)
		}
	}

	e.mu.Lock()
	if e.state.Category != state.Category {
		// A newer Set already replaced the category, drop this pass.
		e.mu.Unlock()
		return nil
	}
	e.opts.DesignationFreeText = category != nil && category.UsesTextDesignation()
	e.opts.LocationRequired = category == nil || !category.IsDirectLocation
	if !e.opts.LocationRequired {
		e.state.Province = ""
		e.state.District = ""
		e.state.RDHS = ""
		e.opts.Districts = nil
	}
	state = e.state
	e.mu.Unlock()

	if category == nil {
		e.commitOptions(FieldDesignation, nil)
		e.commitOptions(FieldInstitution, nil)
		return nil
	}

	var wg sync.WaitGroup
	desigGen := e.bumpGeneration(FieldDesignation)
	instGen := e.bumpGeneration(FieldInstitution)

	wg.Add(2)
	go func() {
		defer wg.Done()
		names := e.fetchDesignations(ctx, category)
		e.commitIfCurrent(FieldDesignation, desigGen, names)
	}()
	go func() {
		defer wg.Done()
		names := e.fetchInstitutions(ctx, category, state)
		e.commitIfCurrent(FieldInstitution, instGen, names)
	}()
	wg.Wait()
	return nil
}

// refreshDependents refetches the option sets of the given fields
// concurrently, committing each result only if no newer change superseded it
func (e *SelectionEngine) refreshDependents(ctx context.Context, state SelectionState, fields []SelectionField) error {
	var category *models.Category
	if state.Category != "" {
		var err error
		category, err = e.store.CategoryByName(ctx, state.Category)
		if err != nil {
			log.Printf("[SELECTION] Failed to resolve category %q: %v", state.Category, err)
		}
	}

	var wg sync.WaitGroup
	for _, field := range fields {
		gen := e.bumpGeneration(field)
		wg.Add(1)
		go func(field SelectionField, gen uint64) {
			defer wg.Done()
			var names []string
			switch field {
			case FieldDistrict:
				// Direct-location categories never offer districts.
				if category == nil || !category.IsDirectLocation {
					names = e.fetchDistricts(ctx, state)
				}
			case FieldInstitution:
				names = e.fetchInstitutions(ctx, category, state)
			}
			e.commitIfCurrent(field, gen, names)
		}(field, gen)
	}
	wg.Wait()
	return nil
}

// LoadBaseOptions fills the category and province lists, which do not
// depend on any selection
func (e *SelectionEngine) LoadBaseOptions(ctx context.Context) error {
	categories, err := e.store.Categories(ctx)
	if err != nil {
		log.Printf("[SELECTION] Failed to fetch categories: %v", err)
	}
	provinces, err := e.store.Provinces(ctx)
	if err != nil {
		log.Printf("[SELECTION] Failed to fetch provinces: %v", err)
	}

	e.mu.Lock()
	e.opts.Categories = nil
	for _, c := range categories {
		e.opts.Categories = append(e.opts.Categories, c.Name)
	}
	e.opts.Provinces = nil
	for _, p := range provinces {
		e.opts.Provinces = append(e.opts.Provinces, p.Name)
	}
	e.mu.Unlock()
	return nil
}

// RefreshAll rebuilds every option set for the current state. Used when an
// engine is restored from client values rather than built up change by
// change.
func (e *SelectionEngine) RefreshAll(ctx context.Context) error {
	if err := e.LoadBaseOptions(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	state := e.state
	e.mu.Unlock()

	if err := e.refreshForCategory(ctx, state); err != nil {
		return err
	}

	// refreshForCategory clears the location fields for direct-location
	// categories, so the district pass must read the state again.
	e.mu.Lock()
	state = e.state
	e.mu.Unlock()

	if state.Province != "" {
		return e.refreshDependents(ctx, state, []SelectionField{FieldDistrict})
	}
	return nil
}

func (e *SelectionEngine) bumpGeneration(field SelectionField) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen[field]++
	return e.gen[field]
}

// commitIfCurrent stores fetched options unless a newer fetch for the same
// field was started after this one
func (e *SelectionEngine) commitIfCurrent(field SelectionField, gen uint64, names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen[field] != gen {
		return
	}
	e.setOptionsLocked(field, names)
	e.clearInvalidLocked(field, names)
}

// commitOptions stores options unconditionally, bumping the generation so
// any in-flight fetch for the field is discarded
func (e *SelectionEngine) commitOptions(field SelectionField, names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen[field]++
	e.setOptionsLocked(field, names)
	e.clearInvalidLocked(field, names)
}

func (e *SelectionEngine) setOptionsLocked(field SelectionField, names []string) {
	switch field {
	case FieldDistrict:
		e.opts.Districts = names
	case FieldInstitution:
		e.opts.Institutions = names
	case FieldDesignation:
		e.opts.Designations = names
	}
}

// clearInvalidLocked drops a selected value that no longer appears in the
// field's refreshed option set. Free-text designations are exempt.
func (e *SelectionEngine) clearInvalidLocked(field SelectionField, names []string) {
	switch field {
	case FieldDistrict:
		if e.state.District != "" && !contains(names, e.state.District) {
			e.state.District = ""
		}
	case FieldInstitution:
		if e.state.Institution != "" && !contains(names, e.state.Institution) {
			e.state.Institution = ""
		}
	case FieldDesignation:
		if e.opts.DesignationFreeText {
			return
		}
		if e.state.Designation != "" && !contains(names, e.state.Designation) {
			e.state.Designation = ""
		}
	}
}

// Fetches fail open: an error yields an empty option set rather than a
// stuck form, and the cause is logged for the operator.

func (e *SelectionEngine) fetchDesignations(ctx context.Context, category *models.Category) []string {
	if category.UsesTextDesignation() {
		return nil
	}
	names, err := e.store.DesignationNames(ctx, category.ID)
	if err != nil {
		log.Printf("[SELECTION] Failed to fetch designations for %s: %v", category.Name, err)
		return nil
	}
	return names
}

func (e *SelectionEngine) fetchDistricts(ctx context.Context, state SelectionState) []string {
	if state.Province == "" {
		return nil
	}
	province, err := e.store.ProvinceByName(ctx, state.Province)
	if err != nil {
		log.Printf("[SELECTION] Failed to resolve province %q: %v", state.Province, err)
		return nil
	}
	districts, err := e.store.DistrictsByProvince(ctx, province.ID)
	if err != nil {
		log.Printf("[SELECTION] Failed to fetch districts for %s: %v", state.Province, err)
		return nil
	}
	names := make([]string, 0, len(districts))
	for _, d := range districts {
		names = append(names, d.Name)
	}
	return names
}

func (e *SelectionEngine) fetchInstitutions(ctx context.Context, category *models.Category, state SelectionState) []string {
	if category == nil {
		return nil
	}
	if category.IsDirectLocation {
		names, err := e.store.InstitutionNames(ctx, category.ID, "", "")
		if err != nil {
			log.Printf("[SELECTION] Failed to fetch institutions for %s: %v", category.Name, err)
			return nil
		}
		return names
	}
	// Standard categories need the full location path before institutions
	// can be offered.
	if state.Province == "" || state.District == "" {
		return nil
	}
	province, err := e.store.ProvinceByName(ctx, state.Province)
	if err != nil {
		log.Printf("[SELECTION] Failed to resolve province %q: %v", state.Province, err)
		return nil
	}
	district, err := e.store.DistrictByName(ctx, province.ID, state.District)
	if err != nil {
		log.Printf("[SELECTION] Failed to resolve district %q: %v", state.District, err)
		return nil
	}
	names, err := e.store.InstitutionNames(ctx, category.ID, province.ID, district.ID)
	if err != nil {
		log.Printf("[SELECTION] Failed to fetch institutions for %s: %v", category.Name, err)
		return nil
	}
	return names
}

func contains(names []string, value string) bool {
	for _, n := range names {
		if n == value {
			return true
		}
	}
	return false
}
