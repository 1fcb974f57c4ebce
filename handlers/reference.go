package handlers

import (
	"html"
	"net/http"

	"gnoa_membership_go/db"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
)

// optionsHTML renders a name list as <option> elements for HTMX selects
func optionsHTML(placeholder string, names []string) string {
	out := `<option value="">` + html.EscapeString(placeholder) + `</option>`
	for _, name := range names {
		escaped := html.EscapeString(name)
		out += `<option value="` + escaped + `">` + escaped + `</option>`
	}
	return out
}

// GetCategoriesHandler returns all active categories with their flags
// GET /api/reference/categories
func GetCategoriesHandler(c echo.Context) error {
	store := services.NewReferenceStore(db.DB)
	categories, err := store.Categories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch categories")
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		names := make([]string, 0, len(categories))
		for _, cat := range categories {
			names = append(names, cat.Name)
		}
		return c.HTML(http.StatusOK, optionsHTML("Select a category", names))
	}
	return c.JSON(http.StatusOK, categories)
}

// GetProvincesHandler returns all active provinces
// GET /api/reference/provinces
func GetProvincesHandler(c echo.Context) error {
	store := services.NewReferenceStore(db.DB)
	provinces, err := store.Provinces(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch provinces")
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		names := make([]string, 0, len(provinces))
		for _, p := range provinces {
			names = append(names, p.Name)
		}
		return c.HTML(http.StatusOK, optionsHTML("Select a province", names))
	}
	return c.JSON(http.StatusOK, provinces)
}

// GetDistrictsHandler returns the districts of a province
// GET /api/reference/districts?province=Western
func GetDistrictsHandler(c echo.Context) error {
	provinceName := c.QueryParam("province")
	if provinceName == "" {
		if c.Request().Header.Get("HX-Request") == "true" {
			return c.HTML(http.StatusOK, optionsHTML("Select a district", nil))
		}
		return echo.NewHTTPError(http.StatusBadRequest, "province is required")
	}

	ctx := c.Request().Context()
	store := services.NewReferenceStore(db.DB)

	province, err := store.ProvinceByName(ctx, provinceName)
	if err != nil {
		if c.Request().Header.Get("HX-Request") == "true" {
			return c.HTML(http.StatusOK, optionsHTML("Select a district", nil))
		}
		return echo.NewHTTPError(http.StatusNotFound, "Province not found")
	}

	districts, err := store.DistrictsByProvince(ctx, province.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch districts")
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		names := make([]string, 0, len(districts))
		for _, d := range districts {
			names = append(names, d.Name)
		}
		return c.HTML(http.StatusOK, optionsHTML("Select a district", names))
	}
	return c.JSON(http.StatusOK, districts)
}

// GetDesignationsHandler returns a category's designation list. Text-input
// categories yield an empty list; the client renders a text field instead.
// GET /api/reference/designations?category=Hospital+Services
func GetDesignationsHandler(c echo.Context) error {
	categoryName := c.QueryParam("category")
	if categoryName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}

	ctx := c.Request().Context()
	store := services.NewReferenceStore(db.DB)

	category, err := store.CategoryByName(ctx, categoryName)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	var names []string
	if !category.UsesTextDesignation() {
		names, err = store.DesignationNames(ctx, category.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch designations")
		}
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		return c.HTML(http.StatusOK, optionsHTML("Select a designation", names))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"free_text":    category.UsesTextDesignation(),
		"designations": names,
	})
}

// GetInstitutionsHandler returns institutions for the selected scope
// GET /api/reference/institutions?category=...&province=...&district=...
func GetInstitutionsHandler(c echo.Context) error {
	categoryName := c.QueryParam("category")
	if categoryName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}

	ctx := c.Request().Context()
	store := services.NewReferenceStore(db.DB)

	category, err := store.CategoryByName(ctx, categoryName)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}

	provinceID, districtID := "", ""
	if !category.IsDirectLocation {
		provinceName := c.QueryParam("province")
		districtName := c.QueryParam("district")
		if provinceName == "" || districtName == "" {
			if c.Request().Header.Get("HX-Request") == "true" {
				return c.HTML(http.StatusOK, optionsHTML("Select an institution", nil))
			}
			return echo.NewHTTPError(http.StatusBadRequest, "province and district are required")
		}

		province, err := store.ProvinceByName(ctx, provinceName)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "Province not found")
		}
		district, err := store.DistrictByName(ctx, province.ID, districtName)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "District not found")
		}
		provinceID, districtID = province.ID, district.ID
	}

	names, err := store.InstitutionNames(ctx, category.ID, provinceID, districtID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch institutions")
	}

	if c.Request().Header.Get("HX-Request") == "true" {
		return c.HTML(http.StatusOK, optionsHTML("Select an institution", names))
	}
	return c.JSON(http.StatusOK, names)
}

type selectionRequest struct {
	State services.SelectionState `json:"state"`
	Field string                  `json:"field"`
	Value string                  `json:"value"`
}

type selectionResponse struct {
	State   services.SelectionState `json:"state"`
	Options services.OptionSets     `json:"options"`
}

// SelectionHandler applies one field change to the cascading work-place
// selection and returns the updated state plus the refreshed option sets.
// The server owns the cascade: dependent fields the change invalidates come
// back cleared.
// POST /api/selection
func SelectionHandler(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	ctx := c.Request().Context()
	engine := services.NewSelectionEngine(services.NewReferenceStore(db.DB))
	engine.Restore(req.State)

	if req.Field != "" {
		if err := engine.Set(ctx, services.SelectionField(req.Field), req.Value); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to apply selection")
		}
	}

	// Rebuild every option set for the resulting state so the client can
	// rerender the whole cascade from one response.
	if err := engine.RefreshAll(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load options")
	}

	state, options := engine.Snapshot()
	return c.JSON(http.StatusOK, selectionResponse{State: state, Options: options})
}
