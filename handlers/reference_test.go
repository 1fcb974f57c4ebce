package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"gnoa_membership_go/models"
	"gnoa_membership_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetDistrictsHandler(t *testing.T) {
	testDB := setupTestDB(t)
	seedReference(t, testDB)

	t.Run("JSON", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/districts?province=Western", nil)
		c.QueryParams().Set("province", "Western")

		assert.NoError(t, GetDistrictsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var districts []models.District
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &districts))
		assert.Len(t, districts, 3)
		assert.Equal(t, "Colombo", districts[0].Name)
	})

	t.Run("HTMXFragment", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/districts?province=Western", nil)
		c.QueryParams().Set("province", "Western")
		c.Request().Header.Set("HX-Request", "true")

		assert.NoError(t, GetDistrictsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<option value="">Select a district</option>`)
		assert.Contains(t, body, `<option value="Colombo">Colombo</option>`)
	})

	t.Run("MissingProvince", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/reference/districts", nil)

		err := GetDistrictsHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("MissingProvinceHTMXStaysEmpty", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/districts", nil)
		c.Request().Header.Set("HX-Request", "true")

		assert.NoError(t, GetDistrictsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `<option value="">Select a district</option>`, rec.Body.String())
	})
}

func TestGetDesignationsHandler(t *testing.T) {
	testDB := setupTestDB(t)
	seedReference(t, testDB)

	t.Run("ListCategory", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/designations", nil)
		c.QueryParams().Set("category", "Hospital Services")

		assert.NoError(t, GetDesignationsHandler(c))

		var resp struct {
			FreeText     bool     `json:"free_text"`
			Designations []string `json:"designations"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.FreeText)
		assert.Len(t, resp.Designations, 7)
	})

	t.Run("TextCategory", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/designations", nil)
		c.QueryParams().Set("category", "Public Health")

		assert.NoError(t, GetDesignationsHandler(c))

		var resp struct {
			FreeText     bool     `json:"free_text"`
			Designations []string `json:"designations"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.FreeText)
		assert.Empty(t, resp.Designations)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/reference/designations", nil)
		c.QueryParams().Set("category", "Astrology")

		err := GetDesignationsHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})
}

func TestGetInstitutionsHandler(t *testing.T) {
	testDB := setupTestDB(t)
	seedReference(t, testDB)

	t.Run("DirectLocationSkipsProvince", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/reference/institutions", nil)
		c.QueryParams().Set("category", "Line Ministry")

		assert.NoError(t, GetInstitutionsHandler(c))

		var names []string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
		assert.Contains(t, names, "Directorate of Nursing")
	})

	t.Run("StandardCategoryNeedsLocation", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/reference/institutions", nil)
		c.QueryParams().Set("category", "Hospital Services")

		err := GetInstitutionsHandler(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func postSelection(t *testing.T, body string) selectionResponse {
	_, c, rec := setupEcho(http.MethodPost, "/api/selection", strings.NewReader(body))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	assert.NoError(t, SelectionHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp selectionResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSelectionHandler(t *testing.T) {
	testDB := setupTestDB(t)
	seedReference(t, testDB)

	t.Run("InitialLoad", func(t *testing.T) {
		resp := postSelection(t, `{}`)
		assert.Len(t, resp.Options.Categories, 7)
		assert.Len(t, resp.Options.Provinces, 9)
	})

	t.Run("CategorySelection", func(t *testing.T) {
		resp := postSelection(t, `{"field":"category","value":"Hospital Services"}`)
		assert.Equal(t, "Hospital Services", resp.State.Category)
		assert.Len(t, resp.Options.Designations, 7)
		assert.False(t, resp.Options.DesignationFreeText)
		assert.True(t, resp.Options.LocationRequired)
	})

	t.Run("CategoryChangeClearsDependents", func(t *testing.T) {
		state := services.SelectionState{
			Category: "Hospital Services",
			Province: "Western",
			District: "Colombo",
		}
		payload, err := json.Marshal(map[string]interface{}{
			"state": state,
			"field": "category",
			"value": "Line Ministry",
		})
		assert.NoError(t, err)

		resp := postSelection(t, string(payload))
		assert.Equal(t, "Line Ministry", resp.State.Category)
		assert.Empty(t, resp.State.Province)
		assert.Empty(t, resp.State.District)
		assert.True(t, resp.Options.DesignationFreeText)
		assert.False(t, resp.Options.LocationRequired)
		assert.Contains(t, resp.Options.Institutions, "Directorate of Nursing")
	})

	t.Run("ProvinceSelection", func(t *testing.T) {
		state := services.SelectionState{Category: "Hospital Services"}
		payload, err := json.Marshal(map[string]interface{}{
			"state": state,
			"field": "province",
			"value": "Western",
		})
		assert.NoError(t, err)

		resp := postSelection(t, string(payload))
		assert.Equal(t, "Western", resp.State.Province)
		assert.Len(t, resp.Options.Districts, 3)
	})
}
