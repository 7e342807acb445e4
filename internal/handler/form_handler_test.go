package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetForm_UnknownBrand(t *testing.T) {
	dbmock := setupHandlers(t)
	dbmock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := request(t, http.MethodGet, "/api/forms/ghost", "", GetForm,
		map[string]string{"slug": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetForm_InactiveBrand(t *testing.T) {
	dbmock := setupHandlers(t)
	dbmock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active"}).
			AddRow(3, "Sunshine Radiology", "sunshine-radiology", false))

	rec := request(t, http.MethodGet, "/api/forms/sunshine-radiology", "", GetForm,
		map[string]string{"slug": "sunshine-radiology"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An inactive brand never exposes its form structure
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

func TestGetForm_ActiveBrand(t *testing.T) {
	dbmock := setupHandlers(t)
	dbmock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active", "logo_url"}).
			AddRow(3, "Sunshine Radiology", "sunshine-radiology", true, "/files/logos/sr.png"))
	dbmock.ExpectQuery(`SELECT \* FROM "clinics"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "name", "address"}).
			AddRow(9, 3, "Footscray Clinic", "22 Sample Rd"))
	dbmock.ExpectQuery(`SELECT \* FROM "sections"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "title"}))

	rec := request(t, http.MethodGet, "/api/forms/sunshine-radiology", "", GetForm,
		map[string]string{"slug": "sunshine-radiology"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "sunshine-radiology", body["slug"])
	assert.Equal(t, "Sunshine Radiology", body["brand_name"])
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
