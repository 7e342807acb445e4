package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
)

func TestUpdateBrand_PartialUpdateKeepsUnsetFields(t *testing.T) {
	dbmock := setupHandlers(t)

	dbmock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active", "logo_url", "recipient_emails"}).
			AddRow(3, "Sunshine Radiology", "sunshine-radiology", true, "/files/logos/sr.png", "orders@sr.example"))
	dbmock.ExpectBegin()
	dbmock.ExpectExec(`UPDATE "brands"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	rec := request(t, http.MethodPut, "/api/admin/brands/3",
		`{"name":"Sunshine Radiology Group"}`, UpdateBrand,
		map[string]string{"id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Fields absent from the payload keep their stored values
	var brand model.Brand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brand))
	assert.Equal(t, "Sunshine Radiology Group", brand.Name)
	assert.Equal(t, "sunshine-radiology", brand.Slug)
	assert.Equal(t, "/files/logos/sr.png", brand.LogoURL)
	assert.Equal(t, "orders@sr.example", brand.RecipientEmails)
	assert.True(t, brand.Active)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}

func TestUpdateBrand_ExplicitClear(t *testing.T) {
	dbmock := setupHandlers(t)

	dbmock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active", "logo_url", "recipient_emails"}).
			AddRow(3, "Sunshine Radiology", "sunshine-radiology", true, "/files/logos/sr.png", "orders@sr.example"))
	dbmock.ExpectBegin()
	dbmock.ExpectExec(`UPDATE "brands"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbmock.ExpectCommit()

	rec := request(t, http.MethodPut, "/api/admin/brands/3",
		`{"logo_url":"","recipient_emails":""}`, UpdateBrand,
		map[string]string{"id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)

	var brand model.Brand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brand))
	assert.Empty(t, brand.LogoURL)
	assert.Empty(t, brand.RecipientEmails)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
