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

func TestListItems_OrderedWithOptions(t *testing.T) {
	dbmock := setupHandlers(t)

	dbmock.ExpectQuery(`SELECT \* FROM "items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "name", "code", "field_type", "sort_order"}).
			AddRow(20, 5, "A4 GP Referral Pad", "A4GP", "select", 0).
			AddRow(21, 5, "DL Appointment Card", "DL01", "text", 1))
	dbmock.ExpectQuery(`SELECT \* FROM "item_options"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "value", "label", "sort_order"}).
			AddRow(30, 20, "2 boxes", "", 0).
			AddRow(31, 20, "other", "Other quantity", 1))

	rec := request(t, http.MethodGet, "/api/admin/items?section_id=5", "", ListItems, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []model.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "A4GP", items[0].Code)
	require.Len(t, items[0].Options, 2)
	assert.Equal(t, "2 boxes", items[0].Options[0].Value)
	assert.Empty(t, items[1].Options)
	assert.NoError(t, dbmock.ExpectationsWereMet())
}
