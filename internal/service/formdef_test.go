package service

import (
	"context"
	"testing"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/pkg/formcache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_UnknownBrand(t *testing.T) {
	mock, db := setupMockDB(t)
	svc := NewFormDefinitionService(db, formcache.NopCache{}, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active"}))

	_, err := svc.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrBrandNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_InactiveBrandReadsNoFormRows(t *testing.T) {
	mock, db := setupMockDB(t)
	svc := NewFormDefinitionService(db, formcache.NopCache{}, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "active"}).
		AddRow(1, "Focus Radiology", "focus-radiology", false)
	mock.ExpectQuery(`SELECT \* FROM "brands"`).WillReturnRows(rows)

	_, err := svc.Load(context.Background(), "focus-radiology")
	assert.ErrorIs(t, err, ErrBrandInactive)

	// No section, item or option queries were issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_BuildsOrderedTree(t *testing.T) {
	mock, db := setupMockDB(t)
	svc := NewFormDefinitionService(db, formcache.NopCache{}, zap.NewNop())

	mock.ExpectQuery(`SELECT \* FROM "brands"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "active"}).
			AddRow(1, "Focus Radiology", "focus-radiology", true))

	mock.ExpectQuery(`SELECT \* FROM "clinics"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "name", "address", "sort_order"}).
			AddRow(10, 1, "Box Hill", "12 Main St", 0))

	mock.ExpectQuery(`SELECT \* FROM "sections"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "brand_id", "title", "sort_order"}).
			AddRow(5, 1, "A4 Request Pads", 0).
			AddRow(6, 1, "Empty Section", 1))

	mock.ExpectQuery(`SELECT \* FROM "items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "section_id", "name", "code", "field_type", "required", "sort_order"}).
			AddRow(20, 5, "A4 GP Referral Pad", "A4GP", "select", true, 0).
			AddRow(21, 5, "Bad Type Item", "", "holographic", false, 1))

	mock.ExpectQuery(`SELECT \* FROM "item_options"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "value", "label", "sort_order"}).
			AddRow(30, 20, "1 box", "", 0).
			AddRow(31, 20, "other", "Other quantity", 1))

	def, err := svc.Load(context.Background(), "Focus-Radiology")
	require.NoError(t, err)

	assert.Equal(t, uint(1), def.BrandID)
	assert.Equal(t, "focus-radiology", def.Slug)
	require.Len(t, def.Clinics, 1)
	assert.Equal(t, "Box Hill", def.Clinics[0].Name)

	// The empty section is filtered out
	require.Len(t, def.Sections, 1)
	sec := def.Sections[0]
	assert.Equal(t, "A4 Request Pads", sec.Title)
	require.Len(t, sec.Items, 2)

	assert.Equal(t, "A4GP", sec.Items[0].Code)
	assert.True(t, sec.Items[0].Required)
	require.Len(t, sec.Items[0].Options, 2)
	// Empty labels fall back to the value
	assert.Equal(t, "1 box", sec.Items[0].Options[0].Label)
	assert.Equal(t, "Other quantity", sec.Items[0].Options[1].Label)

	// Unknown field types are coerced to text
	assert.Equal(t, "text", sec.Items[1].FieldType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CacheHitSkipsDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := formcache.NewRedisCache(client, time.Minute)

	mock, db := setupMockDB(t)
	svc := NewFormDefinitionService(db, cache, zap.NewNop())

	require.NoError(t, cache.Set(context.Background(), "focus-radiology",
		`{"brand_id":1,"brand_name":"Focus Radiology","slug":"focus-radiology","clinics":[],"sections":[]}`))

	def, err := svc.Load(context.Background(), "focus-radiology")
	require.NoError(t, err)
	assert.Equal(t, "Focus Radiology", def.BrandName)

	// No SQL expectations were registered: a DB read would have failed
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidate_DropsCachedDefinition(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := formcache.NewRedisCache(client, time.Minute)

	_, db := setupMockDB(t)
	svc := NewFormDefinitionService(db, cache, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "focus-radiology", `{}`))

	svc.Invalidate(ctx, "focus-radiology")

	_, err := cache.Get(ctx, "focus-radiology")
	assert.ErrorIs(t, err, formcache.ErrMiss)
}
