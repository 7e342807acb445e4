package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/config"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/formcache"
)

// setupHandlers wires the handler package against a sqlmock-backed database
func setupHandlers(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	sqlDB, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	database.SetDB(db)

	cfg, err := config.Load()
	require.NoError(t, err)

	log := zap.NewNop()
	formSvc := service.NewFormDefinitionService(db, formcache.NopCache{}, log)
	reorderSvc := service.NewReorderService(db, log)
	autoAssignSvc := service.NewAutoAssignService(db, log)
	exportSvc := service.NewExportService(db)
	Init(cfg, formSvc, nil, reorderSvc, autoAssignSvc, exportSvc, nil)

	return dbmock
}

// request runs one handler through a fresh echo context
func request(t *testing.T, method, target, body string, h echo.HandlerFunc, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(pathParams))
	values := make([]string, 0, len(pathParams))
	for name, value := range pathParams {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))
	return rec
}
