package handler

import (
	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/config"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/pkg/storage"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Package-level collaborators, wired once at startup
var (
	appConfig  *config.Config
	forms      *service.FormDefinitionService
	pipeline   *service.SubmissionService
	reorder    *service.ReorderService
	autoAssign *service.AutoAssignService
	exporter   *service.ExportService
	blobs      storage.BlobStore
)

// Init wires the handler package with its collaborators
func Init(cfg *config.Config, formSvc *service.FormDefinitionService, submissionSvc *service.SubmissionService, reorderSvc *service.ReorderService, autoAssignSvc *service.AutoAssignService, exportSvc *service.ExportService, blobStore storage.BlobStore) {
	appConfig = cfg
	forms = formSvc
	pipeline = submissionSvc
	reorder = reorderSvc
	autoAssign = autoAssignSvc
	exporter = exportSvc
	blobs = blobStore
}

// invalidateFormCache drops the cached form definition of the brand owning
// the given id, looked up by slug. Called after every structure mutation.
func invalidateFormCache(c echo.Context, brandID uint) {
	var brand model.Brand
	if err := database.GetDB().Select("slug").First(&brand, brandID).Error; err != nil {
		logger.FromContext(c).Warn("Could not resolve brand for cache invalidation",
			zap.Uint("brand_id", brandID), zap.Error(err))
		return
	}
	forms.Invalidate(c.Request().Context(), brand.Slug)
}
