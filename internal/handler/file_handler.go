package handler

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/pkg/storage"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Upload MIME allow-list
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/svg+xml":   true,
}

// UploadFile handles a multipart asset upload
func UploadFile(c echo.Context) error {
	log := logger.FromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file provided"})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		log.Warn("Rejected upload with disallowed content type",
			zap.String("content_type", contentType),
			zap.String("file_name", fileHeader.Filename))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File type not allowed. Allowed: PDF, PNG, JPEG, SVG"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read upload"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error("Failed to read uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read upload"})
	}

	storedName := fmt.Sprintf("%d-%s%s",
		time.Now().Unix(), uuid.New().String(), strings.ToLower(path.Ext(fileHeader.Filename)))
	key := "uploads/" + storedName

	publicURL, err := blobs.Put(c.Request().Context(), key, contentType, data)
	if err != nil {
		log.Error("Failed to store uploaded file", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to store upload"})
	}

	record := model.UploadedFile{
		FileName:     storedName,
		OriginalName: fileHeader.Filename,
		ContentType:  contentType,
		Size:         fileHeader.Size,
		StoragePath:  key,
		PublicURL:    publicURL,
	}
	if brandID := c.FormValue("brand_id"); brandID != "" {
		var brand model.Brand
		if err := database.GetDB().First(&brand, brandID).Error; err == nil {
			record.BrandID = &brand.ID
		}
	}

	if err := database.GetDB().Create(&record).Error; err != nil {
		log.Error("Failed to persist file metadata", zap.String("key", key), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record upload"})
	}

	prometheus.RecordEntityOperation("file", "upload")
	log.Info("File uploaded",
		zap.Uint("file_id", record.ID),
		zap.String("original_name", record.OriginalName),
		zap.Int64("size", record.Size))
	return c.JSON(http.StatusCreated, record)
}

// ListFiles handles retrieving uploaded file metadata
func ListFiles(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Order("created_at desc")
	if brandID := c.QueryParam("brand_id"); brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}

	var files []model.UploadedFile
	if err := query.Find(&files).Error; err != nil {
		log.Error("Failed to list files", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve files"})
	}

	return c.JSON(http.StatusOK, files)
}

// DeleteFile removes a stored asset. The blob delete is best-effort: a
// storage failure is logged but never blocks the metadata row deletion.
func DeleteFile(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var record model.UploadedFile
	if err := database.GetDB().First(&record, id).Error; err != nil {
		log.Warn("File not found for deletion", zap.String("file_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "File not found"})
	}

	if err := blobs.Delete(c.Request().Context(), record.StoragePath); err != nil {
		log.Warn("Blob delete failed, removing metadata anyway",
			zap.String("storage_path", record.StoragePath),
			zap.Error(err))
	}

	if err := database.GetDB().Delete(&record).Error; err != nil {
		log.Error("Failed to delete file metadata", zap.String("file_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete file"})
	}

	prometheus.RecordEntityOperation("file", "delete")
	log.Info("File deleted", zap.Uint("file_id", record.ID), zap.String("file_name", record.FileName))
	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
}

// AutoAssignFiles links uploaded sample files to items by code prefix
func AutoAssignFiles(c echo.Context) error {
	log := logger.FromContext(c)

	results, err := autoAssign.Run(c.Request().Context())
	if err != nil {
		log.Error("Auto-assign failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Auto-assign failed"})
	}

	prometheus.RecordEntityOperation("file", "auto_assign")
	log.Info("Auto-assign completed", zap.Int("assigned", len(results)))
	return c.JSON(http.StatusOK, echo.Map{"assigned": results})
}

// ServeFile streams a blob-stored asset. SVG paths are always served as
// image/svg+xml regardless of stored metadata.
func ServeFile(c echo.Context) error {
	log := logger.FromContext(c)
	pathname := c.Param("*")

	rc, err := blobs.Open(c.Request().Context(), pathname)
	if err != nil {
		if err == storage.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "File not found"})
		}
		log.Error("Failed to open blob", zap.String("path", pathname), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read file"})
	}
	defer rc.Close()

	contentType := "application/octet-stream"
	if strings.HasSuffix(strings.ToLower(pathname), ".svg") {
		contentType = "image/svg+xml"
	} else {
		var record model.UploadedFile
		if err := database.GetDB().Where("storage_path = ?", pathname).First(&record).Error; err == nil && record.ContentType != "" {
			contentType = record.ContentType
		} else if strings.HasSuffix(strings.ToLower(pathname), ".pdf") {
			contentType = "application/pdf"
		}
	}

	return c.Stream(http.StatusOK, contentType, rc)
}
