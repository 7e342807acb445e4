package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SubmitOrder runs the public order submission pipeline
func SubmitOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req service.SubmitOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid submission payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Invalid request data"})
	}

	result, err := pipeline.Submit(c.Request().Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			log.Warn("Order submission rejected",
				zap.Uint("brand_id", req.BrandID),
				zap.Int("field_errors", len(verr.Fields)))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"success": false,
				"error":   "Validation failed",
				"fields":  verr.Fields,
			})
		case errors.Is(err, service.ErrBrandNotFound), errors.Is(err, service.ErrBrandInactive):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Form not found"})
		default:
			log.Error("Order submission failed", zap.Uint("brand_id", req.BrandID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Failed to submit order"})
		}
	}

	log.Info("Order submitted",
		zap.Uint("submission_id", result.SubmissionID),
		zap.Uint("brand_id", req.BrandID))
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"submission_id": result.SubmissionID,
		"pdf_url":       result.PDFURL,
	})
}

// ListSubmissions handles retrieving submissions with optional filtering
func ListSubmissions(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Preload("Brand").Order("created_at desc")
	if brandID := c.QueryParam("brand_id"); brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var submissions []model.Submission
	if err := query.Find(&submissions).Error; err != nil {
		log.Error("Failed to list submissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve submissions"})
	}

	return c.JSON(http.StatusOK, submissions)
}

// GetSubmission handles retrieving a single submission by ID
func GetSubmission(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var submission model.Submission
	if err := database.GetDB().Preload("Brand").First(&submission, id).Error; err != nil {
		log.Warn("Submission not found", zap.String("submission_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Submission not found"})
	}

	return c.JSON(http.StatusOK, submission)
}

// CompleteRequest carries the dispatch metadata of a completed order
type CompleteRequest struct {
	Courier       string `json:"courier"`
	TrackingLink  string `json:"tracking_link"`
	DispatchNotes string `json:"dispatch_notes"`
}

// CompleteSubmission marks a pending submission as completed with dispatch details
func CompleteSubmission(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("submission_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var submission model.Submission
	if err := database.GetDB().First(&submission, id).Error; err != nil {
		log.Warn("Submission not found", zap.String("submission_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Submission not found"})
	}

	now := time.Now()
	submission.Status = model.StatusCompleted
	submission.Courier = req.Courier
	submission.TrackingLink = req.TrackingLink
	submission.DispatchNotes = req.DispatchNotes
	submission.DispatchedAt = &now

	if err := database.GetDB().Save(&submission).Error; err != nil {
		log.Error("Failed to complete submission", zap.String("submission_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to complete submission"})
	}

	prometheus.RecordEntityOperation("submission", "complete")
	log.Info("Submission completed",
		zap.Uint("submission_id", submission.ID),
		zap.String("courier", req.Courier))
	return c.JSON(http.StatusOK, submission)
}

// RetrySubmission re-runs the failed PDF/email steps of a submission
func RetrySubmission(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var submission model.Submission
	if err := database.GetDB().First(&submission, id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Submission not found"})
	}

	updated, err := pipeline.Retry(c.Request().Context(), submission.ID)
	if err != nil {
		log.Error("Failed to retry submission steps", zap.String("submission_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retry submission"})
	}

	prometheus.RecordEntityOperation("submission", "retry")
	log.Info("Submission steps retried",
		zap.Uint("submission_id", updated.ID),
		zap.String("pdf_status", updated.PDFStatus),
		zap.String("email_status", updated.EmailStatus))
	return c.JSON(http.StatusOK, updated)
}

// BulkDeleteRequest names the submissions to remove
type BulkDeleteRequest struct {
	IDs []uint `json:"ids"`
}

// BulkDeleteSubmissions is the admin escape hatch for clearing submissions
func BulkDeleteSubmissions(c echo.Context) error {
	log := logger.FromContext(c)

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if len(req.IDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No submission ids given"})
	}

	result := database.GetDB().Where("id IN ?", req.IDs).Delete(&model.Submission{})
	if result.Error != nil {
		log.Error("Failed to delete submissions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete submissions"})
	}

	prometheus.RecordEntityOperation("submission", "bulk_delete")
	log.Info("Submissions deleted", zap.Int64("count", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"deleted": result.RowsAffected})
}

// ExportSubmissions streams an XLSX workbook of submissions
func ExportSubmissions(c echo.Context) error {
	log := logger.FromContext(c)

	var brandID uint
	if raw := c.QueryParam("brand_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid brand_id"})
		}
		brandID = uint(parsed)
	}

	buf, err := exporter.ExportSubmissions(c.Request().Context(), brandID)
	if err != nil {
		log.Error("Failed to export submissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to export submissions"})
	}

	prometheus.RecordEntityOperation("submission", "export")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="submissions.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
