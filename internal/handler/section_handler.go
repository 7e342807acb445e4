package handler

import (
	"errors"
	"net/http"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SectionRequest defines the structure for section creation/update requests
type SectionRequest struct {
	BrandID uint   `json:"brand_id"`
	Title   string `json:"title"`
}

// ReorderRequest carries the full ordered id list for one sibling scope
type ReorderRequest struct {
	BrandID    uint   `json:"brand_id,omitempty"`
	SectionID  uint   `json:"section_id,omitempty"`
	OrderedIDs []uint `json:"ordered_ids"`
}

// ListSections handles retrieving the sections of a brand in display order
func ListSections(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("items.sort_order asc")
	}).Preload("Items.Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("item_options.sort_order asc")
	}).Order("sort_order asc")

	if brandID := c.QueryParam("brand_id"); brandID != "" {
		query = query.Where("brand_id = ?", brandID)
	}

	var sections []model.Section
	if err := query.Find(&sections).Error; err != nil {
		log.Error("Failed to list sections", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve sections"})
	}

	return c.JSON(http.StatusOK, sections)
}

// CreateSection handles creating a new section at the end of the brand's list
func CreateSection(c echo.Context) error {
	log := logger.FromContext(c)

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.BrandID == 0 || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Brand and title are required"})
	}

	var brandCount int64
	database.GetDB().Model(&model.Brand{}).Where("id = ?", req.BrandID).Count(&brandCount)
	if brandCount == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	// New sections land at the end of the list
	position, err := service.NextSortOrder(database.GetDB(), &model.Section{}, "brand_id", req.BrandID)
	if err != nil {
		log.Error("Failed to compute sort order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create section"})
	}

	section := model.Section{
		BrandID:   req.BrandID,
		Title:     req.Title,
		SortOrder: position,
	}
	if err := database.GetDB().Create(&section).Error; err != nil {
		log.Error("Failed to create section", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create section"})
	}

	invalidateFormCache(c, section.BrandID)
	prometheus.RecordEntityOperation("section", "create")
	log.Info("Section created",
		zap.Uint("section_id", section.ID),
		zap.Uint("brand_id", section.BrandID),
		zap.Int("sort_order", section.SortOrder))
	return c.JSON(http.StatusCreated, section)
}

// UpdateSection handles renaming a section
func UpdateSection(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req SectionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("section_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var section model.Section
	if err := database.GetDB().First(&section, id).Error; err != nil {
		log.Warn("Section not found for update", zap.String("section_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Section not found"})
	}

	if req.Title != "" {
		section.Title = req.Title
	}
	if err := database.GetDB().Save(&section).Error; err != nil {
		log.Error("Failed to update section", zap.String("section_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update section"})
	}

	invalidateFormCache(c, section.BrandID)
	prometheus.RecordEntityOperation("section", "update")
	return c.JSON(http.StatusOK, section)
}

// DeleteSection handles deleting a section and its items
func DeleteSection(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var section model.Section
	if err := database.GetDB().First(&section, id).Error; err != nil {
		log.Warn("Section not found for deletion", zap.String("section_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Section not found"})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var itemIDs []uint
		if err := tx.Model(&model.Item{}).Where("section_id = ?", section.ID).Pluck("id", &itemIDs).Error; err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("item_id IN ?", itemIDs).Delete(&model.ItemOption{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("section_id = ?", section.ID).Delete(&model.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&section).Error
	})
	if err != nil {
		log.Error("Failed to delete section", zap.String("section_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete section"})
	}

	invalidateFormCache(c, section.BrandID)
	prometheus.RecordEntityOperation("section", "delete")
	log.Info("Section deleted", zap.Uint("section_id", section.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Section deleted successfully"})
}

// ReorderSections handles persisting a new section order for a brand
func ReorderSections(c echo.Context) error {
	log := logger.FromContext(c)

	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.BrandID == 0 || len(req.OrderedIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Brand and ordered ids are required"})
	}

	if err := reorder.ReorderSections(c.Request().Context(), req.BrandID, req.OrderedIDs); err != nil {
		if errors.Is(err, service.ErrOrderMismatch) {
			log.Warn("Section reorder rejected",
				zap.Uint("brand_id", req.BrandID),
				zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Ordered ids do not match the brand's sections"})
		}
		log.Error("Failed to reorder sections", zap.Uint("brand_id", req.BrandID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to reorder sections"})
	}

	invalidateFormCache(c, req.BrandID)
	prometheus.RecordEntityOperation("section", "reorder")
	log.Info("Sections reordered",
		zap.Uint("brand_id", req.BrandID),
		zap.Int("count", len(req.OrderedIDs)))

	// Return the persisted order so clients can reconcile optimistic state
	var sections []model.Section
	if err := database.GetDB().Where("brand_id = ?", req.BrandID).Order("sort_order asc").Find(&sections).Error; err != nil {
		log.Error("Failed to reload sections after reorder", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "sections": sections})
}
