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

// ItemOptionRequest is one option row inside an item payload
type ItemOptionRequest struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ItemRequest defines the structure for item creation/update requests
type ItemRequest struct {
	SectionID   uint                `json:"section_id"`
	Name        string              `json:"name"`
	Code        string              `json:"code"`
	FieldType   string              `json:"field_type"`
	Placeholder string              `json:"placeholder"`
	Description string              `json:"description"`
	Required    *bool               `json:"required"`
	SampleLink  string              `json:"sample_link"`
	Options     []ItemOptionRequest `json:"options"`
}

func validateItemRequest(req *ItemRequest) string {
	if req.Name == "" {
		return "Name is required"
	}
	if req.FieldType != "" && !model.IsValidFieldType(req.FieldType) {
		return "Unknown field type"
	}
	if model.IsChoiceField(req.FieldType) && len(req.Options) == 0 {
		return "Choice fields require at least one option"
	}
	return ""
}

// ListItems handles retrieving items in display order, optionally scoped to
// one section
func ListItems(c echo.Context) error {
	log := logger.FromContext(c)

	query := database.GetDB().Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("item_options.sort_order asc")
	}).Order("sort_order asc")

	if sectionID := c.QueryParam("section_id"); sectionID != "" {
		query = query.Where("section_id = ?", sectionID)
	}

	var items []model.Item
	if err := query.Find(&items).Error; err != nil {
		log.Error("Failed to list items", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve items"})
	}

	return c.JSON(http.StatusOK, items)
}

// CreateItem handles creating a new item at the end of its section's list
func CreateItem(c echo.Context) error {
	log := logger.FromContext(c)

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.SectionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Section is required"})
	}
	if msg := validateItemRequest(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	var section model.Section
	if err := database.GetDB().First(&section, req.SectionID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Section not found"})
	}

	fieldType := req.FieldType
	if fieldType == "" {
		fieldType = model.FieldText
	}
	required := false
	if req.Required != nil {
		required = *req.Required
	}

	// New items land at the end of the list
	position, err := service.NextSortOrder(database.GetDB(), &model.Item{}, "section_id", req.SectionID)
	if err != nil {
		log.Error("Failed to compute sort order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create item"})
	}

	item := model.Item{
		SectionID:   req.SectionID,
		Name:        req.Name,
		Code:        req.Code,
		FieldType:   fieldType,
		Placeholder: req.Placeholder,
		Description: req.Description,
		Required:    required,
		SampleLink:  req.SampleLink,
		SortOrder:   position,
	}
	for i, opt := range req.Options {
		item.Options = append(item.Options, model.ItemOption{
			Value:     opt.Value,
			Label:     opt.Label,
			SortOrder: i,
		})
	}

	if err := database.GetDB().Create(&item).Error; err != nil {
		log.Error("Failed to create item", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create item"})
	}

	invalidateFormCache(c, section.BrandID)
	prometheus.RecordEntityOperation("item", "create")
	log.Info("Item created",
		zap.Uint("item_id", item.ID),
		zap.Uint("section_id", item.SectionID),
		zap.String("field_type", item.FieldType),
		zap.Int("sort_order", item.SortOrder))
	return c.JSON(http.StatusCreated, item)
}

// UpdateItem handles updating an existing item and replacing its options
func UpdateItem(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("item_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var item model.Item
	if err := database.GetDB().First(&item, id).Error; err != nil {
		log.Warn("Item not found for update", zap.String("item_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.FieldType != "" {
		if !model.IsValidFieldType(req.FieldType) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown field type"})
		}
		item.FieldType = req.FieldType
	}
	if model.IsChoiceField(item.FieldType) && req.Options != nil && len(req.Options) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Choice fields require at least one option"})
	}
	item.Code = req.Code
	item.Placeholder = req.Placeholder
	item.Description = req.Description
	item.SampleLink = req.SampleLink
	if req.Required != nil {
		item.Required = *req.Required
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		if req.Options != nil {
			if err := tx.Where("item_id = ?", item.ID).Delete(&model.ItemOption{}).Error; err != nil {
				return err
			}
			for i, opt := range req.Options {
				row := model.ItemOption{
					ItemID:    item.ID,
					Value:     opt.Value,
					Label:     opt.Label,
					SortOrder: i,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to update item", zap.String("item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update item"})
	}

	var section model.Section
	if err := database.GetDB().First(&section, item.SectionID).Error; err == nil {
		invalidateFormCache(c, section.BrandID)
	}

	prometheus.RecordEntityOperation("item", "update")
	return c.JSON(http.StatusOK, item)
}

// DeleteItem handles deleting an item and its options
func DeleteItem(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var item model.Item
	if err := database.GetDB().First(&item, id).Error; err != nil {
		log.Warn("Item not found for deletion", zap.String("item_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", item.ID).Delete(&model.ItemOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		log.Error("Failed to delete item", zap.String("item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete item"})
	}

	var section model.Section
	if err := database.GetDB().First(&section, item.SectionID).Error; err == nil {
		invalidateFormCache(c, section.BrandID)
	}

	prometheus.RecordEntityOperation("item", "delete")
	log.Info("Item deleted", zap.Uint("item_id", item.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Item deleted successfully"})
}

// ReorderItems handles persisting a new item order within a section
func ReorderItems(c echo.Context) error {
	log := logger.FromContext(c)

	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.SectionID == 0 || len(req.OrderedIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Section and ordered ids are required"})
	}

	var section model.Section
	if err := database.GetDB().First(&section, req.SectionID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Section not found"})
	}

	if err := reorder.ReorderItems(c.Request().Context(), req.SectionID, req.OrderedIDs); err != nil {
		if errors.Is(err, service.ErrOrderMismatch) {
			log.Warn("Item reorder rejected",
				zap.Uint("section_id", req.SectionID),
				zap.Error(err))
			return c.JSON(http.StatusConflict, echo.Map{"error": "Ordered ids do not match the section's items"})
		}
		log.Error("Failed to reorder items", zap.Uint("section_id", req.SectionID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to reorder items"})
	}

	invalidateFormCache(c, section.BrandID)
	prometheus.RecordEntityOperation("item", "reorder")
	log.Info("Items reordered",
		zap.Uint("section_id", req.SectionID),
		zap.Int("count", len(req.OrderedIDs)))

	var items []model.Item
	if err := database.GetDB().Where("section_id = ?", req.SectionID).Order("sort_order asc").Find(&items).Error; err != nil {
		log.Error("Failed to reload items after reorder", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": items})
}
