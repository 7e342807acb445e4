package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ClinicRequest is one clinic row inside a brand payload
type ClinicRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BrandRequest defines the structure for brand creation/update requests.
// Pointer fields distinguish "absent" from "clear" on update.
type BrandRequest struct {
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	LogoURL         *string         `json:"logo_url"`
	Active          *bool           `json:"active"`
	RecipientEmails *string         `json:"recipient_emails"`
	Clinics         []ClinicRequest `json:"clinics"`
}

// ListBrands handles retrieving all brands
func ListBrands(c echo.Context) error {
	log := logger.FromContext(c)

	var brands []model.Brand
	if err := database.GetDB().Preload("Clinics").Order("name asc").Find(&brands).Error; err != nil {
		log.Error("Failed to list brands", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve brands"})
	}

	return c.JSON(http.StatusOK, brands)
}

// GetBrand handles retrieving a single brand by ID
func GetBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var brand model.Brand
	if err := database.GetDB().Preload("Clinics").First(&brand, id).Error; err != nil {
		log.Warn("Brand not found", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	return c.JSON(http.StatusOK, brand)
}

// CreateBrand handles creating a new brand
func CreateBrand(c echo.Context) error {
	log := logger.FromContext(c)

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name and slug are required"})
	}
	if !slugPattern.MatchString(req.Slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Slug must be lowercase letters, digits and hyphens"})
	}

	// Check slug uniqueness
	var count int64
	database.GetDB().Model(&model.Brand{}).Where("slug = ?", req.Slug).Count(&count)
	if count > 0 {
		log.Warn("Brand with this slug already exists", zap.String("slug", req.Slug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Brand with this slug already exists"})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	brand := model.Brand{
		Name:   req.Name,
		Slug:   req.Slug,
		Active: active,
	}
	if req.LogoURL != nil {
		brand.LogoURL = *req.LogoURL
	}
	if req.RecipientEmails != nil {
		brand.RecipientEmails = *req.RecipientEmails
	}
	for i, clinic := range req.Clinics {
		brand.Clinics = append(brand.Clinics, model.Clinic{
			Name:      clinic.Name,
			Address:   clinic.Address,
			SortOrder: i,
		})
	}

	if err := database.GetDB().Create(&brand).Error; err != nil {
		log.Error("Failed to create brand", zap.String("slug", req.Slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create brand"})
	}

	prometheus.RecordEntityOperation("brand", "create")
	log.Info("Brand created", zap.Uint("brand_id", brand.ID), zap.String("slug", brand.Slug))
	return c.JSON(http.StatusCreated, brand)
}

// UpdateBrand handles updating an existing brand
func UpdateBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	var brand model.Brand
	if err := database.GetDB().First(&brand, id).Error; err != nil {
		log.Warn("Brand not found for update", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	oldSlug := brand.Slug

	if req.Slug != "" {
		req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
		if !slugPattern.MatchString(req.Slug) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Slug must be lowercase letters, digits and hyphens"})
		}
		if req.Slug != brand.Slug {
			var count int64
			database.GetDB().Model(&model.Brand{}).Where("slug = ? AND id != ?", req.Slug, brand.ID).Count(&count)
			if count > 0 {
				return c.JSON(http.StatusConflict, echo.Map{"error": "Brand with this slug already exists"})
			}
			brand.Slug = req.Slug
		}
	}
	if req.Name != "" {
		brand.Name = req.Name
	}
	if req.LogoURL != nil {
		brand.LogoURL = *req.LogoURL
	}
	if req.RecipientEmails != nil {
		brand.RecipientEmails = *req.RecipientEmails
	}
	if req.Active != nil {
		brand.Active = *req.Active
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&brand).Error; err != nil {
			return err
		}
		if req.Clinics != nil {
			// Replace the clinic set with the submitted one
			if err := tx.Where("brand_id = ?", brand.ID).Delete(&model.Clinic{}).Error; err != nil {
				return err
			}
			for i, clinic := range req.Clinics {
				row := model.Clinic{
					BrandID:   brand.ID,
					Name:      clinic.Name,
					Address:   clinic.Address,
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
		log.Error("Failed to update brand", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update brand"})
	}

	// Cached definitions are keyed by slug, drop both on rename
	forms.Invalidate(c.Request().Context(), oldSlug)
	forms.Invalidate(c.Request().Context(), brand.Slug)

	prometheus.RecordEntityOperation("brand", "update")
	log.Info("Brand updated", zap.Uint("brand_id", brand.ID), zap.String("slug", brand.Slug))
	return c.JSON(http.StatusOK, brand)
}

// DeleteBrand handles deleting a brand and everything it owns
func DeleteBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var brand model.Brand
	if err := database.GetDB().First(&brand, id).Error; err != nil {
		log.Warn("Brand not found for deletion", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Brand not found"})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var sectionIDs []uint
		if err := tx.Model(&model.Section{}).Where("brand_id = ?", brand.ID).Pluck("id", &sectionIDs).Error; err != nil {
			return err
		}
		if len(sectionIDs) > 0 {
			var itemIDs []uint
			if err := tx.Model(&model.Item{}).Where("section_id IN ?", sectionIDs).Pluck("id", &itemIDs).Error; err != nil {
				return err
			}
			if len(itemIDs) > 0 {
				if err := tx.Where("item_id IN ?", itemIDs).Delete(&model.ItemOption{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("section_id IN ?", sectionIDs).Delete(&model.Item{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("brand_id = ?", brand.ID).Delete(&model.Section{}).Error; err != nil {
			return err
		}
		if err := tx.Where("brand_id = ?", brand.ID).Delete(&model.Clinic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("brand_id = ?", brand.ID).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&brand).Error
	})
	if err != nil {
		log.Error("Failed to delete brand", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete brand"})
	}

	forms.Invalidate(c.Request().Context(), brand.Slug)

	prometheus.RecordEntityOperation("brand", "delete")
	log.Info("Brand deleted", zap.Uint("brand_id", brand.ID), zap.String("slug", brand.Slug))
	return c.JSON(http.StatusOK, echo.Map{"message": "Brand deleted successfully"})
}
