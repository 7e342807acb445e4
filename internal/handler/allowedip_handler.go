package handler

import (
	"net"
	"net/http"
	"strings"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AllowedIPRequest defines the structure for allow-list entries
type AllowedIPRequest struct {
	Address     string `json:"address"`
	Description string `json:"description"`
}

// ListAllowedIPs handles retrieving the IP allow-list
func ListAllowedIPs(c echo.Context) error {
	log := logger.FromContext(c)

	var entries []model.AllowedIP
	if err := database.GetDB().Order("address asc").Find(&entries).Error; err != nil {
		log.Error("Failed to list allowed IPs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve allow-list"})
	}

	return c.JSON(http.StatusOK, entries)
}

// CreateAllowedIP handles adding an address to the allow-list
func CreateAllowedIP(c echo.Context) error {
	log := logger.FromContext(c)

	var req AllowedIPRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	req.Address = strings.TrimSpace(req.Address)
	if net.ParseIP(req.Address) == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid IP address"})
	}

	var count int64
	database.GetDB().Model(&model.AllowedIP{}).Where("address = ?", req.Address).Count(&count)
	if count > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Address is already allow-listed"})
	}

	entry := model.AllowedIP{
		Address:     req.Address,
		Description: req.Description,
	}
	if err := database.GetDB().Create(&entry).Error; err != nil {
		log.Error("Failed to create allow-list entry", zap.String("address", req.Address), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to add address"})
	}

	prometheus.RecordEntityOperation("allowed_ip", "create")
	log.Info("Address allow-listed", zap.String("address", entry.Address))
	return c.JSON(http.StatusCreated, entry)
}

// DeleteAllowedIP handles removing an address from the allow-list
func DeleteAllowedIP(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.AllowedIP{}, id)
	if result.Error != nil {
		log.Error("Failed to delete allow-list entry", zap.String("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to remove address"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Entry not found"})
	}

	prometheus.RecordEntityOperation("allowed_ip", "delete")
	return c.JSON(http.StatusOK, echo.Map{"message": "Address removed from allow-list"})
}
