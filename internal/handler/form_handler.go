package handler

import (
	"errors"
	"net/http"

	"github.com/chrisgermon/form-ordering-sub000/internal/service"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetForm serves the sanitized form definition for a brand slug.
// Missing brands return 404 and deactivated brands return 403 without
// leaking any form structure.
func GetForm(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	def, err := forms.Load(c.Request().Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBrandNotFound):
			log.Warn("Form requested for unknown brand", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Form not found"})
		case errors.Is(err, service.ErrBrandInactive):
			log.Warn("Form requested for inactive brand", zap.String("slug", slug))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "This form is not currently available"})
		default:
			log.Error("Failed to load form definition", zap.String("slug", slug), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load form"})
		}
	}

	return c.JSON(http.StatusOK, def)
}
