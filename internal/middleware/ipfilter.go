package middleware

import (
	"net/http"

	"github.com/chrisgermon/form-ordering-sub000/internal/model"
	"github.com/chrisgermon/form-ordering-sub000/pkg/database"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// IPFilterMiddleware restricts the public form routes to the allow-listed
// addresses. An empty allow-list fails open so a fresh install is usable.
func IPFilterMiddleware(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}

			log := logger.FromContext(c)
			ip := c.RealIP()

			var count int64
			if err := database.GetDB().Model(&model.AllowedIP{}).Count(&count).Error; err != nil {
				log.Error("Failed to read IP allow-list", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "access check failed"})
			}

			// Empty list fails open
			if count == 0 {
				return next(c)
			}

			var matched int64
			if err := database.GetDB().Model(&model.AllowedIP{}).Where("address = ?", ip).Count(&matched).Error; err != nil {
				log.Error("Failed to read IP allow-list", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "access check failed"})
			}

			if matched == 0 {
				log.Warn("Rejected request from non-allow-listed IP", zap.String("ip", ip))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}

			return next(c)
		}
	}
}
