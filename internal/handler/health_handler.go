package handler

import (
	"net/http"

	"github.com/chrisgermon/form-ordering-sub000/pkg/database"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness and database reachability
func Health(c echo.Context) error {
	status := map[string]string{
		"status":   "ok",
		"database": "ok",
	}

	sqlDB, err := database.GetDB().DB()
	if err != nil {
		status["status"] = "degraded"
		status["database"] = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, status)
	}
	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, status)
	}

	return c.JSON(http.StatusOK, status)
}
