package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/internal/middleware"
	"github.com/chrisgermon/form-ordering-sub000/pkg/jwtutil"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"
	"github.com/chrisgermon/form-ordering-sub000/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LoginRequest is the admin login payload
type LoginRequest struct {
	Password string `json:"password"`
}

// Login checks the admin password and issues a session token.
// The token is returned in the body and set as an HttpOnly cookie.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if appConfig.Admin.Password == "" {
		log.Error("Admin password is not configured")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Admin login is not configured"})
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(appConfig.Admin.Password)) != 1 {
		prometheus.AuthErrorsCounter.Inc()
		log.Warn("Failed admin login attempt", zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid password"})
	}

	token, err := jwtutil.GenerateAdminToken()
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create session"})
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(appConfig.JWT.ExpirationHours) * time.Hour),
	})

	prometheus.AuthSuccessCounter.Inc()
	log.Info("Admin login successful", zap.String("ip", c.RealIP()))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token})
}

// Logout clears the admin session cookie
func Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
