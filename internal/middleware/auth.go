package middleware

import (
	"net/http"
	"strings"

	"github.com/chrisgermon/form-ordering-sub000/pkg/jwtutil"
	"github.com/chrisgermon/form-ordering-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the admin session token
const SessionCookieName = "admin_session"

// AuthMiddleware validates the admin session token from the cookie or the
// Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString := ""

		// Prefer the session cookie set by the login handler
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			tokenString = cookie.Value
		}

		// Fall back to a Bearer token
		if tokenString == "" {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing admin session")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}
			tokenString = parts[1]
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid or expired session token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		if claims.Role != "admin" {
			log.Warn("Token without admin role", zap.String("role", claims.Role))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}

		c.Set("role", claims.Role)
		return next(c)
	}
}
