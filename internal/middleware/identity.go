package middleware

// identity.go holds helpers shared across middleware files for naming the
// caller of a request.

import "github.com/labstack/echo/v4"

// currentUserID returns the operator id stored by JWTAuth, or "anon" on
// public routes.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}

// clientIP returns the caller's address as seen through proxies.
func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
