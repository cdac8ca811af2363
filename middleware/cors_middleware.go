package middleware

import (
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// defaultOrigins are the local dashboard dev servers.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

// GlobalCORS allows the configured origins plus the local dev servers.
// Native app clients send no Origin and are unaffected.
func GlobalCORS(origins []string) echo.MiddlewareFunc {
	allowed := append(append([]string{}, defaultOrigins...), origins...)

	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		MaxAge:           86400, // 24 hours
	})
}
