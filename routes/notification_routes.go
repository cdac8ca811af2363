package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/indique_backend/controllers"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(g *echo.Group, nc *controllers.NotificationController) {
	g.POST("/users/fcm-token", nc.UpdateUserFCMToken)
	g.GET("/ws", nc.Connect)
}
