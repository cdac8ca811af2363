package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/indique_backend/controllers"
)

// RegisterStatusRoutes registers the feed and commission chart routes
func RegisterStatusRoutes(g *echo.Group, status *controllers.StatusController, commission *controllers.CommissionController) {
	g.GET("/status", status.GetStatus)
	g.GET("/status/stats", status.GetStats)

	g.GET("/commissions", commission.GetCommissions)
	g.GET("/commissions/:period", commission.GetCommissionPeriod)
}
