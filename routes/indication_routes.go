package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/indique_backend/controllers"
)

// RegisterIndicationRoutes registers the referral and withdrawal creation routes
func RegisterIndicationRoutes(g *echo.Group, ic *controllers.IndicationController) {
	g.POST("/indications", ic.CreateIndication)
	g.POST("/packaged-indications", ic.CreatePackagedIndication)
	g.POST("/withdrawals", ic.CreateWithdrawal)
}
