package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/indique_backend/controllers"
)

// RegisterTriggerRoutes registers the endpoints the event runtime calls on
// document writes
func RegisterTriggerRoutes(g *echo.Group, tc *controllers.TriggerController) {
	g.POST("/users", tc.UserUpdated)
	g.POST("/units", tc.UnitUpdated)
	g.POST("/opportunities", tc.OpportunityUpdated)
	g.POST("/indications", tc.IndicationCreated)
	g.POST("/withdrawals", tc.WithdrawalUpdated)
}
