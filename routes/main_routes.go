package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/indique_backend/controllers"
	"github.com/HSouheill/indique_backend/metrics"
)

// Controllers groups every HTTP handler set.
type Controllers struct {
	Status       *controllers.StatusController
	Commission   *controllers.CommissionController
	Indication   *controllers.IndicationController
	Notification *controllers.NotificationController
	Trigger      *controllers.TriggerController
}

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, h Controllers, userAuth, triggerAuth echo.MiddlewareFunc, m *metrics.Metrics) {
	e.Match([]string{http.MethodGet, http.MethodHead}, "/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api", userAuth)
	RegisterStatusRoutes(api, h.Status, h.Commission)
	RegisterIndicationRoutes(api, h.Indication)
	RegisterNotificationRoutes(api, h.Notification)

	RegisterTriggerRoutes(e.Group("/api/triggers", triggerAuth), h.Trigger)
}
