package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/middleware"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/services"
)

type StatusController struct {
	feed   *services.StatusFeedService
	logger *zap.Logger
}

func NewStatusController(feed *services.StatusFeedService, logger *zap.Logger) *StatusController {
	return &StatusController{feed: feed, logger: logger}
}

// GetStatus returns the caller's status feed. Query "search" filters by text
// and each "filter" value is a type marker or a status.
func (sc *StatusController) GetStatus(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	feed, err := sc.feed.GetStatusFeed(c.Request().Context(), userID, c.QueryParam("search"), c.QueryParams()["filter"])
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Falha ao carregar status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Status carregados com sucesso",
		Data:    feed,
	})
}

// GetStats returns the per-status counts of the caller's feed.
func (sc *StatusController) GetStats(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := sc.feed.GetAllStatusItems(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Falha ao carregar status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Estatísticas carregadas com sucesso",
		Data: map[string]interface{}{
			"stats": services.GetStatusStats(items),
			"total": len(items),
		},
	})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized",
	})
}
