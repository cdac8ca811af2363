package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/middleware"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/services"
)

type CommissionController struct {
	commissions *services.CommissionService
	logger      *zap.Logger
}

func NewCommissionController(commissions *services.CommissionService, logger *zap.Logger) *CommissionController {
	return &CommissionController{commissions: commissions, logger: logger}
}

// PeriodResponse is one chart series with its totals.
type PeriodResponse struct {
	Period  string                    `json:"period"`
	Buckets []models.CommissionBucket `json:"buckets"`
	Total   float64                   `json:"total"`
	Count   int                       `json:"count"`
}

// GetCommissions returns the week, month and year series.
func (cc *CommissionController) GetCommissions(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	periods, err := cc.commissions.GetCommissionsByPeriod(c.Request().Context(), userID)
	if err != nil {
		return commissionFailure(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Comissões carregadas com sucesso",
		Data:    periods,
	})
}

// GetCommissionPeriod returns one series: week, month or year.
func (cc *CommissionController) GetCommissionPeriod(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	period := c.Param("period")
	switch period {
	case services.PeriodWeek, services.PeriodMonth, services.PeriodYear:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Período inválido. Use week, month ou year",
		})
	}

	buckets, err := cc.commissions.GetPeriod(c.Request().Context(), userID, period)
	if err != nil {
		return commissionFailure(c)
	}

	total, count := models.Total(buckets)
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Comissões carregadas com sucesso",
		Data: PeriodResponse{
			Period:  period,
			Buckets: buckets,
			Total:   total,
			Count:   count,
		},
	})
}

func commissionFailure(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Falha ao carregar dados de comissão",
	})
}
