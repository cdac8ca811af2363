package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/middleware"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/services"
)

type IndicationController struct {
	indications *services.IndicationService
	logger      *zap.Logger
}

func NewIndicationController(indications *services.IndicationService, logger *zap.Logger) *IndicationController {
	return &IndicationController{indications: indications, logger: logger}
}

// CreateIndication submits a single referral for the caller.
func (ic *IndicationController) CreateIndication(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.CreateIndicationRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	indication, err := ic.indications.CreateIndication(c.Request().Context(), userID, req)
	if err != nil {
		return ic.createFailure(c, "indication", err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Indicação enviada com sucesso",
		Data:    indication,
	})
}

// CreatePackagedIndication submits a bulk batch of referrals.
func (ic *IndicationController) CreatePackagedIndication(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.CreatePackagedIndicationRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	batch, err := ic.indications.CreatePackagedIndication(c.Request().Context(), userID, req)
	if err != nil {
		return ic.createFailure(c, "packaged indication", err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Lote de indicações enviado com sucesso",
		Data:    batch,
	})
}

// CreateWithdrawal requests a commission payout.
func (ic *IndicationController) CreateWithdrawal(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.CreateWithdrawalRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	withdrawal, err := ic.indications.CreateWithdrawal(c.Request().Context(), userID, req)
	if err != nil {
		return ic.createFailure(c, "withdrawal", err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Solicitação de saque enviada com sucesso",
		Data:    withdrawal,
	})
}

func (ic *IndicationController) createFailure(c echo.Context, what string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return badRequest(c, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Usuário não encontrado",
		})
	}
	ic.logger.Error("create failed", zap.String("resource", what), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Falha ao salvar. Tente novamente",
	})
}

// bindAndValidate returns the message to answer with when req is invalid.
func bindAndValidate(c echo.Context, req interface{}) (string, bool) {
	if err := c.Bind(req); err != nil {
		return "Invalid request body", false
	}
	if err := c.Validate(req); err != nil {
		return "Validation failed: " + err.Error(), false
	}
	return "", true
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, models.Response{
		Status:  http.StatusBadRequest,
		Message: message,
	})
}
