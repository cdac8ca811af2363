package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/middleware"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/websocket"
)

type NotificationController struct {
	users          *repositories.UserRepository
	hub            *websocket.Hub
	allowedOrigins []string
	logger         *zap.Logger
}

func NewNotificationController(users *repositories.UserRepository, hub *websocket.Hub, allowedOrigins []string, logger *zap.Logger) *NotificationController {
	return &NotificationController{users: users, hub: hub, allowedOrigins: allowedOrigins, logger: logger}
}

// UpdateUserFCMToken updates the FCM token for a user
func (nc *NotificationController) UpdateUserFCMToken(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req models.FCMTokenUpdateRequest
	if msg, ok := bindAndValidate(c, &req); !ok {
		return badRequest(c, msg)
	}

	if err := nc.users.UpdateFCMToken(c.Request().Context(), userID, req.FCMToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Usuário não encontrado",
			})
		}
		nc.logger.Error("error updating user FCM token", zap.String("userId", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated",
	})
}

// Connect opens the in-app notification socket of the caller.
func (nc *NotificationController) Connect(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := websocket.HandleWebSocket(c, nc.hub, userID, nc.allowedOrigins); err != nil {
		nc.logger.Debug("websocket upgrade failed", zap.String("userId", userID), zap.Error(err))
		return err
	}
	return nil
}
