package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/services"
)

// Trigger kinds, also used as metric labels and guard key prefixes.
const (
	TriggerUsers         = "users"
	TriggerUnits         = "units"
	TriggerOpportunities = "opportunities"
	TriggerIndications   = "indications"
	TriggerWithdrawals   = "withdrawals"
)

// EventGuard claims trigger event ids so redeliveries are ignored.
type EventGuard interface {
	Acquire(ctx context.Context, kind, eventID string) (bool, error)
	Release(ctx context.Context, kind, eventID string) error
}

type propagateFunc func(ctx context.Context, event models.ChangeEvent) (*services.PropagationResult, error)

type notifyFunc func(ctx context.Context, event models.ChangeEvent) (int, error)

// TriggerResponse is the body returned to the event runtime.
type TriggerResponse struct {
	services.PropagationResult
	Duplicate     bool `json:"duplicate,omitempty"`
	Notifications int  `json:"notifications"`
}

// TriggerController receives document change events from the hosting event
// runtime. Propagation failures answer 500 so the runtime retries;
// notification failures are only logged.
type TriggerController struct {
	propagation   *services.PropagationService
	notifications *services.NotificationService
	guard         EventGuard
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

func NewTriggerController(propagation *services.PropagationService, notifications *services.NotificationService, guard EventGuard, m *metrics.Metrics, logger *zap.Logger) *TriggerController {
	return &TriggerController{
		propagation:   propagation,
		notifications: notifications,
		guard:         guard,
		metrics:       m,
		logger:        logger,
	}
}

// UserUpdated propagates profile picture changes.
func (tc *TriggerController) UserUpdated(c echo.Context) error {
	return tc.handle(c, TriggerUsers, tc.propagation.HandleUserUpdate, nil)
}

// UnitUpdated propagates unit renames.
func (tc *TriggerController) UnitUpdated(c echo.Context) error {
	return tc.handle(c, TriggerUnits, tc.propagation.HandleUnitUpdate, nil)
}

// OpportunityUpdated applies the archive rule and notifies the indicator.
func (tc *TriggerController) OpportunityUpdated(c echo.Context) error {
	return tc.handle(c, TriggerOpportunities, tc.propagation.HandleOpportunityUpdate, tc.notifications.OnOpportunityUpdate)
}

// IndicationCreated notifies the unit of a new referral.
func (tc *TriggerController) IndicationCreated(c echo.Context) error {
	return tc.handle(c, TriggerIndications, nil, tc.notifications.OnIndicationCreated)
}

// WithdrawalUpdated notifies the requester of a status change.
func (tc *TriggerController) WithdrawalUpdated(c echo.Context) error {
	return tc.handle(c, TriggerWithdrawals, nil, tc.notifications.OnWithdrawalUpdate)
}

func (tc *TriggerController) handle(c echo.Context, kind string, propagate propagateFunc, notify notifyFunc) error {
	var event models.ChangeEvent
	if err := c.Bind(&event); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&event); err != nil {
		return badRequest(c, "Missing required fields")
	}

	ctx := c.Request().Context()
	log := tc.logger.With(zap.String("kind", kind), zap.String("eventId", event.EventID), zap.String("documentId", event.DocumentID))

	if tc.guard != nil {
		fresh, err := tc.guard.Acquire(ctx, kind, event.EventID)
		if err != nil {
			// Without the guard the event is processed; propagation is idempotent.
			log.Warn("event guard unavailable", zap.Error(err))
		} else if !fresh {
			log.Info("duplicate trigger event ignored")
			tc.metrics.RecordTrigger(kind, metrics.OutcomeDuplicate)
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "Evento já processado",
				Data:    TriggerResponse{Duplicate: true},
			})
		}
	}

	resp := TriggerResponse{}
	if propagate != nil {
		result, err := propagate(ctx, event)
		if err != nil {
			tc.release(ctx, log, kind, event.EventID)
			tc.metrics.RecordTrigger(kind, metrics.OutcomeFailed)
			if errors.Is(err, services.ErrInvalidEvent) {
				return badRequest(c, "Evento inválido")
			}
			log.Error("trigger propagation failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Falha ao propagar alteração",
			})
		}
		resp.PropagationResult = *result
	}

	if notify != nil {
		sent, err := notify(ctx, event)
		if errors.Is(err, services.ErrInvalidEvent) {
			tc.release(ctx, log, kind, event.EventID)
			tc.metrics.RecordTrigger(kind, metrics.OutcomeFailed)
			return badRequest(c, "Evento inválido")
		}
		if err != nil {
			log.Warn("trigger notifications failed", zap.Error(err))
		}
		resp.Notifications = sent
	}

	outcome := metrics.OutcomeSuccess
	if !resp.Changed && resp.Notifications == 0 {
		outcome = metrics.OutcomeNoop
	}
	tc.metrics.RecordTrigger(kind, outcome)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Evento processado",
		Data:    resp,
	})
}

// release frees the event claim so the runtime's retry is processed.
func (tc *TriggerController) release(ctx context.Context, log *zap.Logger, kind, eventID string) {
	if tc.guard == nil {
		return
	}
	if err := tc.guard.Release(ctx, kind, eventID); err != nil {
		log.Warn("failed to release event claim", zap.Error(err))
	}
}

