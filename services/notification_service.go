package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/utils"
)

var fieldLabels = map[string]string{
	"indicatorName":   "Indicador",
	"name":            "Nome",
	"phone":           "Telefone",
	"product":         "Produto",
	"status":          "Status",
	"amount":          "Valor",
	"unitName":        "Unidade",
	"rejectionReason": "Motivo",
}

// Notifier delivers a notification. Dispatcher is the production Notifier.
type Notifier interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// Dispatcher fans a notification out over every configured channel. A failed
// channel does not stop the others; failures are joined into the result.
type Dispatcher struct {
	channels []Channel
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewDispatcher(logger *zap.Logger, m *metrics.Metrics, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, logger: logger, metrics: m}
}

func (d *Dispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, ch := range d.channels {
		err := ch.Send(ctx, n)
		switch {
		case errors.Is(err, ErrNoRecipient):
			d.metrics.RecordDelivery(ch.Name(), metrics.OutcomeSkipped)
		case err != nil:
			d.logger.Warn("notification delivery failed",
				zap.String("channel", ch.Name()), zap.String("type", n.Type), zap.String("notificationId", n.ID), zap.Error(err))
			d.metrics.RecordDelivery(ch.Name(), metrics.OutcomeFailed)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		default:
			d.metrics.RecordDelivery(ch.Name(), metrics.OutcomeSuccess)
		}
	}
	return errors.Join(errs...)
}

// NotificationService decides which write events notify whom, and with what
// payload.
type NotificationService struct {
	users    *repositories.UserRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	printer  *message.Printer
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(users *repositories.UserRepository, notifier Notifier, logger *zap.Logger, now func() time.Time) *NotificationService {
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      now,
		printer:  message.NewPrinter(language.BrazilianPortuguese),
	}
}

// OnOpportunityUpdate tells the indicator that their opportunity changed
// status and, when it closed with commission, how much they earned.
func (s *NotificationService) OnOpportunityUpdate(ctx context.Context, event models.ChangeEvent) (int, error) {
	if err := checkEvent(event); err != nil {
		return 0, err
	}
	oldStatus := utils.StringOr(event.Before, models.FieldStatus, "")
	newStatus := utils.StringOr(event.After, models.FieldStatus, "")
	if oldStatus == newStatus || newStatus == "" {
		return 0, nil
	}

	ownerID := utils.StringOr(event.After, models.FieldIndicatorID, utils.StringOr(event.After, models.FieldLegacyUserID, ""))
	if ownerID == "" {
		s.logger.Warn("opportunity without owner, skipping notification", zap.String("opportunityId", event.DocumentID))
		return 0, nil
	}
	recipient := s.userRecipient(ctx, ownerID)

	name := utils.StringOr(event.After, models.FieldName, models.FallbackName)
	product := utils.StringOr(event.After, models.FieldProduct, models.FallbackProduct)
	fields := map[string]string{
		"opportunityId": event.DocumentID,
		"indicatorName": utils.StringOr(event.After, models.FieldIndicatorName, ""),
		"name":          name,
		"product":       product,
		"status":        newStatus,
	}

	notifications := []models.Notification{
		s.newNotification(models.NotificationStatusChanged, "Status atualizado",
			fmt.Sprintf("A indicação de %s agora está em %s.", name, newStatus), fields, recipient),
	}
	if commission, ok := utils.FloatField(event.After, models.FieldCommission); ok && newStatus == models.StatusClosed && commission > 0 {
		earned := copyFields(fields)
		earned["amount"] = strconv.FormatFloat(commission, 'f', 2, 64)
		notifications = append(notifications, s.newNotification(models.NotificationCommissionEarned, "Comissão recebida",
			fmt.Sprintf("Você ganhou %s com a indicação de %s.", s.currency(commission), name), earned, recipient))
	}
	return s.dispatchAll(ctx, notifications)
}

// OnIndicationCreated tells the unit about a new referral by email and
// webhook.
func (s *NotificationService) OnIndicationCreated(ctx context.Context, event models.ChangeEvent) (int, error) {
	if err := checkEvent(event); err != nil {
		return 0, err
	}
	if len(event.Before) > 0 {
		return 0, nil
	}

	var recipient models.Recipient
	if unitID := utils.StringOr(event.After, models.FieldUnitID, ""); unitID != "" {
		unit, err := s.users.GetUnit(ctx, unitID)
		if err != nil {
			s.logger.Warn("unit lookup failed for indication notification", zap.String("unitId", unitID), zap.Error(err))
		} else {
			recipient.Email = unit.Email
			recipient.WebhookURL = unit.WebhookURL
		}
	}

	indicator := utils.StringOr(event.After, models.FieldIndicatorName, "Um indicador")
	name := utils.StringOr(event.After, models.FieldName, models.FallbackName)
	fields := map[string]string{
		"indicationId":  event.DocumentID,
		"indicatorName": indicator,
		"name":          name,
		"phone":         utils.StringOr(event.After, "phone", ""),
		"product":       utils.StringOr(event.After, models.FieldProduct, models.FallbackProduct),
		"unitName":      utils.StringOr(event.After, models.FieldUnitName, ""),
	}
	n := s.newNotification(models.NotificationIndicationNew, "Nova indicação recebida",
		fmt.Sprintf("%s indicou %s.", indicator, name), fields, recipient)
	return s.dispatchAll(ctx, []models.Notification{n})
}

// OnWithdrawalUpdate tells the requester that their withdrawal changed status.
func (s *NotificationService) OnWithdrawalUpdate(ctx context.Context, event models.ChangeEvent) (int, error) {
	if err := checkEvent(event); err != nil {
		return 0, err
	}
	oldStatus := utils.StringOr(event.Before, models.FieldStatus, "")
	newStatus := utils.StringOr(event.After, models.FieldStatus, "")
	if oldStatus == newStatus || newStatus == "" {
		return 0, nil
	}

	userID := utils.StringOr(event.After, models.FieldLegacyUserID, "")
	if userID == "" {
		s.logger.Warn("withdrawal without requester, skipping notification", zap.String("withdrawalId", event.DocumentID))
		return 0, nil
	}

	amount, _ := utils.FloatField(event.After, models.FieldAmount)
	fields := map[string]string{
		"withdrawalId": event.DocumentID,
		"amount":       strconv.FormatFloat(amount, 'f', 2, 64),
		"status":       newStatus,
	}
	if reason := utils.StringOr(event.After, "rejectionReason", ""); reason != "" {
		fields["rejectionReason"] = reason
	}
	n := s.newNotification(models.NotificationWithdrawalUpdate, "Saque atualizado",
		fmt.Sprintf("Seu saque de %s está %s.", s.currency(amount), newStatus), fields, s.userRecipient(ctx, userID))
	return s.dispatchAll(ctx, []models.Notification{n})
}

func (s *NotificationService) dispatchAll(ctx context.Context, notifications []models.Notification) (int, error) {
	var errs []error
	for _, n := range notifications {
		if err := s.notifier.Dispatch(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return len(notifications), errors.Join(errs...)
}

// userRecipient resolves the delivery addresses of a user. An unknown user
// still gets the in-app notification.
func (s *NotificationService) userRecipient(ctx context.Context, userID string) models.Recipient {
	recipient := models.Recipient{UserID: userID}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("user lookup failed for notification", zap.String("userId", userID), zap.Error(err))
		return recipient
	}
	recipient.Email = user.Email
	recipient.FCMToken = user.FCMToken
	return recipient
}

func (s *NotificationService) newNotification(kind, title, body string, fields map[string]string, recipient models.Recipient) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Title:     title,
		Body:      body,
		Fields:    fields,
		Recipient: recipient,
		CreatedAt: s.now(),
	}
}

func (s *NotificationService) currency(v float64) string {
	return s.printer.Sprintf("R$ %.2f", v)
}

func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldLabel(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}
