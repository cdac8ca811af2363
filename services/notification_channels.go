package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
)

// ErrNoRecipient is returned by a channel when the notification carries no
// address for it. The dispatcher counts it as skipped, not failed.
var ErrNoRecipient = errors.New("no recipient address for channel")

// Channel delivers a notification over one medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, n models.Notification) error
}

// MessagingClient is the part of the Firebase messaging client used for push.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel sends Firebase Cloud Messaging notifications to the
// recipient's registered device token.
type PushChannel struct {
	client MessagingClient
	logger *zap.Logger
}

func NewPushChannel(client MessagingClient, logger *zap.Logger) *PushChannel {
	return &PushChannel{client: client, logger: logger}
}

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) Send(ctx context.Context, n models.Notification) error {
	if n.Recipient.FCMToken == "" {
		return ErrNoRecipient
	}

	data := map[string]string{
		"type":           n.Type,
		"notificationId": n.ID,
		"timestamp":      n.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range n.Fields {
		data[k] = v
	}

	badge := 1
	message := &messaging.Message{
		Token: n.Recipient.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "indique_fcm_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: n.Title,
						Body:  n.Body,
					},
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}

	response, err := c.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}
	c.logger.Debug("FCM notification sent", zap.String("userId", n.Recipient.UserID), zap.String("response", response))
	return nil
}

// MailDialer is the part of gomail.Dialer used by the email channel.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel sends plain text email through SMTP.
type EmailChannel struct {
	dialer MailDialer
	from   string
}

func NewEmailChannel(dialer MailDialer, from string) *EmailChannel {
	return &EmailChannel{dialer: dialer, from: from}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, n models.Notification) error {
	if n.Recipient.Email == "" {
		return ErrNoRecipient
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", n.Recipient.Email)
	m.SetHeader("Subject", n.Title)
	m.SetBody("text/plain", emailBody(n))
	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func emailBody(n models.Notification) string {
	var b bytes.Buffer
	b.WriteString(n.Body)
	b.WriteString("\n")
	for _, key := range sortedKeys(n.Fields) {
		fmt.Fprintf(&b, "\n%s: %s", fieldLabel(key), n.Fields[key])
	}
	return b.String()
}

// WebhookChannel posts the notification as JSON to the recipient's webhook,
// or to a fallback URL when the recipient has none.
type WebhookChannel struct {
	client      *http.Client
	fallbackURL string
}

func NewWebhookChannel(client *http.Client, fallbackURL string) *WebhookChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookChannel{client: client, fallbackURL: fallbackURL}
}

func (c *WebhookChannel) Name() string { return "webhook" }

// WebhookPayload is the JSON body of a webhook call.
type WebhookPayload struct {
	Event     string            `json:"event"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Fields    map[string]string `json:"fields,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (c *WebhookChannel) Send(ctx context.Context, n models.Notification) error {
	url := n.Recipient.WebhookURL
	if url == "" {
		url = c.fallbackURL
	}
	if url == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(WebhookPayload{
		Event:     n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Fields:    n.Fields,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Delivery-ID", uuid.NewString())
	req.Header.Set("X-Notification-ID", n.ID)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// InAppPublisher pushes a notification to the user's open app sessions.
type InAppPublisher interface {
	Publish(userID string, n models.Notification) error
}

// InAppChannel stores the notification in the user's inbox and pushes it to
// connected sessions. A user without an open session still gets the inbox
// entry.
type InAppChannel struct {
	store     repositories.DocumentStore
	publisher InAppPublisher
	logger    *zap.Logger
}

func NewInAppChannel(store repositories.DocumentStore, publisher InAppPublisher, logger *zap.Logger) *InAppChannel {
	return &InAppChannel{store: store, publisher: publisher, logger: logger}
}

func (c *InAppChannel) Name() string { return "in_app" }

func (c *InAppChannel) Send(ctx context.Context, n models.Notification) error {
	if n.Recipient.UserID == "" {
		return ErrNoRecipient
	}
	if err := c.store.Create(ctx, models.CollectionNotifications, n.ID, n.ToMap()); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	if c.publisher != nil {
		if err := c.publisher.Publish(n.Recipient.UserID, n); err != nil {
			c.logger.Debug("in-app notification not pushed", zap.String("userId", n.Recipient.UserID), zap.Error(err))
		}
	}
	return nil
}
