package models

import (
	"time"
)

// Notification types.
const (
	NotificationStatusChanged    = "status_changed"
	NotificationCommissionEarned = "commission_earned"
	NotificationIndicationNew    = "indication_created"
	NotificationWithdrawalUpdate = "withdrawal_updated"
)

// Recipient holds the delivery addresses resolved for one notification.
// Channels skip a notification when their address is empty.
type Recipient struct {
	UserID     string `json:"userId,omitempty"`
	Email      string `json:"email,omitempty"`
	FCMToken   string `json:"-"`
	WebhookURL string `json:"-"`
}

type Notification struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Fields    map[string]string `json:"fields,omitempty"`
	Recipient Recipient         `json:"recipient"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ToMap returns the in-app notification document body.
func (n *Notification) ToMap() map[string]interface{} {
	fields := make(map[string]interface{}, len(n.Fields))
	for k, v := range n.Fields {
		fields[k] = v
	}
	return map[string]interface{}{
		FieldLegacyUserID: n.Recipient.UserID,
		"type":            n.Type,
		"title":           n.Title,
		"message":         n.Body,
		"data":            fields,
		"isRead":          false,
		FieldCreatedAt:    n.CreatedAt,
	}
}
