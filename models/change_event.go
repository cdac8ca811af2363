package models

// ChangeEvent is the before/after pair delivered by the hosting event runtime
// for one document write. Before is empty on creation.
type ChangeEvent struct {
	EventID    string                 `json:"eventId" validate:"required"`
	DocumentID string                 `json:"documentId" validate:"required"`
	Before     map[string]interface{} `json:"before"`
	After      map[string]interface{} `json:"after" validate:"required"`
}

// FCMTokenUpdateRequest represents the request body for updating FCM tokens
type FCMTokenUpdateRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}
