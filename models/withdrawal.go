package models

import (
	"time"
)

// Withdrawal statuses.
const (
	WithdrawalPending  = "PENDENTE"
	WithdrawalApproved = "APROVADO"
	WithdrawalRejected = "RECUSADO"
	WithdrawalPaid     = "PAGO"
)

type Withdrawal struct {
	ID              string     `json:"id" bson:"_id" firestore:"-"`
	UserID          string     `json:"userId" bson:"userId" firestore:"userId"`
	UserName        string     `json:"userName" bson:"userName" firestore:"userName"`
	ProfilePicture  string     `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	UnitID          string     `json:"unitId" bson:"unitId" firestore:"unitId"`
	UnitName        string     `json:"unitName" bson:"unitName" firestore:"unitName"`
	Amount          float64    `json:"amount" bson:"amount" firestore:"amount"`
	PixKey          string     `json:"pixKey" bson:"pixKey" firestore:"pixKey"`
	Status          string     `json:"status" bson:"status" firestore:"status"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty" bson:"processedAt,omitempty" firestore:"processedAt,omitempty"`
	UserNote        string     `json:"userNote,omitempty" bson:"userNote,omitempty" firestore:"userNote,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty" firestore:"rejectionReason,omitempty"`
}

// ToMap returns the document body as stored, without the id.
func (w *Withdrawal) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		FieldLegacyUserID:   w.UserID,
		"userName":          w.UserName,
		FieldProfilePicture: w.ProfilePicture,
		FieldUnitID:         w.UnitID,
		FieldUnitName:       w.UnitName,
		FieldAmount:         w.Amount,
		"pixKey":            w.PixKey,
		FieldStatus:         w.Status,
		FieldCreatedAt:      w.CreatedAt,
	}
	if w.UserNote != "" {
		m["userNote"] = w.UserNote
	}
	return m
}

// CreateWithdrawalRequest is the body of a withdrawal request.
type CreateWithdrawalRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	PixKey   string  `json:"pixKey" validate:"required,max=140"`
	UserNote string  `json:"userNote,omitempty" validate:"max=500"`
}
