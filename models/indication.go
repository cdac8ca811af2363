package models

import "time"

// Referral status vocabulary, shared by indications and opportunities.
const (
	StatusPendingContact  = "PENDENTE CONTATO"
	StatusContactDone     = "CONTATO REALIZADO"
	StatusProposalStarted = "INICIO DE PROPOSTA"
	StatusProposalSent    = "PROPOSTA APRESENTADA"
	StatusWaitingCustomer = "AGUARDANDO CLIENTE"
	StatusClosed          = "FECHADO"
	StatusNotClosed       = "NÃO FECHADO"
	StatusNotInterested   = "NÃO INTERESSOU"
	StatusInsuranceDenied = "SEGURO RECUSADO"
)

// Statuses is the full vocabulary in pipeline order.
var Statuses = []string{
	StatusPendingContact,
	StatusContactDone,
	StatusProposalStarted,
	StatusProposalSent,
	StatusWaitingCustomer,
	StatusClosed,
	StatusNotClosed,
	StatusNotInterested,
	StatusInsuranceDenied,
}

// IsKnownStatus reports whether s belongs to the status vocabulary.
func IsKnownStatus(s string) bool {
	for _, status := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

// Indication is a single referral submitted by a user.
type Indication struct {
	ID             string     `json:"id" bson:"_id" firestore:"-"`
	IndicatorID    string     `json:"indicator_id" bson:"indicator_id" firestore:"indicator_id"`
	IndicatorName  string     `json:"indicator_name" bson:"indicator_name" firestore:"indicator_name"`
	ProfilePicture string     `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	UnitID         string     `json:"unitId" bson:"unitId" firestore:"unitId"`
	UnitName       string     `json:"unitName" bson:"unitName" firestore:"unitName"`
	Name           string     `json:"name" bson:"name" firestore:"name"`
	Phone          string     `json:"phone" bson:"phone" firestore:"phone"`
	Product        string     `json:"product" bson:"product" firestore:"product"`
	Observations   string     `json:"observations,omitempty" bson:"observations,omitempty" firestore:"observations,omitempty"`
	Status         string     `json:"status" bson:"status" firestore:"status"`
	Archived       bool       `json:"archived" bson:"archived" firestore:"archived"`
	ExternalID     string     `json:"externalId,omitempty" bson:"externalId,omitempty" firestore:"externalId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// ToMap returns the document body as stored, without the id.
func (i *Indication) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		FieldIndicatorID:    i.IndicatorID,
		FieldIndicatorName:  i.IndicatorName,
		FieldProfilePicture: i.ProfilePicture,
		FieldUnitID:         i.UnitID,
		FieldUnitName:       i.UnitName,
		FieldName:           i.Name,
		"phone":             i.Phone,
		FieldProduct:        i.Product,
		"observations":      i.Observations,
		FieldStatus:         i.Status,
		FieldArchived:       i.Archived,
		FieldCreatedAt:      i.CreatedAt,
	}
	if i.ExternalID != "" {
		m["externalId"] = i.ExternalID
	}
	if i.UpdatedAt != nil {
		m[FieldUpdatedAt] = *i.UpdatedAt
	}
	return m
}

// CreateIndicationRequest is the body accepted when a user submits a referral.
type CreateIndicationRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=120"`
	Phone        string `json:"phone" validate:"required"`
	Product      string `json:"product" validate:"required,max=120"`
	Observations string `json:"observations,omitempty" validate:"max=1000"`
}
