package models

import "time"

// Derived batch statuses.
const (
	BatchStatusInProgress = "Em Andamento"
	BatchStatusDone       = "Concluído"
)

// Contact is one entry of a bulk submission.
type Contact struct {
	Name  string `json:"name" bson:"name" firestore:"name" validate:"required,min=2,max=120"`
	Phone string `json:"phone" bson:"phone" firestore:"phone" validate:"required"`
}

// PackagedIndication is a bulk referral submission tracked as one batch.
type PackagedIndication struct {
	ID             string     `json:"id" bson:"_id" firestore:"-"`
	IndicatorID    string     `json:"indicator_id" bson:"indicator_id" firestore:"indicator_id"`
	IndicatorName  string     `json:"indicator_name" bson:"indicator_name" firestore:"indicator_name"`
	ProfilePicture string     `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	UnitID         string     `json:"unitId" bson:"unitId" firestore:"unitId"`
	UnitName       string     `json:"unitName" bson:"unitName" firestore:"unitName"`
	Indications    []Contact  `json:"indications" bson:"indications" firestore:"indications"`
	TotalCount     int        `json:"totalCount" bson:"totalCount" firestore:"totalCount"`
	ProcessedCount int        `json:"processedCount" bson:"processedCount" firestore:"processedCount"`
	PendingCount   int        `json:"pendingCount" bson:"pendingCount" firestore:"pendingCount"`
	Progress       int        `json:"progress" bson:"progress" firestore:"progress"`
	Status         string     `json:"status,omitempty" bson:"status,omitempty" firestore:"status,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// BatchStatus derives the batch status from its progress unless stored is set.
func BatchStatus(stored string, progress int) string {
	if stored != "" {
		return stored
	}
	if progress < 100 {
		return BatchStatusInProgress
	}
	return BatchStatusDone
}

// ToMap returns the document body as stored, without the id.
func (p *PackagedIndication) ToMap() map[string]interface{} {
	contacts := make([]interface{}, 0, len(p.Indications))
	for _, c := range p.Indications {
		contacts = append(contacts, map[string]interface{}{"name": c.Name, "phone": c.Phone})
	}
	m := map[string]interface{}{
		FieldIndicatorID:    p.IndicatorID,
		FieldIndicatorName:  p.IndicatorName,
		FieldProfilePicture: p.ProfilePicture,
		FieldUnitID:         p.UnitID,
		FieldUnitName:       p.UnitName,
		"indications":       contacts,
		"totalCount":        p.TotalCount,
		"processedCount":    p.ProcessedCount,
		"pendingCount":      p.PendingCount,
		"progress":          p.Progress,
		FieldCreatedAt:      p.CreatedAt,
	}
	if p.Status != "" {
		m[FieldStatus] = p.Status
	}
	return m
}

// CreatePackagedIndicationRequest is the body of a bulk submission.
type CreatePackagedIndicationRequest struct {
	Indications []Contact `json:"indications" validate:"required,min=1,max=500,dive"`
}
