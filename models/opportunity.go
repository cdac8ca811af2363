package models

import "time"

// Opportunity is a referral that entered the sales pipeline. Older documents
// carry the owner in userId instead of indicator_id.
type Opportunity struct {
	ID             string     `json:"id" bson:"_id" firestore:"-"`
	IndicatorID    string     `json:"indicator_id" bson:"indicator_id" firestore:"indicator_id"`
	LegacyUserID   string     `json:"userId,omitempty" bson:"userId,omitempty" firestore:"userId,omitempty"`
	IndicatorName  string     `json:"indicator_name" bson:"indicator_name" firestore:"indicator_name"`
	ProfilePicture string     `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	UnitID         string     `json:"unitId" bson:"unitId" firestore:"unitId"`
	UnitName       string     `json:"unitName" bson:"unitName" firestore:"unitName"`
	Name           string     `json:"name" bson:"name" firestore:"name"`
	Product        string     `json:"product" bson:"product" firestore:"product"`
	Status         string     `json:"status" bson:"status" firestore:"status"`
	Commission     float64    `json:"commission,omitempty" bson:"commission,omitempty" firestore:"commission,omitempty"`
	Archived       bool       `json:"archived" bson:"archived" firestore:"archived"`
	CreatedAt      time.Time  `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// ArchivingStatuses are the lost-deal statuses that archive an opportunity.
var ArchivingStatuses = []string{StatusNotInterested, StatusNotClosed, StatusInsuranceDenied}

// IsArchivingStatus reports whether moving into s archives the opportunity.
func IsArchivingStatus(s string) bool {
	for _, status := range ArchivingStatuses {
		if status == s {
			return true
		}
	}
	return false
}
