package models

import "time"

// Campaign is a message a user sent to their contacts through the app.
type Campaign struct {
	ID             string    `json:"id" bson:"_id" firestore:"-"`
	SentByUserID   string    `json:"sentByUserId" bson:"sentByUserId" firestore:"sentByUserId"`
	ProfilePicture string    `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	UnitID         string    `json:"unitId" bson:"unitId" firestore:"unitId"`
	UnitName       string    `json:"unitName" bson:"unitName" firestore:"unitName"`
	Title          string    `json:"title" bson:"title" firestore:"title"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}
