package models

// Unit is a franchise location that receives and processes referrals.
type Unit struct {
	ID         string `json:"id" bson:"_id" firestore:"-"`
	Name       string `json:"name" bson:"name" firestore:"name"`
	Email      string `json:"email,omitempty" bson:"email,omitempty" firestore:"email,omitempty"`
	WebhookURL string `json:"webhookUrl,omitempty" bson:"webhookUrl,omitempty" firestore:"webhookUrl,omitempty"`
}
