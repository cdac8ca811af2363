// models/user.go
package models

// User is the canonical owner of the denormalized indicator fields.
type User struct {
	ID             string `json:"id" bson:"_id" firestore:"-"`
	Email          string `json:"email" bson:"email" firestore:"email"`
	FullName       string `json:"fullName" bson:"fullName" firestore:"fullName"`
	DisplayName    string `json:"displayName,omitempty" bson:"displayName,omitempty" firestore:"displayName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty" bson:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	Phone          string `json:"phone,omitempty" bson:"phone,omitempty" firestore:"phone,omitempty"`
	UnitID         string `json:"unitId,omitempty" bson:"unitId,omitempty" firestore:"unitId,omitempty"`
	FCMToken       string `json:"fcmToken,omitempty" bson:"fcmToken,omitempty" firestore:"fcmToken,omitempty"`
}

// Name returns the display name, falling back to the full name.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.FullName
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
