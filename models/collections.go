package models

// Collection names in the document store. Shared with the mobile app and the
// notification templates, so they must not change.
const (
	CollectionIndications         = "indications"
	CollectionOpportunities       = "opportunities"
	CollectionPackagedIndications = "packagedIndications"
	CollectionWithdrawals         = "withdrawals"
	CollectionCampaigns           = "campaigns"
	CollectionUsers               = "users"
	CollectionUnits               = "units"
	CollectionNotifications       = "notifications"
)

// Document field names used by queries and fan-out updates.
const (
	FieldIndicatorID    = "indicator_id"
	FieldIndicatorName  = "indicator_name"
	FieldLegacyUserID   = "userId"
	FieldUnitID         = "unitId"
	FieldUnitName       = "unitName"
	FieldName           = "name"
	FieldFullName       = "fullName"
	FieldDisplayName    = "displayName"
	FieldProfilePicture = "profilePicture"
	FieldSentByUserID   = "sentByUserId"
	FieldStatus         = "status"
	FieldProduct        = "product"
	FieldCommission     = "commission"
	FieldArchived       = "archived"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
	FieldFCMToken       = "fcmToken"
	FieldEmail          = "email"
	FieldWebhookURL     = "webhookUrl"
	FieldAmount         = "amount"
)
