package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/utils"
)

// UserRepository reads the canonical user and unit documents.
type UserRepository struct {
	store DocumentStore
}

func NewUserRepository(store DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.store.Get(ctx, models.CollectionUsers, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return UserFromData(doc.ID, doc.Data), nil
}

func (r *UserRepository) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	doc, err := r.store.Get(ctx, models.CollectionUnits, unitID)
	if err != nil {
		return nil, fmt.Errorf("get unit %s: %w", unitID, err)
	}
	return UnitFromData(doc.ID, doc.Data), nil
}

// UpdateFCMToken stores the push token used by the push channel.
func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID, token string) error {
	err := r.store.Update(ctx, models.CollectionUsers, userID, map[string]interface{}{
		models.FieldFCMToken:  token,
		models.FieldUpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("update fcm token for %s: %w", userID, err)
	}
	return nil
}

// UserFromData reads a user document, ignoring fields of the wrong type.
func UserFromData(id string, data map[string]interface{}) *models.User {
	return &models.User{
		ID:             id,
		Email:          utils.StringOr(data, models.FieldEmail, ""),
		FullName:       utils.StringOr(data, models.FieldFullName, ""),
		DisplayName:    utils.StringOr(data, models.FieldDisplayName, ""),
		ProfilePicture: utils.StringOr(data, models.FieldProfilePicture, ""),
		Phone:          utils.StringOr(data, "phone", ""),
		UnitID:         utils.StringOr(data, models.FieldUnitID, ""),
		FCMToken:       utils.StringOr(data, models.FieldFCMToken, ""),
	}
}

// UnitFromData reads a unit document. Older units store the name as unitName.
func UnitFromData(id string, data map[string]interface{}) *models.Unit {
	name := utils.StringOr(data, models.FieldName, "")
	if name == "" {
		name = utils.StringOr(data, models.FieldUnitName, "")
	}
	return &models.Unit{
		ID:         id,
		Name:       name,
		Email:      utils.StringOr(data, models.FieldEmail, ""),
		WebhookURL: utils.StringOr(data, models.FieldWebhookURL, ""),
	}
}
