package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/indique_backend/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Put(models.CollectionUsers, "u1", map[string]interface{}{
		"email":          "ana@example.com",
		"fullName":       "Ana Souza",
		"profilePicture": 42,
		"unitId":         "unit1",
	})
	s.Put(models.CollectionUnits, "unit1", map[string]interface{}{"unitName": "Centro", "webhookUrl": "https://hooks.example.com"})
	repo := NewUserRepository(s)

	user, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", user.Name())
	assert.Empty(t, user.ProfilePicture)
	assert.Equal(t, "unit1", user.UnitID)

	unit, err := repo.GetUnit(ctx, "unit1")
	require.NoError(t, err)
	assert.Equal(t, "Centro", unit.Name)
	assert.Equal(t, "https://hooks.example.com", unit.WebhookURL)

	_, err = repo.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.UpdateFCMToken(ctx, "u1", "token-1"))
	doc, err := s.Get(ctx, models.CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", doc.Data[models.FieldFCMToken])
	assert.IsType(t, time.Time{}, doc.Data[models.FieldUpdatedAt])
}

func TestUnitFromDataPrefersName(t *testing.T) {
	unit := UnitFromData("x", map[string]interface{}{"name": "Norte", "unitName": "Antigo"})
	assert.Equal(t, "Norte", unit.Name)
}

func TestEventGuardWithoutRedis(t *testing.T) {
	var nilGuard *EventGuard
	ok, err := nilGuard.Acquire(context.Background(), "user", "e1")
	require.NoError(t, err)
	assert.True(t, ok)

	g := NewEventGuard(nil, time.Hour)
	ok, err = g.Acquire(context.Background(), "user", "e1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, g.Release(context.Background(), "user", "e1"))

	assert.Equal(t, "trigger:event:user:e1", eventKey("user", "e1"))
}
