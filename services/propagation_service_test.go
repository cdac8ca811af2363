package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
)

func propagationStore() *repositories.MemoryStore {
	s := repositories.NewMemoryStore()
	s.Put(models.CollectionIndications, "i1", map[string]interface{}{"indicator_id": "u1", "userId": "u1", "profilePicture": "old.png", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionIndications, "i2", map[string]interface{}{"userId": "u1", "profilePicture": "old.png", "unitId": "unit2", "unitName": "Sul"})
	s.Put(models.CollectionOpportunities, "o1", map[string]interface{}{"indicator_id": "u1", "profilePicture": "new.png", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionOpportunities, "o2", map[string]interface{}{"indicator_id": "u1", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionPackagedIndications, "b1", map[string]interface{}{"indicator_id": "u1", "profilePicture": "old.png", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionWithdrawals, "w1", map[string]interface{}{"userId": "u1", "profilePicture": "old.png", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionCampaigns, "c1", map[string]interface{}{"sentByUserId": "u1", "profilePicture": "old.png", "unitId": "unit1", "unitName": "Centro"})
	s.Put(models.CollectionIndications, "other", map[string]interface{}{"indicator_id": "u2", "profilePicture": "old.png", "unitId": "unit2", "unitName": "Sul"})
	return s
}

func newPropagationService(s repositories.DocumentStore) *PropagationService {
	return NewPropagationService(s, zap.NewNop(), nil, func() time.Time { return testNow })
}

func field(t *testing.T, s *repositories.MemoryStore, collection, id, key string) interface{} {
	t.Helper()
	doc, err := s.Get(context.Background(), collection, id)
	require.NoError(t, err)
	return doc.Data[key]
}

func TestHandleUserUpdatePropagatesPicture(t *testing.T) {
	s := propagationStore()
	svc := newPropagationService(s)

	result, err := svc.HandleUserUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "u1",
		Before:     map[string]interface{}{"fullName": "Ana", "profilePicture": "old.png"},
		After:      map[string]interface{}{"fullName": "Ana", "profilePicture": "new.png"},
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, models.FieldProfilePicture, result.Field)
	// i1 is found twice and o1 already holds the new value
	assert.Equal(t, 6, result.Updated)

	for _, ref := range [][2]string{
		{models.CollectionIndications, "i1"},
		{models.CollectionIndications, "i2"},
		{models.CollectionOpportunities, "o2"},
		{models.CollectionPackagedIndications, "b1"},
		{models.CollectionWithdrawals, "w1"},
		{models.CollectionCampaigns, "c1"},
	} {
		assert.Equal(t, "new.png", field(t, s, ref[0], ref[1], models.FieldProfilePicture), ref[1])
	}
	assert.Equal(t, "old.png", field(t, s, models.CollectionIndications, "other", models.FieldProfilePicture))

	// Everything lands in one batch
	assert.Len(t, s.Commits(), 1)
}

func TestHandleUserUpdateRemovedPicture(t *testing.T) {
	s := propagationStore()
	svc := newPropagationService(s)

	result, err := svc.HandleUserUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "u1",
		Before:     map[string]interface{}{"profilePicture": "old.png"},
		After:      map[string]interface{}{"profilePicture": ""},
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	// o2 has no picture at all and is left alone
	assert.Equal(t, 6, result.Updated)
	assert.Nil(t, field(t, s, models.CollectionIndications, "i1", models.FieldProfilePicture))
	assert.Nil(t, field(t, s, models.CollectionOpportunities, "o1", models.FieldProfilePicture))
}

func TestHandleUserUpdateNoop(t *testing.T) {
	s := propagationStore()
	svc := newPropagationService(s)

	result, err := svc.HandleUserUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "u1",
		Before:     map[string]interface{}{"displayName": "Ana", "profilePicture": "old.png"},
		After:      map[string]interface{}{"displayName": "Ana Paula", "profilePicture": "old.png"},
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Zero(t, result.Updated)
	assert.Empty(t, s.Finds())
	assert.Empty(t, s.Commits())
}

func TestHandleUserUpdateIsAtomic(t *testing.T) {
	s := propagationStore()
	s.FailCommit = true
	svc := newPropagationService(s)

	result, err := svc.HandleUserUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "u1",
		Before:     map[string]interface{}{"profilePicture": "old.png"},
		After:      map[string]interface{}{"profilePicture": "new.png"},
	})
	assert.ErrorIs(t, err, ErrPropagation)
	assert.ErrorIs(t, err, repositories.ErrBatchRejected)
	assert.Nil(t, result)

	assert.Equal(t, "old.png", field(t, s, models.CollectionIndications, "i1", models.FieldProfilePicture))
	assert.Equal(t, "old.png", field(t, s, models.CollectionWithdrawals, "w1", models.FieldProfilePicture))
}

func TestHandleUserUpdateLookupFailure(t *testing.T) {
	s := propagationStore()
	s.FindErr = func(collection string, _ []repositories.Filter) error {
		if collection == models.CollectionCampaigns {
			return errors.New("unavailable")
		}
		return nil
	}
	svc := newPropagationService(s)

	_, err := svc.HandleUserUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "u1",
		After:      map[string]interface{}{"profilePicture": "new.png"},
	})
	assert.ErrorIs(t, err, ErrPropagation)
	assert.Empty(t, s.Commits())
}

func TestHandleUnitUpdate(t *testing.T) {
	t.Run("renamed unit", func(t *testing.T) {
		s := propagationStore()
		svc := newPropagationService(s)

		result, err := svc.HandleUnitUpdate(context.Background(), models.ChangeEvent{
			DocumentID: "unit1",
			Before:     map[string]interface{}{"name": "Centro"},
			After:      map[string]interface{}{"name": "Centro Histórico"},
		})
		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.Equal(t, models.FieldUnitName, result.Field)
		assert.Equal(t, 6, result.Updated)
		assert.Equal(t, "Centro Histórico", field(t, s, models.CollectionCampaigns, "c1", models.FieldUnitName))
		assert.Equal(t, "Sul", field(t, s, models.CollectionIndications, "i2", models.FieldUnitName))
	})

	t.Run("same name", func(t *testing.T) {
		s := propagationStore()
		result, err := newPropagationService(s).HandleUnitUpdate(context.Background(), models.ChangeEvent{
			DocumentID: "unit1",
			Before:     map[string]interface{}{"name": "Centro", "email": "a@b.com"},
			After:      map[string]interface{}{"name": "Centro", "email": "c@d.com"},
		})
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Empty(t, s.Commits())
	})

	t.Run("cleared name is not propagated", func(t *testing.T) {
		s := propagationStore()
		result, err := newPropagationService(s).HandleUnitUpdate(context.Background(), models.ChangeEvent{
			DocumentID: "unit1",
			Before:     map[string]interface{}{"name": "Centro"},
			After:      map[string]interface{}{"name": ""},
		})
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Empty(t, s.Commits())
	})
}

func TestHandleOpportunityUpdate(t *testing.T) {
	tests := []struct {
		name    string
		before  map[string]interface{}
		after   map[string]interface{}
		archive bool
	}{
		{"moved into lost deal", map[string]interface{}{"status": models.StatusProposalSent}, map[string]interface{}{"status": models.StatusNotInterested}, true},
		{"insurance denied", map[string]interface{}{"status": models.StatusWaitingCustomer}, map[string]interface{}{"status": models.StatusInsuranceDenied}, true},
		{"created archived status", nil, map[string]interface{}{"status": models.StatusNotClosed}, true},
		{"status kept", map[string]interface{}{"status": models.StatusNotClosed}, map[string]interface{}{"status": models.StatusNotClosed, "name": "x"}, false},
		{"closed deal", map[string]interface{}{"status": models.StatusProposalSent}, map[string]interface{}{"status": models.StatusClosed}, false},
		{"already archived", map[string]interface{}{"status": models.StatusProposalSent}, map[string]interface{}{"status": models.StatusNotClosed, "archived": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := propagationStore()
			svc := newPropagationService(s)

			result, err := svc.HandleOpportunityUpdate(context.Background(), models.ChangeEvent{
				DocumentID: "o1", Before: tt.before, After: tt.after,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.archive, result.Changed)
			if tt.archive {
				assert.Equal(t, true, field(t, s, models.CollectionOpportunities, "o1", models.FieldArchived))
				assert.Equal(t, testNow, field(t, s, models.CollectionOpportunities, "o1", models.FieldUpdatedAt))
				assert.Len(t, s.Commits(), 1)
			} else {
				assert.Empty(t, s.Commits())
			}
		})
	}
}

func TestHandleOpportunityUpdateMissingDocument(t *testing.T) {
	svc := newPropagationService(propagationStore())

	_, err := svc.HandleOpportunityUpdate(context.Background(), models.ChangeEvent{
		DocumentID: "ghost",
		Before:     map[string]interface{}{"status": models.StatusProposalSent},
		After:      map[string]interface{}{"status": models.StatusNotClosed},
	})
	assert.ErrorIs(t, err, ErrPropagation)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestInvalidEvents(t *testing.T) {
	svc := newPropagationService(propagationStore())
	ctx := context.Background()

	_, err := svc.HandleUserUpdate(ctx, models.ChangeEvent{After: map[string]interface{}{}})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = svc.HandleUnitUpdate(ctx, models.ChangeEvent{DocumentID: "unit1"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = svc.HandleOpportunityUpdate(ctx, models.ChangeEvent{DocumentID: "o1"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}
