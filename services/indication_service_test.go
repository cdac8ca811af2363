package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
)

func indicationFixture() (*IndicationService, *repositories.MemoryStore) {
	s := repositories.NewMemoryStore()
	s.Put(models.CollectionUsers, "u1", map[string]interface{}{
		"fullName": "Ana Souza", "displayName": "Ana", "profilePicture": "ana.png", "unitId": "unit1",
	})
	s.Put(models.CollectionUsers, "u2", map[string]interface{}{"fullName": "Bruno", "unitId": "closed-unit"})
	s.Put(models.CollectionUnits, "unit1", map[string]interface{}{"name": "Centro"})
	svc := NewIndicationService(s, repositories.NewUserRepository(s), zap.NewNop(), func() time.Time { return testNow })
	return svc, s
}

func TestCreateIndication(t *testing.T) {
	svc, s := indicationFixture()
	ctx := context.Background()

	indication, err := svc.CreateIndication(ctx, "u1", models.CreateIndicationRequest{
		Name:    " Carlos ",
		Phone:   "(11) 91234-5678",
		Product: "Seguro Auto",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, indication.ID)
	assert.Equal(t, models.StatusPendingContact, indication.Status)
	assert.Equal(t, "Carlos", indication.Name)
	assert.Equal(t, "5511912345678", indication.Phone)
	assert.Equal(t, "Ana", indication.IndicatorName)
	assert.Equal(t, "ana.png", indication.ProfilePicture)
	assert.Equal(t, "Centro", indication.UnitName)
	assert.Equal(t, testNow, indication.CreatedAt)

	doc, err := s.Get(ctx, models.CollectionIndications, indication.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Data[models.FieldIndicatorID])
	assert.Equal(t, models.StatusPendingContact, doc.Data[models.FieldStatus])

	// The stored record shows up in the owner's feed
	item := NormalizeIndication(*doc, "u1", testNow)
	assert.Equal(t, "Enviado há menos de um minuto", item.Date)
}

func TestCreateIndicationErrors(t *testing.T) {
	svc, _ := indicationFixture()
	ctx := context.Background()

	_, err := svc.CreateIndication(ctx, "u1", models.CreateIndicationRequest{Name: "Carlos", Phone: "123", Product: "Seguro"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CreateIndication(ctx, "ghost", models.CreateIndicationRequest{Name: "Carlos", Phone: "11912345678", Product: "Seguro"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCreateIndicationMissingUnit(t *testing.T) {
	svc, _ := indicationFixture()

	indication, err := svc.CreateIndication(context.Background(), "u2", models.CreateIndicationRequest{Name: "Carlos", Phone: "11912345678", Product: "Seguro"})
	require.NoError(t, err)
	assert.Equal(t, "closed-unit", indication.UnitID)
	assert.Empty(t, indication.UnitName)
	assert.Equal(t, "Bruno", indication.IndicatorName)
}

func TestCreatePackagedIndication(t *testing.T) {
	svc, s := indicationFixture()
	ctx := context.Background()

	batch, err := svc.CreatePackagedIndication(ctx, "u1", models.CreatePackagedIndicationRequest{
		Indications: []models.Contact{
			{Name: "Carlos", Phone: "11912345678"},
			{Name: "Daniela", Phone: "(21) 3123-4567"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.TotalCount)
	assert.Equal(t, 2, batch.PendingCount)
	assert.Equal(t, 0, batch.ProcessedCount)
	assert.Equal(t, "552131234567", batch.Indications[1].Phone)

	doc, err := s.Get(ctx, models.CollectionPackagedIndications, batch.ID)
	require.NoError(t, err)
	item := NormalizePackagedIndication(*doc, "u1", testNow)
	assert.Equal(t, "Lote de 2 indicações", item.Name)
	assert.Equal(t, models.BatchStatusInProgress, item.Status)

	_, err = svc.CreatePackagedIndication(ctx, "u1", models.CreatePackagedIndicationRequest{
		Indications: []models.Contact{{Name: "Carlos", Phone: "11912345678"}, {Name: "Bad", Phone: "1"}},
	})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "contact 2")
}

func TestCreateWithdrawal(t *testing.T) {
	svc, s := indicationFixture()
	ctx := context.Background()

	withdrawal, err := svc.CreateWithdrawal(ctx, "u1", models.CreateWithdrawalRequest{Amount: 120.5, PixKey: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, withdrawal.Status)
	assert.Equal(t, "u1", withdrawal.UserID)

	doc, err := s.Get(ctx, models.CollectionWithdrawals, withdrawal.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.Data[models.FieldLegacyUserID])
	assert.Equal(t, 120.5, doc.Data[models.FieldAmount])
}
