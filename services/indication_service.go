package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/utils"
)

// IndicationService creates referrals, bulk batches and withdrawals. The
// submitter's name, picture and unit are copied onto the record here; later
// name changes are not propagated.
type IndicationService struct {
	store  repositories.DocumentStore
	users  *repositories.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewIndicationService creates a new indication service instance
func NewIndicationService(store repositories.DocumentStore, users *repositories.UserRepository, logger *zap.Logger, now func() time.Time) *IndicationService {
	if now == nil {
		now = time.Now
	}
	return &IndicationService{store: store, users: users, logger: logger, now: now}
}

// identity is the denormalized submitter data stamped on new records.
type identity struct {
	user *models.User
	unit *models.Unit
}

func (s *IndicationService) identity(ctx context.Context, userID string) (*identity, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	id := &identity{user: user, unit: &models.Unit{ID: user.UnitID}}
	if user.UnitID == "" {
		return id, nil
	}
	unit, err := s.users.GetUnit(ctx, user.UnitID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("user references a missing unit", zap.String("userId", userID), zap.String("unitId", user.UnitID))
		return id, nil
	}
	id.unit = unit
	return id, nil
}

// CreateIndication stores a single referral in PENDENTE CONTATO.
func (s *IndicationService) CreateIndication(ctx context.Context, userID string, req models.CreateIndicationRequest) (*models.Indication, error) {
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	who, err := s.identity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve submitter: %w", err)
	}

	indication := &models.Indication{
		ID:             uuid.NewString(),
		IndicatorID:    who.user.ID,
		IndicatorName:  who.user.Name(),
		ProfilePicture: who.user.ProfilePicture,
		UnitID:         who.unit.ID,
		UnitName:       who.unit.Name,
		Name:           utils.SanitizeInput(req.Name),
		Phone:          phone,
		Product:        utils.SanitizeInput(req.Product),
		Observations:   utils.SanitizeInput(req.Observations),
		Status:         models.StatusPendingContact,
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, models.CollectionIndications, indication.ID, indication.ToMap()); err != nil {
		return nil, fmt.Errorf("create indication: %w", err)
	}

	s.logger.Info("indication created", zap.String("indicationId", indication.ID), zap.String("userId", userID))
	return indication, nil
}

// CreatePackagedIndication stores a bulk batch with every contact pending.
func (s *IndicationService) CreatePackagedIndication(ctx context.Context, userID string, req models.CreatePackagedIndicationRequest) (*models.PackagedIndication, error) {
	contacts := make([]models.Contact, 0, len(req.Indications))
	for i, c := range req.Indications {
		phone, err := utils.SanitizePhone(c.Phone)
		if err != nil {
			return nil, fmt.Errorf("%w: contact %d: %v", ErrInvalidRequest, i+1, err)
		}
		contacts = append(contacts, models.Contact{Name: utils.SanitizeInput(c.Name), Phone: phone})
	}
	who, err := s.identity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve submitter: %w", err)
	}

	batch := &models.PackagedIndication{
		ID:             uuid.NewString(),
		IndicatorID:    who.user.ID,
		IndicatorName:  who.user.Name(),
		ProfilePicture: who.user.ProfilePicture,
		UnitID:         who.unit.ID,
		UnitName:       who.unit.Name,
		Indications:    contacts,
		TotalCount:     len(contacts),
		PendingCount:   len(contacts),
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, models.CollectionPackagedIndications, batch.ID, batch.ToMap()); err != nil {
		return nil, fmt.Errorf("create packaged indication: %w", err)
	}

	s.logger.Info("packaged indication created",
		zap.String("batchId", batch.ID), zap.String("userId", userID), zap.Int("contacts", len(contacts)))
	return batch, nil
}

// CreateWithdrawal stores a withdrawal request in PENDENTE.
func (s *IndicationService) CreateWithdrawal(ctx context.Context, userID string, req models.CreateWithdrawalRequest) (*models.Withdrawal, error) {
	who, err := s.identity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve requester: %w", err)
	}

	withdrawal := &models.Withdrawal{
		ID:             uuid.NewString(),
		UserID:         who.user.ID,
		UserName:       who.user.Name(),
		ProfilePicture: who.user.ProfilePicture,
		UnitID:         who.unit.ID,
		UnitName:       who.unit.Name,
		Amount:         req.Amount,
		PixKey:         utils.SanitizeInput(req.PixKey),
		Status:         models.WithdrawalPending,
		UserNote:       utils.SanitizeInput(req.UserNote),
		CreatedAt:      s.now(),
	}
	if err := s.store.Create(ctx, models.CollectionWithdrawals, withdrawal.ID, withdrawal.ToMap()); err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}

	s.logger.Info("withdrawal requested",
		zap.String("withdrawalId", withdrawal.ID), zap.String("userId", userID), zap.Float64("amount", req.Amount))
	return withdrawal, nil
}
