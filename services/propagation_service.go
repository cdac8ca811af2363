package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/utils"
)

// PropagationResult describes what one trigger firing did. Changed is false
// when the watched field was not modified and nothing was written.
type PropagationResult struct {
	Changed bool   `json:"changed"`
	Field   string `json:"field,omitempty"`
	Updated int    `json:"updated"`
}

// dependent is one lookup of records holding a copy of a canonical field.
type dependent struct {
	collection string
	key        string
}

// Records carrying the owner's profile picture. Indications and opportunities
// are also found by the legacy userId key.
var pictureDependents = []dependent{
	{models.CollectionIndications, models.FieldIndicatorID},
	{models.CollectionIndications, models.FieldLegacyUserID},
	{models.CollectionOpportunities, models.FieldIndicatorID},
	{models.CollectionOpportunities, models.FieldLegacyUserID},
	{models.CollectionPackagedIndications, models.FieldIndicatorID},
	{models.CollectionWithdrawals, models.FieldLegacyUserID},
	{models.CollectionCampaigns, models.FieldSentByUserID},
}

// Records carrying the unit name.
var unitNameDependents = []dependent{
	{models.CollectionIndications, models.FieldUnitID},
	{models.CollectionOpportunities, models.FieldUnitID},
	{models.CollectionPackagedIndications, models.FieldUnitID},
	{models.CollectionWithdrawals, models.FieldUnitID},
	{models.CollectionCampaigns, models.FieldUnitID},
}

// PropagationService keeps denormalized copies of user and unit fields in
// sync with their canonical documents.
type PropagationService struct {
	store   repositories.DocumentStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPropagationService creates a new propagation service instance
func NewPropagationService(store repositories.DocumentStore, logger *zap.Logger, m *metrics.Metrics, now func() time.Time) *PropagationService {
	if now == nil {
		now = time.Now
	}
	return &PropagationService{store: store, logger: logger, metrics: m, now: now}
}

// HandleUserUpdate copies a changed profile picture to every record owned by
// the user, in one batch. A removed picture is propagated as null.
func (s *PropagationService) HandleUserUpdate(ctx context.Context, event models.ChangeEvent) (*PropagationResult, error) {
	if err := checkEvent(event); err != nil {
		return nil, err
	}
	userID := event.DocumentID

	before, after := s.displayName(event.Before), s.displayName(event.After)
	if before != after {
		// Names on existing records are stamped at creation and never rewritten.
		s.logger.Info("user display name changed, dependent records keep the old name",
			zap.String("userId", userID), zap.String("before", before), zap.String("after", after))
	}

	oldPicture, newPicture := pictureValue(event.Before), pictureValue(event.After)
	if oldPicture == newPicture {
		return &PropagationResult{Field: models.FieldProfilePicture}, nil
	}

	var value interface{}
	if newPicture != "" {
		value = newPicture
	}
	return s.fanOut(ctx, userID, models.FieldProfilePicture, value, pictureDependents)
}

// HandleUnitUpdate copies a changed unit name to every record of the unit,
// in one batch.
func (s *PropagationService) HandleUnitUpdate(ctx context.Context, event models.ChangeEvent) (*PropagationResult, error) {
	if err := checkEvent(event); err != nil {
		return nil, err
	}

	oldName := repositories.UnitFromData(event.DocumentID, event.Before).Name
	newName := repositories.UnitFromData(event.DocumentID, event.After).Name
	if oldName == newName || newName == "" {
		return &PropagationResult{Field: models.FieldUnitName}, nil
	}
	return s.fanOut(ctx, event.DocumentID, models.FieldUnitName, newName, unitNameDependents)
}

// HandleOpportunityUpdate archives an opportunity that moved into a lost-deal
// status. Writes that keep the status are ignored.
func (s *PropagationService) HandleOpportunityUpdate(ctx context.Context, event models.ChangeEvent) (*PropagationResult, error) {
	if err := checkEvent(event); err != nil {
		return nil, err
	}

	oldStatus := utils.StringOr(event.Before, models.FieldStatus, "")
	newStatus := utils.StringOr(event.After, models.FieldStatus, "")
	result := &PropagationResult{Field: models.FieldArchived}
	if oldStatus == newStatus || !models.IsArchivingStatus(newStatus) || utils.BoolField(event.After, models.FieldArchived) {
		return result, nil
	}

	err := s.store.Update(ctx, models.CollectionOpportunities, event.DocumentID, map[string]interface{}{
		models.FieldArchived:  true,
		models.FieldUpdatedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("failed to archive opportunity", zap.String("opportunityId", event.DocumentID), zap.Error(err))
		return nil, fmt.Errorf("%w: archive opportunity %s: %w", ErrPropagation, event.DocumentID, err)
	}

	s.logger.Info("opportunity archived",
		zap.String("opportunityId", event.DocumentID), zap.String("from", oldStatus), zap.String("to", newStatus))
	s.metrics.RecordPropagated(models.FieldArchived, 1)
	result.Changed = true
	result.Updated = 1
	return result, nil
}

// fanOut finds every dependent record of ownerID and sets field to value on
// those that differ, committing all writes in one batch.
func (s *PropagationService) fanOut(ctx context.Context, ownerID, field string, value interface{}, dependents []dependent) (*PropagationResult, error) {
	found := make([][]repositories.Document, len(dependents))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dependents {
		i, d := i, d
		g.Go(func() error {
			docs, err := s.store.Find(gctx, d.collection, repositories.Where(d.key, repositories.OpEqual, ownerID))
			if err != nil {
				return fmt.Errorf("find %s by %s: %w", d.collection, d.key, err)
			}
			found[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("propagation lookup failed", zap.String("ownerId", ownerID), zap.String("field", field), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPropagation, err)
	}

	seen := make(map[string]bool)
	var updates []repositories.Update
	for i, docs := range found {
		collection := dependents[i].collection
		for _, doc := range docs {
			key := collection + "/" + doc.ID
			if seen[key] {
				continue
			}
			seen[key] = true
			if sameValue(doc.Data[field], value) {
				continue
			}
			updates = append(updates, repositories.Update{
				Collection: collection,
				ID:         doc.ID,
				Fields:     map[string]interface{}{field: value},
			})
		}
	}

	result := &PropagationResult{Changed: true, Field: field, Updated: len(updates)}
	if len(updates) == 0 {
		return result, nil
	}

	if err := s.store.CommitBatch(ctx, updates); err != nil {
		s.logger.Error("propagation batch failed",
			zap.String("ownerId", ownerID), zap.String("field", field), zap.Int("updates", len(updates)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPropagation, err)
	}

	s.logger.Info("denormalized field propagated",
		zap.String("ownerId", ownerID), zap.String("field", field), zap.Int("updates", len(updates)))
	s.metrics.RecordPropagated(field, len(updates))
	return result, nil
}

func (s *PropagationService) displayName(data map[string]interface{}) string {
	return repositories.UserFromData("", data).Name()
}

func checkEvent(event models.ChangeEvent) error {
	if event.DocumentID == "" || event.After == nil {
		return ErrInvalidEvent
	}
	return nil
}

// sameValue compares a stored field with the propagated string or nil value.
func sameValue(current, value interface{}) bool {
	if value == nil {
		return current == nil
	}
	cs, ok := current.(string)
	vs, _ := value.(string)
	return ok && cs == vs
}

func pictureValue(data map[string]interface{}) string {
	return utils.StringOr(data, models.FieldProfilePicture, "")
}
