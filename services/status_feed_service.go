package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
)

var typeMarkers = map[string]models.StatusItemType{
	models.FilterOnlyOpportunities: models.StatusItemOpportunity,
	models.FilterOnlyIndications:   models.StatusItemIndication,
	models.FilterOnlyBulk:          models.StatusItemBulk,
}

// StatusFeedService builds the unified status feed of one user.
type StatusFeedService struct {
	store   repositories.DocumentStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStatusFeedService creates a new status feed service instance
func NewStatusFeedService(store repositories.DocumentStore, logger *zap.Logger, m *metrics.Metrics, now func() time.Time) *StatusFeedService {
	if now == nil {
		now = time.Now
	}
	return &StatusFeedService{store: store, logger: logger, metrics: m, now: now}
}

type feedQuery struct {
	collection string
	field      string
	docs       []repositories.Document
}

// GetAllStatusItems returns every indication, opportunity and bulk batch of
// ownerID, newest first. Indications and opportunities are looked up by both
// indicator_id and the legacy userId key; a document matching both appears
// once.
func (s *StatusFeedService) GetAllStatusItems(ctx context.Context, ownerID string) ([]models.StatusItem, error) {
	queries := []*feedQuery{
		{collection: models.CollectionOpportunities, field: models.FieldIndicatorID},
		{collection: models.CollectionOpportunities, field: models.FieldLegacyUserID},
		{collection: models.CollectionIndications, field: models.FieldIndicatorID},
		{collection: models.CollectionIndications, field: models.FieldLegacyUserID},
		{collection: models.CollectionPackagedIndications, field: models.FieldIndicatorID},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			docs, err := s.store.Find(gctx, q.collection, repositories.Where(q.field, repositories.OpEqual, ownerID))
			if err != nil {
				return fmt.Errorf("%s by %s: %w", q.collection, q.field, err)
			}
			q.docs = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("status feed query failed", zap.String("ownerId", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFeedAggregation, err)
	}

	now := s.now()
	var items []models.StatusItem
	for _, doc := range dedupeDocuments(queries[0].docs, queries[1].docs) {
		items = append(items, NormalizeOpportunity(doc, ownerID, now))
	}
	for _, doc := range dedupeDocuments(queries[2].docs, queries[3].docs) {
		items = append(items, NormalizeIndication(doc, ownerID, now))
	}
	for _, doc := range queries[4].docs {
		items = append(items, NormalizePackagedIndication(doc, ownerID, now))
	}

	SortByRecency(items)
	return items, nil
}

// GetStatusFeed returns the feed filtered for the status screen. Stats cover
// the whole feed, before filtering.
func (s *StatusFeedService) GetStatusFeed(ctx context.Context, ownerID, searchText string, selectedFilters []string) (*models.StatusFeed, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation("status_feed", time.Since(start)) }()

	items, err := s.GetAllStatusItems(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filtered := FilterStatusItems(items, searchText, selectedFilters)
	return &models.StatusFeed{
		Items: filtered,
		Stats: GetStatusStats(items),
		Total: len(filtered),
	}, nil
}

// GetStatusStats counts items per status. Statuses with no items have no key.
func GetStatusStats(items []models.StatusItem) map[string]int {
	stats := make(map[string]int)
	for _, item := range items {
		stats[item.Status]++
	}
	return stats
}

// FilterStatusItems narrows items by free text, then by type markers, then by
// a status allow-list. A stage with no input leaves the list untouched.
func FilterStatusItems(items []models.StatusItem, searchText string, selectedFilters []string) []models.StatusItem {
	result := make([]models.StatusItem, 0, len(items))
	result = append(result, items...)

	if query := strings.TrimSpace(searchText); query != "" {
		fold := cases.Fold()
		query = fold.String(query)
		result = keep(result, func(item models.StatusItem) bool {
			return strings.Contains(fold.String(item.Name), query) ||
				strings.Contains(fold.String(item.Product), query) ||
				strings.Contains(fold.String(item.Status), query)
		})
	}

	types := make(map[models.StatusItemType]bool)
	statuses := make(map[string]bool)
	for _, f := range selectedFilters {
		if t, ok := typeMarkers[f]; ok {
			types[t] = true
			continue
		}
		if f == models.FilterSeparator || strings.TrimSpace(f) == "" {
			continue
		}
		statuses[f] = true
	}

	if len(types) > 0 {
		result = keep(result, func(item models.StatusItem) bool { return types[item.Type] })
	}
	if len(statuses) > 0 {
		result = keep(result, func(item models.StatusItem) bool { return statuses[item.Status] })
	}
	return result
}

// SortByRecency orders items newest first by update, else creation instant.
// Items with neither go last; equal instants keep their order.
func SortByRecency(items []models.StatusItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RecencyMillis() > items[j].RecencyMillis()
	})
}

// dedupeDocuments concatenates the lists, keeping the first document seen
// for each id.
func dedupeDocuments(lists ...[]repositories.Document) []repositories.Document {
	seen := make(map[string]bool)
	var out []repositories.Document
	for _, list := range lists {
		for _, doc := range list {
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			out = append(out, doc)
		}
	}
	return out
}

func keep(items []models.StatusItem, pred func(models.StatusItem) bool) []models.StatusItem {
	out := items[:0]
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
