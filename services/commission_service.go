package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HSouheill/indique_backend/metrics"
	"github.com/HSouheill/indique_backend/models"
	"github.com/HSouheill/indique_backend/repositories"
	"github.com/HSouheill/indique_backend/utils"
)

// Period names accepted by GetPeriod.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// CommissionService aggregates closed-opportunity commission for charts.
type CommissionService struct {
	store    repositories.DocumentStore
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	location *time.Location
}

// NewCommissionService creates a new commission service instance. Buckets are
// computed in loc.
func NewCommissionService(store repositories.DocumentStore, logger *zap.Logger, m *metrics.Metrics, now func() time.Time, loc *time.Location) *CommissionService {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &CommissionService{store: store, logger: logger, metrics: m, now: now, location: loc}
}

func (s *CommissionService) clock() time.Time {
	return s.now().In(s.location)
}

// GetWeekData returns one bucket per day, Sunday to Saturday, of this week.
func (s *CommissionService) GetWeekData(ctx context.Context, userID string) ([]models.CommissionBucket, error) {
	return s.aggregate(ctx, userID, utils.WeekPeriods(s.clock()))
}

// GetMonthData returns one bucket per week of this month.
func (s *CommissionService) GetMonthData(ctx context.Context, userID string) ([]models.CommissionBucket, error) {
	return s.aggregate(ctx, userID, utils.MonthWeekPeriods(s.clock()))
}

// GetYearData returns one bucket per month of this year.
func (s *CommissionService) GetYearData(ctx context.Context, userID string) ([]models.CommissionBucket, error) {
	return s.aggregate(ctx, userID, utils.YearPeriods(s.clock()))
}

// GetPeriod returns the buckets of one named period.
func (s *CommissionService) GetPeriod(ctx context.Context, userID, period string) ([]models.CommissionBucket, error) {
	switch period {
	case PeriodWeek:
		return s.GetWeekData(ctx, userID)
	case PeriodMonth:
		return s.GetMonthData(ctx, userID)
	case PeriodYear:
		return s.GetYearData(ctx, userID)
	}
	return nil, fmt.Errorf("unknown period %q", period)
}

// GetCommissionsByPeriod computes the three chart series concurrently. Any
// failed bucket fails the whole call.
func (s *CommissionService) GetCommissionsByPeriod(ctx context.Context, userID string) (*models.CommissionPeriods, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveAggregation("commissions", time.Since(start)) }()

	now := s.clock()
	var periods models.CommissionPeriods

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buckets, err := s.aggregate(gctx, userID, utils.WeekPeriods(now))
		periods.Week = buckets
		return err
	})
	g.Go(func() error {
		buckets, err := s.aggregate(gctx, userID, utils.MonthWeekPeriods(now))
		periods.Month = buckets
		return err
	})
	g.Go(func() error {
		buckets, err := s.aggregate(gctx, userID, utils.YearPeriods(now))
		periods.Year = buckets
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("commission aggregation failed", zap.String("userId", userID), zap.Error(err))
		return nil, err
	}
	return &periods, nil
}

func (s *CommissionService) aggregate(ctx context.Context, userID string, periods []utils.Period) ([]models.CommissionBucket, error) {
	buckets := make([]models.CommissionBucket, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range periods {
		i, p := i, p
		g.Go(func() error {
			bucket, err := s.bucket(gctx, userID, p)
			if err != nil {
				return fmt.Errorf("bucket %s: %w", p.Label, err)
			}
			buckets[i] = bucket
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPeriodAggregation, err)
	}
	return buckets, nil
}

// bucket sums the commission of closed opportunities created in p. Records
// with a non-numeric commission are counted but add nothing.
func (s *CommissionService) bucket(ctx context.Context, userID string, p utils.Period) (models.CommissionBucket, error) {
	docs, err := s.store.Find(ctx, models.CollectionOpportunities,
		repositories.Where(models.FieldIndicatorID, repositories.OpEqual, userID),
		repositories.Where(models.FieldStatus, repositories.OpEqual, models.StatusClosed),
		repositories.Where(models.FieldCreatedAt, repositories.OpGreaterOrEqual, p.Start),
		repositories.Where(models.FieldCreatedAt, repositories.OpLess, p.End),
	)
	if err != nil {
		return models.CommissionBucket{}, err
	}

	bucket := models.CommissionBucket{
		Label:     p.Label,
		Count:     len(docs),
		StartDate: p.Start,
		EndDate:   p.End,
	}
	for _, doc := range docs {
		if v, ok := utils.FloatField(doc.Data, models.FieldCommission); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			bucket.Value += v
		}
	}
	return bucket, nil
}
