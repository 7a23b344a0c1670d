package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"artemius/internal/model"
	"artemius/internal/repository"
)

const dayLayout = "2006-01-02"

// QuotaService tracks per-day usage against the daily caps and keeps
// lifetime totals. Counters reset when the calendar day changes.
type QuotaService interface {
	Remaining(ctx context.Context, userID model.UserID, f model.Feature, tier model.Tier) int
	HasQuota(ctx context.Context, userID model.UserID, f model.Feature, tier model.Tier) bool
	Consume(ctx context.Context, userID model.UserID, f model.Feature) error
	Usage(ctx context.Context, userID model.UserID) (model.DailyUsage, error)
	Stats(ctx context.Context, userID model.UserID) (model.LifetimeStats, error)
	Limits() model.LimitsTable
	Today() string
}

type quotaService struct {
	usage  repository.UsageRepository
	stats  repository.StatsRepository
	limits model.LimitsTable
	loc    *time.Location
	now    Clock
	locks  *userLocks
	logger zerolog.Logger
}

func NewQuotaService(
	usage repository.UsageRepository,
	stats repository.StatsRepository,
	limits model.LimitsTable,
	loc *time.Location,
	now Clock,
	logger zerolog.Logger,
) QuotaService {
	if loc == nil {
		loc = time.Local
	}
	return &quotaService{
		usage:  usage,
		stats:  stats,
		limits: limits,
		loc:    loc,
		now:    clockOrNow(now),
		locks:  newUserLocks(),
		logger: logger.With().Str("service", "QuotaService").Logger(),
	}
}

// Limits is the caps table every quota decision is made against.
func (s *quotaService) Limits() model.LimitsTable {
	return s.limits
}

func (s *quotaService) Today() string {
	return s.now().In(s.loc).Format(dayLayout)
}

// current returns today's record, replacing a stale or missing one with a
// zeroed record. Callers hold the user's lock.
func (s *quotaService) current(ctx context.Context, userID model.UserID) (model.DailyUsage, error) {
	day := s.Today()
	u, err := s.usage.Get(ctx, userID)
	if err != nil {
		return model.DailyUsage{}, fmt.Errorf("get usage: %w", err)
	}
	if u != nil && u.Day == day {
		return *u, nil
	}
	fresh := model.NewDailyUsage(userID, day)
	if err := s.usage.Upsert(ctx, fresh); err != nil {
		return model.DailyUsage{}, fmt.Errorf("reset usage: %w", err)
	}
	return fresh, nil
}

// Remaining never goes below zero. A storage failure reports zero.
func (s *quotaService) Remaining(ctx context.Context, userID model.UserID, f model.Feature, tier model.Tier) int {
	unlock := s.locks.Lock(userID)
	defer unlock()

	u, err := s.current(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Str("feature", string(f)).Msg("Failed to load usage")
		return 0
	}
	return remaining(s.limits.Cap(tier, f), u.Used[f])
}

func (s *quotaService) HasQuota(ctx context.Context, userID model.UserID, f model.Feature, tier model.Tier) bool {
	return s.Remaining(ctx, userID, f, tier) > 0
}

// Consume records one use. It does not check the cap.
func (s *quotaService) Consume(ctx context.Context, userID model.UserID, f model.Feature) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, f)
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	u, err := s.current(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to load usage")
		return err
	}
	u.Used[f]++
	if err := s.usage.Upsert(ctx, u); err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to store usage")
		return fmt.Errorf("store usage: %w", err)
	}

	st, err := s.lifetime(ctx, userID)
	if err != nil {
		return err
	}
	st.Totals[f]++
	if err := s.stats.Upsert(ctx, st); err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to store lifetime stats")
		return fmt.Errorf("store stats: %w", err)
	}

	s.logger.Debug().
		Int64("user_id", int64(userID)).
		Str("feature", string(f)).
		Int("used_today", u.Used[f]).
		Msg("Feature consumed")
	return nil
}

func (s *quotaService) Usage(ctx context.Context, userID model.UserID) (model.DailyUsage, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.current(ctx, userID)
}

// Stats returns lifetime totals, creating the record on first access.
func (s *quotaService) Stats(ctx context.Context, userID model.UserID) (model.LifetimeStats, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	return s.lifetime(ctx, userID)
}

func (s *quotaService) lifetime(ctx context.Context, userID model.UserID) (model.LifetimeStats, error) {
	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		return model.LifetimeStats{}, fmt.Errorf("get stats: %w", err)
	}
	if st != nil {
		return *st, nil
	}
	fresh := model.NewLifetimeStats(userID, s.now())
	if err := s.stats.Upsert(ctx, fresh); err != nil {
		return model.LifetimeStats{}, fmt.Errorf("create stats: %w", err)
	}
	return fresh, nil
}

func remaining(limit, used int) int {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}
