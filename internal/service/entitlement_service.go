package service

import (
	"context"

	"github.com/rs/zerolog"

	"artemius/internal/metrics"
	"artemius/internal/model"
)

// Decision is the outcome of one entitlement check.
type Decision struct {
	Tier      model.Tier
	Feature   model.Feature
	Allowed   bool
	Remaining int
	Cap       int
}

// EntitlementService combines VIP status with the quota ledger. The tier
// is derived on every call and never stored.
type EntitlementService interface {
	Tier(ctx context.Context, userID model.UserID) model.Tier
	CheckLimit(ctx context.Context, userID model.UserID, f model.Feature) bool
	Decide(ctx context.Context, userID model.UserID, f model.Feature) Decision
	Snapshot(ctx context.Context, userID model.UserID) (model.TierSnapshot, error)
	Limits() model.LimitsTable
}

type entitlementService struct {
	subs    SubscriptionService
	quota   QuotaService
	metrics *metrics.EntitlementMetrics
	logger  zerolog.Logger
}

// NewEntitlementService reads caps from the quota ledger so the gate and
// the profile always use the same table.
func NewEntitlementService(subs SubscriptionService, quota QuotaService, logger zerolog.Logger) EntitlementService {
	return &entitlementService{
		subs:    subs,
		quota:   quota,
		metrics: metrics.Get(),
		logger:  logger.With().Str("service", "EntitlementService").Logger(),
	}
}

func (s *entitlementService) Limits() model.LimitsTable {
	return s.quota.Limits()
}

func (s *entitlementService) Tier(ctx context.Context, userID model.UserID) model.Tier {
	return model.TierFor(s.subs.IsVIP(ctx, userID))
}

func (s *entitlementService) CheckLimit(ctx context.Context, userID model.UserID, f model.Feature) bool {
	return s.Decide(ctx, userID, f).Allowed
}

// Decide reports whether f may be used now. Unknown features are denied.
func (s *entitlementService) Decide(ctx context.Context, userID model.UserID, f model.Feature) Decision {
	tier := s.Tier(ctx, userID)
	d := Decision{Tier: tier, Feature: f}
	if !f.Valid() {
		s.logger.Warn().Int64("user_id", int64(userID)).Str("feature", string(f)).Msg("Unknown feature requested")
		return d
	}
	d.Cap = s.quota.Limits().Cap(tier, f)
	d.Remaining = s.quota.Remaining(ctx, userID, f, tier)
	d.Allowed = d.Remaining > 0

	s.metrics.RecordDecision(string(f), string(tier), d.Allowed)
	s.logger.Debug().
		Int64("user_id", int64(userID)).
		Str("feature", string(f)).
		Str("tier", string(tier)).
		Int("remaining", d.Remaining).
		Bool("allowed", d.Allowed).
		Msg("Entitlement decided")
	return d
}

// Snapshot collects tier, caps, today's usage and lifetime totals.
func (s *entitlementService) Snapshot(ctx context.Context, userID model.UserID) (model.TierSnapshot, error) {
	tier := s.Tier(ctx, userID)
	usage, err := s.quota.Usage(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to load usage for snapshot")
		return model.TierSnapshot{}, err
	}
	stats, err := s.quota.Stats(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to load stats for snapshot")
		return model.TierSnapshot{}, err
	}

	snap := model.TierSnapshot{
		UserID:    userID,
		Tier:      tier,
		Day:       usage.Day,
		Limits:    make(model.Limits, len(model.Features)),
		Used:      usage.Used,
		Remaining: make(map[model.Feature]int, len(model.Features)),
		Stats:     stats,
	}
	limits := s.quota.Limits()
	for _, f := range model.Features {
		limit := limits.Cap(tier, f)
		snap.Limits[f] = limit
		snap.Remaining[f] = remaining(limit, usage.Used[f])
	}
	return snap, nil
}
