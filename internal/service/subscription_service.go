package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"artemius/internal/metrics"
	"artemius/internal/model"
	"artemius/internal/repository"
)

// MembershipOracle reports a user's membership status in a channel.
type MembershipOracle interface {
	GetMembership(ctx context.Context, channelID string, userID model.UserID) (model.MembershipStatus, error)
}

// SubscriptionService decides VIP status from channel memberships.
type SubscriptionService interface {
	IsVIP(ctx context.Context, userID model.UserID) bool
	IndividualStatuses(ctx context.Context, userID model.UserID) map[string]bool
	ChannelStatuses(ctx context.Context, userID model.UserID) []model.ChannelStatus
	Invalidate(ctx context.Context, userID model.UserID)
	ForceRecheck(ctx context.Context, userID model.UserID) bool
	Channels() []model.Channel
}

type subscriptionService struct {
	cache    repository.SubscriptionCacheRepository
	oracle   MembershipOracle
	channels []model.Channel
	ttl      time.Duration
	now      Clock
	group    singleflight.Group
	metrics  *metrics.EntitlementMetrics
	logger   zerolog.Logger
}

// NewSubscriptionService creates a SubscriptionService with a scoped logger.
func NewSubscriptionService(
	cache repository.SubscriptionCacheRepository,
	oracle MembershipOracle,
	channels []model.Channel,
	ttl time.Duration,
	now Clock,
	logger zerolog.Logger,
) SubscriptionService {
	return &subscriptionService{
		cache:    cache,
		oracle:   oracle,
		channels: channels,
		ttl:      ttl,
		now:      clockOrNow(now),
		metrics:  metrics.Get(),
		logger:   logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) Channels() []model.Channel {
	out := make([]model.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// IsVIP answers from a fresh cache entry when one exists. Otherwise it
// checks every required channel in order and stops at the first miss.
// The check is shared by concurrent callers and outlives a cancelled
// caller; the oracle's own timeout bounds it.
func (s *subscriptionService) IsVIP(ctx context.Context, userID model.UserID) bool {
	entry, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("Failed to read subscription cache")
	}
	if entry != nil && s.now().Sub(entry.CheckedAt) < s.ttl {
		s.metrics.RecordCacheLookup(true)
		return entry.IsVIP
	}
	s.metrics.RecordCacheLookup(false)

	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(userID.String(), func() (interface{}, error) {
		checkedAt := s.now()
		isVIP := s.verify(flightCtx, userID)
		if err := s.cache.Upsert(flightCtx, model.SubscriptionCacheEntry{UserID: userID, CheckedAt: checkedAt, IsVIP: isVIP}); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("Failed to store subscription cache entry")
		}
		return isVIP, nil
	})
	return v.(bool)
}

func (s *subscriptionService) verify(ctx context.Context, userID model.UserID) bool {
	for _, ch := range s.channels {
		if !s.subscribed(ctx, ch.ID, userID) {
			return false
		}
	}
	return true
}

// subscribed treats any oracle failure as not subscribed.
func (s *subscriptionService) subscribed(ctx context.Context, channelID string, userID model.UserID) bool {
	status, err := s.oracle.GetMembership(ctx, channelID, userID)
	if err != nil {
		s.metrics.RecordOracleRequest("error")
		s.logger.Warn().Err(err).Str("channel_id", channelID).Int64("user_id", int64(userID)).Msg("Membership lookup failed")
		return false
	}
	if !status.Subscribed() {
		s.metrics.RecordOracleRequest("not_subscribed")
		return false
	}
	s.metrics.RecordOracleRequest("subscribed")
	return true
}

// IndividualStatuses checks every channel without touching the cache.
func (s *subscriptionService) IndividualStatuses(ctx context.Context, userID model.UserID) map[string]bool {
	statuses := s.ChannelStatuses(ctx, userID)
	out := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		out[st.Channel.ID] = st.Subscribed
	}
	return out
}

// ChannelStatuses is IndividualStatuses in channel order.
func (s *subscriptionService) ChannelStatuses(ctx context.Context, userID model.UserID) []model.ChannelStatus {
	out := make([]model.ChannelStatus, len(s.channels))
	g, gctx := errgroup.WithContext(ctx)
	for i, ch := range s.channels {
		out[i].Channel = ch
		g.Go(func() error {
			out[i].Subscribed = s.subscribed(gctx, ch.ID, userID)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *subscriptionService) Invalidate(ctx context.Context, userID model.UserID) {
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", int64(userID)).Msg("Failed to invalidate subscription cache")
	}
}

// ForceRecheck drops the cached result and verifies again.
func (s *subscriptionService) ForceRecheck(ctx context.Context, userID model.UserID) bool {
	s.Invalidate(ctx, userID)
	isVIP := s.IsVIP(ctx, userID)
	s.logger.Info().Int64("user_id", int64(userID)).Bool("is_vip", isVIP).Msg("Subscription rechecked")
	return isVIP
}
