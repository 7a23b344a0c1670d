package service

import (
	"context"

	"github.com/rs/zerolog"

	"artemius/internal/metrics"
	"artemius/internal/model"
	"artemius/internal/repository"
)

// ConversationService drives the per-user dialog. Events of one user are
// handled one at a time; different users proceed in parallel.
type ConversationService interface {
	Handle(ctx context.Context, ev model.Event) model.Response
	State(ctx context.Context, userID model.UserID) model.ConversationState
}

type conversationService struct {
	states           repository.ConversationStateRepository
	subs             SubscriptionService
	entitlements     EntitlementService
	quota            QuotaService
	dispatcher       FeatureDispatcher
	consumeOnFailure bool
	locks            *userLocks
	metrics          *metrics.EntitlementMetrics
	logger           zerolog.Logger
}

// NewConversationService wires the state machine. When consumeOnFailure is
// set a failed generation still counts against the daily quota.
func NewConversationService(
	states repository.ConversationStateRepository,
	subs SubscriptionService,
	entitlements EntitlementService,
	quota QuotaService,
	dispatcher FeatureDispatcher,
	consumeOnFailure bool,
	logger zerolog.Logger,
) ConversationService {
	return &conversationService{
		states:           states,
		subs:             subs,
		entitlements:     entitlements,
		quota:            quota,
		dispatcher:       dispatcher,
		consumeOnFailure: consumeOnFailure,
		locks:            newUserLocks(),
		metrics:          metrics.Get(),
		logger:           logger.With().Str("service", "ConversationService").Logger(),
	}
}

func (s *conversationService) State(ctx context.Context, userID model.UserID) model.ConversationState {
	st, err := s.states.Get(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", int64(userID)).Msg("Failed to load conversation state")
		return model.StateIdle
	}
	return st
}

func (s *conversationService) Handle(ctx context.Context, ev model.Event) model.Response {
	unlock := s.locks.Lock(ev.UserID)
	defer unlock()

	s.metrics.RecordEvent(ev.Kind.String())
	log := s.logger.With().
		Str("event_id", ev.ID).
		Int64("user_id", int64(ev.UserID)).
		Str("event", ev.Kind.String()).
		Logger()
	log.Debug().Msg("Handling event")

	switch ev.Kind {
	case model.EventStart:
		s.setState(ctx, log, ev.UserID, model.StateIdle)
		return s.withChannels(ctx, ev.UserID, model.Response{Kind: model.ResponseWelcome, Tier: s.entitlements.Tier(ctx, ev.UserID)})

	case model.EventSelectFeature:
		return s.selectFeature(ctx, log, ev)

	case model.EventText:
		st := s.State(ctx, ev.UserID)
		f, ok := st.Feature()
		if !ok || st.ExpectsImage() {
			return s.unrecognized(ctx, ev.UserID)
		}
		return s.submit(ctx, log, f, ev)

	case model.EventImage:
		st := s.State(ctx, ev.UserID)
		f, ok := st.Feature()
		if !ok || !st.ExpectsImage() {
			return s.unrecognized(ctx, ev.UserID)
		}
		return s.submit(ctx, log, f, ev)

	case model.EventReturnToMenu:
		s.setState(ctx, log, ev.UserID, model.StateIdle)
		return model.Response{Kind: model.ResponseMenu, Tier: s.entitlements.Tier(ctx, ev.UserID)}

	case model.EventShowProfile:
		snap, err := s.entitlements.Snapshot(ctx, ev.UserID)
		if err != nil {
			return model.Response{Kind: model.ResponseFailure, Tier: s.entitlements.Tier(ctx, ev.UserID)}
		}
		return s.withChannels(ctx, ev.UserID, model.Response{Kind: model.ResponseProfile, Tier: snap.Tier, Snapshot: &snap})

	case model.EventShowVIPInfo:
		return s.withChannels(ctx, ev.UserID, model.Response{Kind: model.ResponseVIPInfo, Tier: s.entitlements.Tier(ctx, ev.UserID)})

	case model.EventCheckSubscriptions:
		tier := model.TierFor(s.subs.ForceRecheck(ctx, ev.UserID))
		log.Info().Str("tier", string(tier)).Msg("Subscriptions checked on request")
		return model.Response{
			Kind:     model.ResponseSubscriptionCheck,
			Tier:     tier,
			Channels: s.subs.ChannelStatuses(ctx, ev.UserID),
		}

	case model.EventSkipSubscriptions:
		return model.Response{Kind: model.ResponseSkipped, Tier: s.entitlements.Tier(ctx, ev.UserID)}

	case model.EventSeparator:
		return model.Response{Kind: model.ResponseAcknowledged}
	}

	return s.unrecognized(ctx, ev.UserID)
}

func (s *conversationService) selectFeature(ctx context.Context, log zerolog.Logger, ev model.Event) model.Response {
	target, ok := model.AwaitingState(ev.Feature)
	if !ok {
		log.Warn().Str("feature", string(ev.Feature)).Msg("Selected unknown feature")
		return s.unrecognized(ctx, ev.UserID)
	}

	d := s.entitlements.Decide(ctx, ev.UserID, ev.Feature)
	if !d.Allowed {
		return s.denied(ctx, d, ev.UserID)
	}

	s.setState(ctx, log, ev.UserID, target)
	return model.Response{Kind: model.ResponsePermitted, Tier: d.Tier, Feature: ev.Feature, Remaining: d.Remaining}
}

// submit re-checks the quota because it may have been spent since the
// feature was selected. The state is kept so the user can send another
// request for the same feature.
func (s *conversationService) submit(ctx context.Context, log zerolog.Logger, f model.Feature, ev model.Event) model.Response {
	d := s.entitlements.Decide(ctx, ev.UserID, f)
	if !d.Allowed {
		return s.denied(ctx, d, ev.UserID)
	}

	res, err := s.dispatcher.Invoke(ctx, f, ev.UserID, ev.Payload)
	left := d.Remaining
	if err == nil || s.consumeOnFailure {
		if cerr := s.quota.Consume(ctx, ev.UserID, f); cerr != nil {
			log.Error().Err(cerr).Str("feature", string(f)).Msg("Failed to record usage")
		} else {
			left = remaining(left, 1)
		}
	}

	if err != nil {
		log.Error().Err(err).Str("feature", string(f)).Msg("Feature invocation failed")
		return model.Response{Kind: model.ResponseFailure, Tier: d.Tier, Feature: f, Remaining: left}
	}
	return model.Response{Kind: model.ResponseResult, Tier: d.Tier, Feature: f, Remaining: left, Result: res}
}

func (s *conversationService) denied(ctx context.Context, d Decision, userID model.UserID) model.Response {
	return s.withChannels(ctx, userID, model.Response{Kind: model.ResponseDenied, Tier: d.Tier, Feature: d.Feature})
}

func (s *conversationService) unrecognized(ctx context.Context, userID model.UserID) model.Response {
	return model.Response{Kind: model.ResponseUnrecognized, Tier: s.entitlements.Tier(ctx, userID)}
}

// withChannels attaches per-channel membership for FREE users so the
// transport can show what is missing for VIP.
func (s *conversationService) withChannels(ctx context.Context, userID model.UserID, resp model.Response) model.Response {
	if resp.Tier == model.TierFree {
		resp.Channels = s.subs.ChannelStatuses(ctx, userID)
	}
	return resp
}

func (s *conversationService) setState(ctx context.Context, log zerolog.Logger, userID model.UserID, st model.ConversationState) {
	if err := s.states.Upsert(ctx, userID, st); err != nil {
		log.Error().Err(err).Str("state", string(st)).Msg("Failed to store conversation state")
	}
}
