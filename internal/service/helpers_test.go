package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"artemius/internal/model"
	"artemius/internal/repository"
)

var testChannels = []model.Channel{
	{ID: "@one", URL: "https://t.me/one", Name: "One"},
	{ID: "@two", URL: "https://t.me/two", Name: "Two"},
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOracle struct {
	mu       sync.Mutex
	statuses map[string]model.MembershipStatus
	errs     map[string]error
	calls    int
}

func newFakeOracle(statuses map[string]model.MembershipStatus) *fakeOracle {
	return &fakeOracle{statuses: statuses, errs: map[string]error{}}
}

func (o *fakeOracle) GetMembership(ctx context.Context, channelID string, userID model.UserID) (model.MembershipStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := o.errs[channelID]; err != nil {
		return "", err
	}
	if st, ok := o.statuses[channelID]; ok {
		return st, nil
	}
	return model.StatusLeft, nil
}

func (o *fakeOracle) set(channelID string, st model.MembershipStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses[channelID] = st
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// fakeSubs is a SubscriptionService with a switchable answer.
type fakeSubs struct {
	mu       sync.Mutex
	vip      bool
	rechecks int
}

func (f *fakeSubs) setVIP(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vip = v
}

func (f *fakeSubs) IsVIP(ctx context.Context, userID model.UserID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vip
}

func (f *fakeSubs) IndividualStatuses(ctx context.Context, userID model.UserID) map[string]bool {
	out := map[string]bool{}
	for _, ch := range testChannels {
		out[ch.ID] = f.IsVIP(ctx, userID)
	}
	return out
}

func (f *fakeSubs) ChannelStatuses(ctx context.Context, userID model.UserID) []model.ChannelStatus {
	vip := f.IsVIP(ctx, userID)
	out := make([]model.ChannelStatus, 0, len(testChannels))
	for _, ch := range testChannels {
		out = append(out, model.ChannelStatus{Channel: ch, Subscribed: vip})
	}
	return out
}

func (f *fakeSubs) Invalidate(ctx context.Context, userID model.UserID) {}

func (f *fakeSubs) ForceRecheck(ctx context.Context, userID model.UserID) bool {
	f.mu.Lock()
	f.rechecks++
	f.mu.Unlock()
	return f.IsVIP(ctx, userID)
}

func (f *fakeSubs) Channels() []model.Channel { return testChannels }

type fakeDispatcher struct {
	mu    sync.Mutex
	err   error
	calls []model.Payload
}

func (d *fakeDispatcher) Invoke(ctx context.Context, f model.Feature, userID model.UserID, payload model.Payload) (*model.GenerationResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, payload)
	if d.err != nil {
		return nil, d.err
	}
	return &model.GenerationResult{Feature: f, Text: "ok: " + payload.Text}, nil
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

var errBoom = errors.New("boom")

func newTestQuota(clock *fakeClock) QuotaService {
	return newTestQuotaWithLimits(clock, model.DefaultLimits())
}

func newTestQuotaWithLimits(clock *fakeClock, limits model.LimitsTable) QuotaService {
	return NewQuotaService(repository.NewUsageRepo(), repository.NewStatsRepo(), limits, time.UTC, clock.Now, zerolog.Nop())
}
