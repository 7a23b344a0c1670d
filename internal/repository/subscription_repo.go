package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"artemius/internal/model"
)

// SubscriptionCacheRepository stores the last VIP verification per user.
// Freshness is decided by the caller from CheckedAt; the store only bounds
// how long stale entries are retained.
type SubscriptionCacheRepository interface {
	Get(ctx context.Context, userID model.UserID) (*model.SubscriptionCacheEntry, error)
	Upsert(ctx context.Context, entry model.SubscriptionCacheEntry) error
	Delete(ctx context.Context, userID model.UserID) error
	Len() int
}

type subscriptionCacheRepo struct {
	c *cache.Cache
}

// NewSubscriptionCacheRepo keeps entries for retention and sweeps expired
// ones every retention interval.
func NewSubscriptionCacheRepo(retention time.Duration) SubscriptionCacheRepository {
	return &subscriptionCacheRepo{c: cache.New(retention, retention)}
}

func (r *subscriptionCacheRepo) Get(ctx context.Context, userID model.UserID) (*model.SubscriptionCacheEntry, error) {
	v, ok := r.c.Get(userID.String())
	if !ok {
		return nil, nil
	}
	entry := v.(model.SubscriptionCacheEntry)
	return &entry, nil
}

func (r *subscriptionCacheRepo) Upsert(ctx context.Context, entry model.SubscriptionCacheEntry) error {
	r.c.Set(entry.UserID.String(), entry, cache.DefaultExpiration)
	return nil
}

func (r *subscriptionCacheRepo) Delete(ctx context.Context, userID model.UserID) error {
	r.c.Delete(userID.String())
	return nil
}

func (r *subscriptionCacheRepo) Len() int {
	return r.c.ItemCount()
}
