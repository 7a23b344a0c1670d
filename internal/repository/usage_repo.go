package repository

import (
	"context"
	"sync"

	"artemius/internal/model"
)

// UsageRepository keeps the current day's usage record per user. Writing a
// record for a new day replaces the previous one.
type UsageRepository interface {
	Get(ctx context.Context, userID model.UserID) (*model.DailyUsage, error)
	Upsert(ctx context.Context, usage model.DailyUsage) error
	Delete(ctx context.Context, userID model.UserID) error
}

type usageRepo struct {
	mu    sync.RWMutex
	usage map[model.UserID]model.DailyUsage
}

func NewUsageRepo() UsageRepository {
	return &usageRepo{usage: make(map[model.UserID]model.DailyUsage)}
}

func (r *usageRepo) Get(ctx context.Context, userID model.UserID) (*model.DailyUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.usage[userID]
	if !ok {
		return nil, nil
	}
	u = u.Clone()
	return &u, nil
}

func (r *usageRepo) Upsert(ctx context.Context, usage model.DailyUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[usage.UserID] = usage.Clone()
	return nil
}

func (r *usageRepo) Delete(ctx context.Context, userID model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.usage, userID)
	return nil
}
