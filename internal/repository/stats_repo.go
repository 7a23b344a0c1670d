package repository

import (
	"context"
	"sync"

	"artemius/internal/model"
)

type StatsRepository interface {
	Get(ctx context.Context, userID model.UserID) (*model.LifetimeStats, error)
	Upsert(ctx context.Context, stats model.LifetimeStats) error
	Delete(ctx context.Context, userID model.UserID) error
}

type statsRepo struct {
	mu    sync.RWMutex
	stats map[model.UserID]model.LifetimeStats
}

func NewStatsRepo() StatsRepository {
	return &statsRepo{stats: make(map[model.UserID]model.LifetimeStats)}
}

func (r *statsRepo) Get(ctx context.Context, userID model.UserID) (*model.LifetimeStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[userID]
	if !ok {
		return nil, nil
	}
	s = s.Clone()
	return &s, nil
}

func (r *statsRepo) Upsert(ctx context.Context, stats model.LifetimeStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[stats.UserID] = stats.Clone()
	return nil
}

func (r *statsRepo) Delete(ctx context.Context, userID model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stats, userID)
	return nil
}
