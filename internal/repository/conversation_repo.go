package repository

import (
	"context"
	"sync"

	"artemius/internal/model"
)

// ConversationStateRepository stores the dialog state per user. Users
// without a stored state are Idle.
type ConversationStateRepository interface {
	Get(ctx context.Context, userID model.UserID) (model.ConversationState, error)
	Upsert(ctx context.Context, userID model.UserID, state model.ConversationState) error
	Delete(ctx context.Context, userID model.UserID) error
}

type conversationStateRepo struct {
	mu     sync.RWMutex
	states map[model.UserID]model.ConversationState
}

func NewConversationStateRepo() ConversationStateRepository {
	return &conversationStateRepo{states: make(map[model.UserID]model.ConversationState)}
}

func (r *conversationStateRepo) Get(ctx context.Context, userID model.UserID) (model.ConversationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.states[userID]; ok {
		return s, nil
	}
	return model.StateIdle, nil
}

func (r *conversationStateRepo) Upsert(ctx context.Context, userID model.UserID, state model.ConversationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == model.StateIdle {
		delete(r.states, userID)
		return nil
	}
	r.states[userID] = state
	return nil
}

func (r *conversationStateRepo) Delete(ctx context.Context, userID model.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}
