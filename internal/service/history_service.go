package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/model"
)

// HistoryService serves the capped per-client test archive. Writes go through
// SessionService.finalize; this service only reads.
type HistoryService struct {
	history HistoryStore
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(history HistoryStore) *HistoryService {
	return &HistoryService{history: history}
}

// List returns the client's entries, most recent first.
func (s *HistoryService) List(ctx context.Context, clientID uuid.UUID) ([]model.HistoryEntry, error) {
	return s.history.List(ctx, clientID)
}

// Get returns one of the client's entries by ID.
func (s *HistoryService) Get(ctx context.Context, clientID, entryID uuid.UUID) (*model.HistoryEntry, error) {
	return s.history.Get(ctx, clientID, entryID)
}
