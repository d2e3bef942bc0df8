package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/testgenius/backend/internal/model"
	"github.com/testgenius/backend/internal/session"
)

// SessionStore is the narrow persistence contract for live sessions.
// Implemented by repository.SessionStore (Redis); swapped for an in-memory
// fake in tests.
type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Delete(ctx context.Context, sessionID string) error
	ClaimSubmission(ctx context.Context, sessionID string) error
	ReleaseSubmission(ctx context.Context, sessionID string) error
	DueSessions(ctx context.Context, now time.Time) ([]string, error)
	ClearDeadline(ctx context.Context, sessionID string) error
}

// HistoryStore is the narrow persistence contract for completed tests.
// Implemented by repository.HistoryRepository (Postgres).
type HistoryStore interface {
	Append(ctx context.Context, entry *model.HistoryEntry, capacity int) error
	List(ctx context.Context, clientID uuid.UUID) ([]model.HistoryEntry, error)
	Get(ctx context.Context, clientID, entryID uuid.UUID) (*model.HistoryEntry, error)
}
