package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testgenius/backend/internal/config"
	"github.com/testgenius/backend/internal/session"
)

// ErrSessionNotFound is returned when no live session exists for an ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps live wizard sessions in Redis. Each session is one JSON
// document read-modified-written as a whole, so a reader never sees a
// partially applied transition. Timed sessions are additionally indexed in a
// sorted set scored by deadline for the expiry worker.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a SessionStore with the given idle TTL.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Save persists the full session document and maintains the deadline index.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := config.CacheKey.SessionKey(sess.ID.String())
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, s.ttl)

	// Index timed, running sessions for the expiry worker; drop the entry as
	// soon as the session is submitted or leaves test-taking.
	idx := config.CacheKey.DeadlineIndexKey()
	if sess.Deadline != nil && !sess.Submitted && sess.Step == session.StepTakingTest {
		pipe.ZAdd(ctx, idx, redis.Z{
			Score:  float64(sess.Deadline.Unix()),
			Member: sess.ID.String(),
		})
	} else {
		pipe.ZRem(ctx, idx, sess.ID.String())
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session by ID.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.SessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// ClaimSubmission atomically claims the single allowed submission for a
// session. Two callers racing on a stale session document (a manual submit
// against the expiry worker, or two concurrent manual submits) both pass the
// in-memory guard; the SET NX decides the winner. The loser gets
// session.ErrAlreadySubmitted. The claim shares the session TTL and is
// released only by Retake.
func (s *SessionStore) ClaimSubmission(ctx context.Context, sessionID string) error {
	ok, err := s.rdb.SetNX(ctx, config.CacheKey.SubmissionClaimKey(sessionID), 1, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("claim submission: %w", err)
	}
	if !ok {
		return session.ErrAlreadySubmitted
	}
	return nil
}

// ReleaseSubmission frees the submission claim so a retaken test can be
// submitted again.
func (s *SessionStore) ReleaseSubmission(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, config.CacheKey.SubmissionClaimKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("release submission: %w", err)
	}
	return nil
}

// Delete removes a session, its submission claim and its deadline index entry.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.SessionKey(sessionID))
	pipe.Del(ctx, config.CacheKey.SubmissionClaimKey(sessionID))
	pipe.ZRem(ctx, config.CacheKey.DeadlineIndexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DueSessions returns the IDs of timed sessions whose deadline is at or
// before now. Used by the expiry worker.
func (s *SessionStore) DueSessions(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, config.CacheKey.DeadlineIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.Unix()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("scan deadline index: %w", err)
	}
	return ids, nil
}

// ClearDeadline removes a session from the deadline index without touching
// the session document. Used when the indexed session no longer exists.
func (s *SessionStore) ClearDeadline(ctx context.Context, sessionID string) error {
	return s.rdb.ZRem(ctx, config.CacheKey.DeadlineIndexKey(), sessionID).Err()
}
