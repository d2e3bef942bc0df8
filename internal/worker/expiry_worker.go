package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/testgenius/backend/internal/repository"
	"github.com/testgenius/backend/internal/service"
)

const (
	// ExpiryPollInterval matches the one-second countdown granularity:
	// a timed test is force-submitted within a second of its deadline.
	ExpiryPollInterval = 1 * time.Second
)

// ExpiryWorker polls the deadline index and force-submits timed tests whose
// time ran out. It shares the submit path with the manual route, so a race
// between the two resolves to a single submission.
type ExpiryWorker struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewExpiryWorker creates an ExpiryWorker.
func NewExpiryWorker(sessionService *service.SessionService, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessionService: sessionService,
		log:            log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs the polling loop until the context is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ExpiryWorker started")

	ticker := time.NewTicker(ExpiryPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep submits every session whose deadline has passed.
func (w *ExpiryWorker) sweep(ctx context.Context) {
	due, err := w.sessionService.DueSessions(ctx, time.Now())
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Deadline index poll failed")
		}
		return
	}

	for _, sessionID := range due {
		outcome, err := w.sessionService.SubmitExpired(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				// The session expired out of Redis; the leftover index
				// entry is all that remains.
				if err := w.sessionService.ClearDeadline(ctx, sessionID); err != nil {
					w.log.Error().Err(err).Str("session_id", sessionID).Msg("Orphaned deadline cleanup failed")
				}
				continue
			}
			w.log.Error().Err(err).Str("session_id", sessionID).Msg("Auto-submit failed")
			continue
		}

		w.log.Info().
			Str("session_id", sessionID).
			Bool("scored", outcome.Summary != nil).
			Msg("Timed test auto-submitted")
	}
}
