package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key for a live test session document.
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// ClientSessionsKey returns the cache key for the set of a client's sessions.
func (r *CacheKeyStruct) ClientSessionsKey(clientID string) string {
	return fmt.Sprintf("client:%s:sessions", clientID)
}

// SubmissionClaimKey returns the key claimed atomically by the one submission
// allowed per session.
func (r *CacheKeyStruct) SubmissionClaimKey(sessionID string) string {
	return fmt.Sprintf("session:%s:submitted", sessionID)
}

// DeadlineIndexKey returns the sorted-set key holding timed-session deadlines,
// scored by Unix deadline. Polled by the expiry worker.
func (r *CacheKeyStruct) DeadlineIndexKey() string {
	return "session_deadlines"
}

var CacheKey = NewCacheKeyStruct()
