package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is a persisted record of one completed, scored test. Entries
// are immutable once written; the per-client log is capped and evicts the
// oldest entries first.
type HistoryEntry struct {
	ID                uuid.UUID         `json:"id"`
	ClientID          uuid.UUID         `json:"client_id"`
	Timestamp         time.Time         `json:"timestamp"`
	GenerationMode    string            `json:"generation_mode"`
	SourceIdentifier  string            `json:"source_identifier"`
	Questions         []Question        `json:"questions"`
	TestConfiguration TestConfiguration `json:"test_configuration"`
	ScoreSummary      ScoreSummary      `json:"score_summary"`
}
