package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testgenius/backend/internal/model"
)

// ErrHistoryNotFound is returned when a history entry does not exist or
// belongs to another client.
var ErrHistoryNotFound = errors.New("history entry not found")

// HistoryRepository persists completed test summaries. The per-client log is
// capped: Append inserts the new entry and evicts the oldest rows beyond the
// capacity inside one transaction.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Append inserts a history entry and trims the client's log to capacity,
// oldest entries first.
func (r *HistoryRepository) Append(ctx context.Context, entry *model.HistoryEntry, capacity int) error {
	questions, err := json.Marshal(entry.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	cfg, err := json.Marshal(entry.TestConfiguration)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	summary, err := json.Marshal(entry.ScoreSummary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO test_history
		   (id, client_id, created_at, generation_mode, source_identifier,
		    questions, test_configuration, score_summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ClientID, entry.Timestamp, entry.GenerationMode,
		entry.SourceIdentifier, questions, cfg, summary,
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM test_history
		 WHERE client_id = $1
		   AND id NOT IN (
		     SELECT id FROM test_history
		     WHERE client_id = $1
		     ORDER BY created_at DESC, id DESC
		     LIMIT $2
		   )`,
		entry.ClientID, capacity,
	)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit(ctx)
}

// List returns a client's history, most recent first.
func (r *HistoryRepository) List(ctx context.Context, clientID uuid.UUID) ([]model.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, client_id, created_at, generation_mode, source_identifier,
		        questions, test_configuration, score_summary
		 FROM test_history
		 WHERE client_id = $1
		 ORDER BY created_at DESC, id DESC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Get returns one history entry owned by the client.
func (r *HistoryRepository) Get(ctx context.Context, clientID, entryID uuid.UUID) (*model.HistoryEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, client_id, created_at, generation_mode, source_identifier,
		        questions, test_configuration, score_summary
		 FROM test_history
		 WHERE id = $1 AND client_id = $2`,
		entryID, clientID,
	)
	entry, err := scanHistoryRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHistoryNotFound
	}
	return entry, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanHistoryRow decodes one row. Absent JSON fields in old records decode to
// zero values, so schema additions never break reads.
func scanHistoryRow(row rowScanner) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	var questions, cfg, summary []byte

	if err := row.Scan(
		&entry.ID, &entry.ClientID, &entry.Timestamp, &entry.GenerationMode,
		&entry.SourceIdentifier, &questions, &cfg, &summary,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(questions, &entry.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(cfg, &entry.TestConfiguration); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := json.Unmarshal(summary, &entry.ScoreSummary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	return &entry, nil
}
