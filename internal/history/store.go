// Package history implements the Postgres-backed evaluation history store.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ ports.HistoryStore = (*Store)(nil)

// Open connects to the database at the given DSN and pings it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluation_history (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    summary    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_user_time
    ON evaluation_history (user_id, created_at);
`

// Migrate applies the database schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// FetchHistory returns every record for the user, ascending by creation
// time so trend comparison reads oldest first.
func (s *Store) FetchHistory(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, created_at, summary
		 FROM evaluation_history
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CreatedAt, &raw); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Summary); err != nil {
			return nil, fmt.Errorf("decode summary for record %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// AppendHistory inserts one record in a single statement and returns it.
// The insert is the store's transaction boundary; the pipeline adds no
// locking of its own.
func (s *Store) AppendHistory(ctx context.Context, userID string, summary domain.AggregateSummary) (domain.HistoryRecord, error) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("encode summary: %w", err)
	}

	rec := domain.HistoryRecord{UserID: userID, Summary: summary}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO evaluation_history (user_id, summary)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		userID, raw,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("insert history: %w", err)
	}
	return rec, nil
}

// ResetAll deletes every record. Development only; the steady-state
// pipeline never updates or deletes.
func (s *Store) ResetAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE evaluation_history`); err != nil {
		return fmt.Errorf("truncate history: %w", err)
	}
	return nil
}
