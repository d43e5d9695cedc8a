package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

var _ Store = (*SQLStore)(nil)

// SQLStore keeps the state document in the single row of the tracker_state table.
type SQLStore struct {
	db       *sql.DB
	teardown func()
}

// NewSQLStore wraps an initialised database. teardown may be nil.
func NewSQLStore(db *sql.DB, teardown func()) *SQLStore {
	return &SQLStore{db: db, teardown: teardown}
}

func (s *SQLStore) Load(ctx context.Context) (State, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM tracker_state WHERE id = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("No persisted state row, starting fresh")
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state row: %w", err)
	}
	return decode(payload)
}

func (s *SQLStore) Save(ctx context.Context, st State) error {
	payload, err := encode(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracker_state (id, payload, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at;
	`, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert state row: %w", err)
	}
	log.Debug("State saved", "backend", "sqlite", "players", len(st))
	return nil
}

func (s *SQLStore) Close() error {
	if s.teardown != nil {
		s.teardown()
		return nil
	}
	return s.db.Close()
}
