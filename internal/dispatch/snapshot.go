package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
)

// SnapshotStore caches one recommendation bundle per farmer per UTC date.
type SnapshotStore struct {
	db *db.DB
}

// NewSnapshotStore creates a SnapshotStore backed by the given database.
func NewSnapshotStore(database *db.DB) *SnapshotStore {
	return &SnapshotStore{db: database}
}

// Get returns the bundle stored for uid on date (YYYY-MM-DD).
func (s *SnapshotStore) Get(ctx context.Context, uid, date string) (*Bundle, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT bundle FROM daily_recommendations WHERE uid = ? AND date = ?", uid, date,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading daily recommendations: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, false, fmt.Errorf("decoding daily recommendations: %w", err)
	}
	return &b, true, nil
}

// Put stores b for uid on date, replacing any earlier snapshot for that day.
func (s *SnapshotStore) Put(ctx context.Context, uid, date string, b *Bundle) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding daily recommendations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_recommendations (uid, date, bundle, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(uid, date) DO UPDATE SET
			bundle = excluded.bundle,
			created_at = excluded.created_at`,
		uid, date, string(raw), db.FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("storing daily recommendations: %w", err)
	}
	return nil
}
