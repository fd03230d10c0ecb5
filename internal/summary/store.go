package summary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

// Record is one stored daily summary.
type Record struct {
	UID        string               `json:"uid"`
	Date       string               `json:"date"`
	Summary    string               `json:"summary"`
	AudioURL   string               `json:"audioUrl"`
	Categories structure.Categories `json:"categories"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Store keeps at most one summary per farmer per date.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Put writes rec, replacing an earlier summary for the same date.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	categories, err := json.Marshal(rec.Categories)
	if err != nil {
		return fmt.Errorf("encoding summary categories: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (uid, date, summary, audio_url, categories, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid, date) DO UPDATE SET
			summary = excluded.summary,
			audio_url = excluded.audio_url,
			categories = excluded.categories,
			created_at = excluded.created_at`,
		rec.UID, rec.Date, rec.Summary, rec.AudioURL, string(categories), db.FormatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storing daily summary: %w", err)
	}
	return nil
}

// Get returns the summary for uid on date (YYYY-MM-DD).
func (s *Store) Get(ctx context.Context, uid, date string) (*Record, bool, error) {
	rec := Record{UID: uid, Date: date}
	var categories, created string
	err := s.db.QueryRowContext(ctx, `
		SELECT summary, audio_url, categories, created_at
		FROM daily_summaries WHERE uid = ? AND date = ?`, uid, date,
	).Scan(&rec.Summary, &rec.AudioURL, &categories, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading daily summary: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &rec.Categories); err != nil {
		return nil, false, fmt.Errorf("decoding summary categories: %w", err)
	}
	rec.CreatedAt = db.ParseTime(created)
	return &rec, true, nil
}
