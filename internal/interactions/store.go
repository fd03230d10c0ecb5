package interactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

// Store persists interactions and their counters.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Log appends entry and bumps the farmer's counters in one transaction.
// ID and Timestamp are assigned here; values set by the caller are ignored.
func (s *Store) Log(ctx context.Context, entry *Entry) error {
	entry.ID = uuid.New().String()
	entry.Timestamp = s.now().UTC()
	if entry.Priority == "" {
		entry.Priority = structure.UrgencyMedium
	}
	if !entry.Intent.Valid() {
		entry.Intent = intent.General
	}
	additional := string(entry.AdditionalData)
	if additional == "" {
		additional = "{}"
	}
	ts := db.FormatTime(entry.Timestamp)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting interaction transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO interactions (
			id, uid, query_text, image_url, intent, response,
			audio_url, priority, additional_data, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UID, entry.QueryText, nullable(entry.ImageURL),
		string(entry.Intent), entry.Response, nullable(entry.AudioURL),
		string(entry.Priority), additional, ts,
	)
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_stats (uid, total_queries, last_intent, last_query_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			total_queries = total_queries + 1,
			last_intent = excluded.last_intent,
			last_query_at = excluded.last_query_at`,
		entry.UID, string(entry.Intent), ts,
	)
	if err != nil {
		return fmt.Errorf("updating user stats: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_intent_stats (uid, intent, count) VALUES (?, ?, 1)
		ON CONFLICT(uid, intent) DO UPDATE SET count = count + 1`,
		entry.UID, string(entry.Intent),
	)
	if err != nil {
		return fmt.Errorf("updating intent stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing interaction: %w", err)
	}
	return nil
}

// Recent returns the farmer's newest interactions first. A limit of zero or
// less uses DefaultLimit.
func (s *Store) Recent(ctx context.Context, uid string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, uid, query_text, image_url, intent, response,
			   audio_url, priority, additional_data, timestamp
		FROM interactions WHERE uid = ?
		ORDER BY timestamp DESC LIMIT ?`, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CountSince counts the farmer's interactions at or after since.
func (s *Store) CountSince(ctx context.Context, uid string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM interactions WHERE uid = ? AND timestamp >= ?",
		uid, db.FormatTime(since),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return n, nil
}

// Stats returns the farmer's counters. A farmer with no interactions gets
// zeroed stats, not an error.
func (s *Store) Stats(ctx context.Context, uid string) (*Stats, error) {
	st := &Stats{UID: uid, ByIntent: map[string]int{}}

	var lastAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT total_queries, last_intent, last_query_at FROM user_stats WHERE uid = ?", uid,
	).Scan(&st.TotalQueries, &st.LastIntent, &lastAt)
	switch {
	case err == sql.ErrNoRows:
		return st, nil
	case err != nil:
		return nil, fmt.Errorf("reading user stats: %w", err)
	}
	if t := db.ParseTime(lastAt); !t.IsZero() {
		st.LastQueryAt = &t
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT intent, count FROM user_intent_stats WHERE uid = ?", uid)
	if err != nil {
		return nil, fmt.Errorf("reading intent stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		st.ByIntent[name] = count
	}
	return st, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e                  Entry
		imageURL, audioURL sql.NullString
		intentName         string
		priority           string
		additional         string
		ts                 string
	)
	err := sc.Scan(&e.ID, &e.UID, &e.QueryText, &imageURL, &intentName, &e.Response,
		&audioURL, &priority, &additional, &ts)
	if err != nil {
		return nil, err
	}
	e.ImageURL = imageURL.String
	e.AudioURL = audioURL.String
	e.Intent = intent.Intent(intentName)
	e.Priority = structure.Urgency(priority)
	e.AdditionalData = []byte(additional)
	e.Timestamp = db.ParseTime(ts)
	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
