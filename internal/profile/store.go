package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
)

// Store persists profiles in the users table.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

const selectColumns = `uid, full_name, phone_number, district, land_size, land_unit,
	soil_type, crops_grown, farming_experience, irrigation_type, language,
	audio_notifications, daily_summary, market_alerts, extra, created_at, updated_at`

// Get is a single keyed lookup. A missing row is reported as found=false,
// not as an error.
func (s *Store) Get(ctx context.Context, uid string) (*Profile, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM users WHERE uid = ?", uid)
	p, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetching profile %s: %w", uid, err)
	}
	return p, true, nil
}

// Put writes p, replacing any existing row but keeping its created_at.
func (s *Store) Put(ctx context.Context, p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	crops, err := json.Marshal(nonNil(p.CropsGrown))
	if err != nil {
		return fmt.Errorf("marshalling crops: %w", err)
	}
	extra := []byte("{}")
	if len(p.Extra) > 0 {
		if extra, err = json.Marshal(p.Extra); err != nil {
			return fmt.Errorf("marshalling extra fields: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (
			uid, full_name, phone_number, district, land_size, land_unit,
			soil_type, crops_grown, farming_experience, irrigation_type, language,
			audio_notifications, daily_summary, market_alerts, extra, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			full_name = excluded.full_name,
			phone_number = excluded.phone_number,
			district = excluded.district,
			land_size = excluded.land_size,
			land_unit = excluded.land_unit,
			soil_type = excluded.soil_type,
			crops_grown = excluded.crops_grown,
			farming_experience = excluded.farming_experience,
			irrigation_type = excluded.irrigation_type,
			language = excluded.language,
			audio_notifications = excluded.audio_notifications,
			daily_summary = excluded.daily_summary,
			market_alerts = excluded.market_alerts,
			extra = excluded.extra,
			updated_at = excluded.updated_at`,
		p.UserID, p.FullName, p.PhoneNumber, p.District, p.LandSize, string(p.LandUnit),
		p.SoilType, string(crops), p.FarmingExperience, p.IrrigationType, p.Language,
		boolInt(p.Preferences.AudioNotifications), boolInt(p.Preferences.DailySummary),
		boolInt(p.Preferences.MarketAlerts), string(extra),
		db.FormatTime(p.CreatedAt), db.FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing profile %s: %w", p.UserID, err)
	}
	return nil
}

// Update applies patch to the stored profile inside a transaction.
func (s *Store) Update(ctx context.Context, uid string, patch Patch) (*Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanInto(tx.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM users WHERE uid = ?", uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching profile %s: %w", uid, err)
	}

	p.Apply(patch)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	crops, err := json.Marshal(nonNil(p.CropsGrown))
	if err != nil {
		return nil, fmt.Errorf("marshalling crops: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET
			full_name = ?, phone_number = ?, district = ?, land_size = ?, land_unit = ?,
			soil_type = ?, crops_grown = ?, farming_experience = ?, irrigation_type = ?,
			language = ?, audio_notifications = ?, daily_summary = ?, market_alerts = ?,
			updated_at = ?
		WHERE uid = ?`,
		p.FullName, p.PhoneNumber, p.District, p.LandSize, string(p.LandUnit),
		p.SoilType, string(crops), p.FarmingExperience, p.IrrigationType,
		p.Language, boolInt(p.Preferences.AudioNotifications),
		boolInt(p.Preferences.DailySummary), boolInt(p.Preferences.MarketAlerts),
		db.FormatTime(p.UpdatedAt), uid,
	)
	if err != nil {
		return nil, fmt.Errorf("updating profile %s: %w", uid, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing profile %s: %w", uid, err)
	}
	return p, nil
}

// ListDailySummarySubscribers returns every profile with the daily summary
// preference switched on, ordered by uid.
func (s *Store) ListDailySummarySubscribers(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM users WHERE daily_summary = 1 ORDER BY uid")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Profile, error) {
	var (
		p                         Profile
		unit, cropsJSON, extraStr string
		createdAt, updatedAt      string
		audio, summary, alerts    int
	)
	err := sc.Scan(
		&p.UserID, &p.FullName, &p.PhoneNumber, &p.District, &p.LandSize, &unit,
		&p.SoilType, &cropsJSON, &p.FarmingExperience, &p.IrrigationType, &p.Language,
		&audio, &summary, &alerts, &extraStr, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.LandUnit = LandUnit(unit)
	p.Preferences = Preferences{
		AudioNotifications: audio != 0,
		DailySummary:       summary != 0,
		MarketAlerts:       alerts != 0,
	}
	if err := json.Unmarshal([]byte(cropsJSON), &p.CropsGrown); err != nil {
		p.CropsGrown = nil
	}
	if extraStr != "" && extraStr != "{}" {
		if err := json.Unmarshal([]byte(extraStr), &p.Extra); err != nil {
			p.Extra = nil
		}
	}
	p.CreatedAt = db.ParseTime(createdAt)
	p.UpdatedAt = db.ParseTime(updatedAt)
	return &p, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
