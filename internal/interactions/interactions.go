// Package interactions is the append-only log of answered queries and the
// per-farmer counters maintained alongside it.
package interactions

import (
	"encoding/json"
	"time"

	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

// DefaultLimit is the page size used when a caller asks for no limit.
const DefaultLimit = 20

// Entry is one answered query.
type Entry struct {
	ID             string            `json:"id"`
	UID            string            `json:"uid"`
	QueryText      string            `json:"queryText"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Intent         intent.Intent     `json:"intent"`
	Response       string            `json:"response"`
	AudioURL       string            `json:"audioUrl,omitempty"`
	Priority       structure.Urgency `json:"priority"`
	AdditionalData json.RawMessage   `json:"additionalData,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Stats are the rolling counters for one farmer.
type Stats struct {
	UID          string         `json:"uid"`
	TotalQueries int            `json:"totalQueries"`
	ByIntent     map[string]int `json:"byIntent"`
	LastIntent   string         `json:"lastIntent,omitempty"`
	LastQueryAt  *time.Time     `json:"lastQueryAt,omitempty"`
}
