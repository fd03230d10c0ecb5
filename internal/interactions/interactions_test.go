package interactions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

// tick returns a clock that advances one minute per call from start.
func tick(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Minute)
		return t
	}
}

func TestLogAssignsIDAndTimestamp(t *testing.T) {
	store := setupStore(t)
	start := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	store.now = tick(start)
	ctx := context.Background()

	e := &Entry{
		ID:             "caller-id",
		UID:            "u1",
		QueryText:      "my tomato leaves have yellow spots",
		Intent:         intent.Disease,
		Response:       "Spray mancozeb",
		Priority:       structure.UrgencyHigh,
		AdditionalData: json.RawMessage(`{"cost":"₹450"}`),
	}
	if err := store.Log(ctx, e); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if e.ID == "" || e.ID == "caller-id" {
		t.Errorf("expected a generated id, got %q", e.ID)
	}
	if !e.Timestamp.Equal(start) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, start)
	}

	got, err := store.Recent(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].ID != e.ID || got[0].Priority != structure.UrgencyHigh || got[0].ImageURL != "" {
		t.Errorf("unexpected entry: %+v", got[0])
	}
	if string(got[0].AdditionalData) != `{"cost":"₹450"}` {
		t.Errorf("AdditionalData = %s", got[0].AdditionalData)
	}
	if !got[0].Timestamp.Equal(start) {
		t.Errorf("stored Timestamp = %v", got[0].Timestamp)
	}
}

func TestLogDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.Log(ctx, &Entry{UID: "u1", Intent: "nonsense"}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	got, err := store.Recent(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got[0].Intent != intent.General || got[0].Priority != structure.UrgencyMedium {
		t.Errorf("expected general/medium defaults, got %s/%s", got[0].Intent, got[0].Priority)
	}
	if string(got[0].AdditionalData) != "{}" {
		t.Errorf("AdditionalData = %s", got[0].AdditionalData)
	}
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	store := setupStore(t)
	store.now = tick(time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		if err := store.Log(ctx, &Entry{UID: "u1", QueryText: q, Intent: intent.Market}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	if err := store.Log(ctx, &Entry{UID: "u2", QueryText: "other", Intent: intent.Market}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	got, err := store.Recent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].QueryText != "third" || got[1].QueryText != "second" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestStatsCounters(t *testing.T) {
	store := setupStore(t)
	start := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	store.now = tick(start)
	ctx := context.Background()

	for _, i := range []intent.Intent{intent.Market, intent.Disease, intent.Market} {
		if err := store.Log(ctx, &Entry{UID: "u1", Intent: i}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	st, err := store.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalQueries != 3 {
		t.Errorf("TotalQueries = %d, want 3", st.TotalQueries)
	}
	if st.ByIntent["market"] != 2 || st.ByIntent["disease"] != 1 {
		t.Errorf("ByIntent = %v", st.ByIntent)
	}
	if st.LastIntent != "market" {
		t.Errorf("LastIntent = %q", st.LastIntent)
	}
	if st.LastQueryAt == nil || !st.LastQueryAt.Equal(start.Add(2*time.Minute)) {
		t.Errorf("LastQueryAt = %v", st.LastQueryAt)
	}

	empty, err := store.Stats(ctx, "nobody")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if empty.TotalQueries != 0 || len(empty.ByIntent) != 0 || empty.LastQueryAt != nil {
		t.Errorf("expected zeroed stats, got %+v", empty)
	}
}

func TestConcurrentLogsKeepCountsExact(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Log(ctx, &Entry{UID: "u1", Intent: intent.Irrigation}); err != nil {
				t.Errorf("Log: %v", err)
			}
		}()
	}
	wg.Wait()

	st, err := store.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalQueries != 20 || st.ByIntent["irrigation"] != 20 {
		t.Errorf("expected 20/20, got %d/%d", st.TotalQueries, st.ByIntent["irrigation"])
	}
}

func TestConcurrentLogsOnFileDatabase(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "saarathi.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	store := NewStore(database)
	ctx := context.Background()

	const n = 50
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := intent.Market
			if i%2 == 0 {
				in = intent.Disease
			}
			if err := store.Log(ctx, &Entry{UID: "u1", Intent: in}); err != nil {
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(failed) > 0 {
		t.Fatalf("%d of %d logs failed, first: %v", len(failed), n, failed[0])
	}
	st, err := store.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalQueries != n {
		t.Errorf("TotalQueries = %d, want %d", st.TotalQueries, n)
	}
	if st.ByIntent["disease"] != n/2 || st.ByIntent["market"] != n/2 {
		t.Errorf("ByIntent = %v, want 25 each", st.ByIntent)
	}
	entries, err := store.Recent(ctx, "u1", MaxLimit)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != n {
		t.Errorf("Recent returned %d entries, want %d", len(entries), n)
	}
}

func TestCountSince(t *testing.T) {
	store := setupStore(t)
	start := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
	store.now = tick(start)
	ctx := context.Background()

	for range 3 {
		if err := store.Log(ctx, &Entry{UID: "u1", Intent: intent.Weather}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	n, err := store.CountSince(ctx, "u1", start.Add(time.Minute))
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 2 {
		t.Errorf("CountSince = %d, want 2", n)
	}
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	for range 3 {
		if err := store.Log(ctx, &Entry{UID: "u1", Intent: intent.Scheme}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/users/u1/interactions?limit=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var page struct {
		UID          string  `json:"uid"`
		Interactions []Entry `json:"interactions"`
	}
	if err := json.NewDecoder(w.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.UID != "u1" || len(page.Interactions) != 2 {
		t.Errorf("unexpected page: %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/u1/interactions?limit=abc", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/u1/stats", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var st Stats
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.TotalQueries != 3 || st.ByIntent["scheme"] != 3 {
		t.Errorf("unexpected stats: %+v", st)
	}
}
