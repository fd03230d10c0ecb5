package summary

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/llm/llmtest"
	"github.com/ziadkadry99/krishisaarathi/internal/market"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/weather"
)

var today = time.Date(2025, time.July, 3, 5, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

// flakySynth fails the first call for every uid in failFirst.
type flakySynth struct {
	mu        sync.Mutex
	failFirst map[string]bool
	calls     map[string]int
	voices    []speech.Gender
	byUID     map[string][]speech.Gender
}

func (f *flakySynth) Synthesize(ctx context.Context, text, uid string, voice speech.Gender) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[uid]++
	f.voices = append(f.voices, voice)
	f.byUID[uid] = append(f.byUID[uid], voice)
	if f.failFirst[uid] && f.calls[uid] == 1 {
		return "", speech.ErrSynthesisFailed
	}
	return "/audio/" + uid + "/summary.mp3", nil
}

type harness struct {
	svc      *Service
	provider *llmtest.Provider
	synth    *flakySynth
	profiles *profile.Service
}

func setup(t *testing.T) *harness {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	profiles := profile.NewService(profile.NewStore(database), "Karnataka", profile.CacheOptions{}, nil)
	provider := &llmtest.Provider{Respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Name: Broken") {
			return "", errors.New("quota exceeded")
		}
		if strings.Contains(prompt, "TASK: Create a daily farming summary") {
			return "Good morning!\nWeather is clear today.\nTip: check the drip lines.", nil
		}
		return "Sell tomatoes this week.", nil
	}}
	synth := &flakySynth{failFirst: map[string]bool{}, calls: map[string]int{}, byUID: map[string][]speech.Gender{}}

	set := agents.New(agents.Deps{
		Profiles:    profiles,
		Oracle:      provider.Oracle(),
		Weather:     weather.NewSynthetic(clock),
		Market:      market.NewSynthetic(rand.New(rand.NewPCG(3, 4)), clock),
		Synthesizer: synth,
	})
	svc := NewService(set.DailySummary, profiles, synth, NewStore(database), nil)
	svc.now = clock
	return &harness{svc: svc, provider: provider, synth: synth, profiles: profiles}
}

func (h *harness) farmer(t *testing.T, uid, name string, prefs profile.Preferences) {
	t.Helper()
	_, err := h.profiles.Save(context.Background(), &profile.Profile{
		UserID:      uid,
		FullName:    name,
		District:    "Mysore",
		LandSize:    2,
		LandUnit:    profile.Acres,
		CropsGrown:  []string{"tomato"},
		Preferences: prefs,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestGenerateStoresTodaysSummary(t *testing.T) {
	h := setup(t)
	h.farmer(t, "u1", "Asha", profile.Preferences{DailySummary: true})
	ctx := context.Background()

	rec, err := h.svc.Generate(ctx, "u1", speech.Male)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rec.Date != "2025-07-03" || rec.AudioURL != "/audio/u1/summary.mp3" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Categories.General != "Tip: check the drip lines." {
		t.Errorf("tip = %q", rec.Categories.General)
	}
	if h.synth.voices[0] != speech.Male {
		t.Errorf("voice = %q", h.synth.voices[0])
	}

	got, found, err := h.svc.Today(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("Today: found=%v err=%v", found, err)
	}
	if got.Summary != rec.Summary || got.Categories != rec.Categories || !got.CreatedAt.Equal(today) {
		t.Errorf("stored record differs: %+v", got)
	}

	h.svc.now = func() time.Time { return today.Add(24 * time.Hour) }
	if _, found, _ := h.svc.Today(ctx, "u1"); found {
		t.Error("yesterday's summary should not be today's")
	}
}

func TestGenerateMissingProfile(t *testing.T) {
	h := setup(t)
	if _, err := h.svc.Generate(context.Background(), "ghost", speech.Female); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPush(t *testing.T) {
	h := setup(t)
	h.farmer(t, "u1", "Asha", profile.Preferences{DailySummary: true, AudioNotifications: true})
	h.farmer(t, "u2", "Broken", profile.Preferences{DailySummary: true})
	h.farmer(t, "u3", "Gowda", profile.Preferences{DailySummary: false})
	h.farmer(t, "u4", "Meena", profile.Preferences{DailySummary: true})
	h.synth.failFirst["u1"] = true
	h.synth.failFirst["u4"] = true
	ctx := context.Background()

	report, err := h.svc.Push(ctx, nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if report.Total != 3 || report.Succeeded != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "u2" {
		t.Errorf("Failed = %v", report.Failed)
	}

	// u1 wants audio, so the failed first synthesis is retried.
	rec, found, err := h.svc.Today(ctx, "u1")
	if err != nil || !found || rec.AudioURL != "/audio/u1/summary.mp3" {
		t.Errorf("u1 record = %+v, %v, %v", rec, found, err)
	}
	// u4 does not, so its summary is stored without audio.
	rec, found, err = h.svc.Today(ctx, "u4")
	if err != nil || !found || rec.AudioURL != "" {
		t.Errorf("u4 record = %+v, %v, %v", rec, found, err)
	}
	if _, found, _ := h.svc.Today(ctx, "u3"); found {
		t.Error("u3 is not subscribed")
	}
	for _, v := range h.synth.voices {
		if v != speech.Female {
			t.Errorf("push voiced with %q, want FEMALE", v)
		}
	}
}

func TestPushConfiguredVoice(t *testing.T) {
	h := setup(t)
	h.svc.WithVoice(speech.Male)
	h.farmer(t, "u1", "Asha", profile.Preferences{DailySummary: true, AudioNotifications: true})
	h.farmer(t, "u2", "Meena", profile.Preferences{DailySummary: true})
	h.farmer(t, "u3", "Gowda", profile.Preferences{DailySummary: true, AudioNotifications: true})
	h.synth.failFirst["u1"] = true
	h.synth.failFirst["u2"] = true

	report, err := h.svc.Push(context.Background(), nil)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if report.Succeeded != 3 {
		t.Errorf("unexpected report: %+v", report)
	}

	tests := []struct {
		uid  string
		want []speech.Gender
	}{
		// Retried in the female voice after the configured voice failed.
		{"u1", []speech.Gender{speech.Male, speech.Female}},
		// No audio notifications, so no retry.
		{"u2", []speech.Gender{speech.Male}},
		// First attempt succeeded.
		{"u3", []speech.Gender{speech.Male}},
	}
	for _, tt := range tests {
		got := h.synth.byUID[tt.uid]
		if len(got) != len(tt.want) {
			t.Errorf("%s voices = %v, want %v", tt.uid, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s voices = %v, want %v", tt.uid, got, tt.want)
				break
			}
		}
	}

	if h.svc.WithVoice("") != h.svc || h.svc.voice != speech.Male {
		t.Error("an empty voice should leave the configured one in place")
	}
}

func TestRoutes(t *testing.T) {
	h := setup(t)
	h.farmer(t, "u1", "Asha", profile.Preferences{DailySummary: true})

	r := chi.NewRouter()
	RegisterRoutes(r, h.svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u1/summary", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET before generation = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/u1/summary", strings.NewReader(`{"voice":"MALE"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("POST = %d (%s)", w.Code, w.Body.String())
	}
	var rec Record
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.UID != "u1" || rec.Summary == "" {
		t.Errorf("unexpected record: %+v", rec)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u1/summary", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET after generation = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users/ghost/summary", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("POST for unknown farmer = %d, want 404", w.Code)
	}
}
