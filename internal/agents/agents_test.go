package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/krishisaarathi/internal/db"
	"github.com/ziadkadry99/krishisaarathi/internal/llm"
	"github.com/ziadkadry99/krishisaarathi/internal/llm/llmtest"
	"github.com/ziadkadry99/krishisaarathi/internal/market"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
	"github.com/ziadkadry99/krishisaarathi/internal/weather"
)

type fixedWeather struct {
	snap *weather.Snapshot
	err  error
}

func (f fixedWeather) Snapshot(ctx context.Context, district string) (*weather.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.snap
	s.Location.District = district
	return &s, nil
}

type fixedPrices struct{}

func (fixedPrices) Prices(ctx context.Context, crops []string, district string) ([]market.PriceEntry, error) {
	out := make([]market.PriceEntry, 0, len(crops))
	for _, c := range crops {
		out = append(out, market.PriceEntry{Crop: c, CurrentPrice: 1600, AvgPrice: 1500, Unit: market.PriceUnit, Trend: market.TrendUp, District: district})
	}
	return out, nil
}

type recordingSynth struct {
	mu     sync.Mutex
	voices []speech.Gender
	err    error
}

func (r *recordingSynth) Synthesize(ctx context.Context, text, uid string, voice speech.Gender) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.voices = append(r.voices, voice)
	if r.err != nil {
		return "", r.err
	}
	return "/audio/" + uid + "/summary.mp3", nil
}

var hotDry = &weather.Snapshot{
	Current: weather.Conditions{Temperature: 38, Humidity: 35, Rainfall: 0, WindSpeed: 8, Condition: "sunny"},
	Forecast: []weather.Day{
		{Date: "2025-05-01", AvgTemp: 37},
		{Date: "2025-05-02", AvgTemp: 36, Rainfall: 30},
	},
}

type fixture struct {
	set      *Set
	provider *llmtest.Provider
	synth    *recordingSynth
	profiles *profile.Service
}

func setup(t *testing.T, reply string) *fixture {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	profiles := profile.NewService(profile.NewStore(database), "Karnataka", profile.CacheOptions{}, nil)
	provider := llmtest.New(reply)
	synth := &recordingSynth{}
	set := New(Deps{
		Profiles:    profiles,
		Oracle:      provider.Oracle(),
		Weather:     fixedWeather{snap: hotDry},
		Market:      fixedPrices{},
		Synthesizer: synth,
	})
	return &fixture{set: set, provider: provider, synth: synth, profiles: profiles}
}

func (f *fixture) addFarmer(t *testing.T, uid string, crops ...string) {
	t.Helper()
	_, err := f.profiles.Save(context.Background(), &profile.Profile{
		UserID:            uid,
		FullName:          "Lakshmi",
		District:          "Mandya",
		LandSize:          3,
		LandUnit:          profile.Acres,
		SoilType:          "black",
		CropsGrown:        crops,
		FarmingExperience: 8,
		IrrigationType:    "canal",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestDiseaseDiagnosis(t *testing.T) {
	f := setup(t, "Early blight detected. This is severe.\nSpray mancozeb 2g per litre\nRemove lower leaves\nCost: ₹450 per acre")
	f.addFarmer(t, "u1", "Tomato")

	res, err := f.set.Disease.Run(context.Background(), "u1", "my tomato leaves have yellow spots", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Urgency != structure.UrgencyHigh {
		t.Errorf("Urgency = %q, want high", res.Urgency)
	}
	if len(res.Treatment) != 1 || res.Treatment[0] != "Spray mancozeb 2g per litre" {
		t.Errorf("Treatment = %q", res.Treatment)
	}
	if res.Cost != "Cost: ₹450" {
		t.Errorf("Cost = %q", res.Cost)
	}

	prompts := f.provider.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("expected one oracle call, got %d", len(prompts))
	}
	for _, want := range []string{"FARMER PROFILE CONTEXT", `"my tomato leaves have yellow spots"`, "No image provided", "Mandya"} {
		if !strings.Contains(prompts[0], want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestDiseaseWithImage(t *testing.T) {
	f := setup(t, "Looks healthy")
	f.addFarmer(t, "u1")

	res, err := f.set.Disease.Run(context.Background(), "u1", "check this", "https://img.example/leaf.jpg")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Treatment[0] != structure.DefaultTreatment || res.Cost != structure.DefaultCost || res.Urgency != structure.UrgencyMedium {
		t.Errorf("expected extractor defaults, got %+v", res)
	}
	p := f.provider.Prompts()[0]
	if !strings.Contains(p, "Image URL: https://img.example/leaf.jpg") || !strings.Contains(p, "mixed crops") {
		t.Errorf("unexpected prompt:\n%s", p)
	}
}

func TestMissingProfileMakesNoOracleCall(t *testing.T) {
	f := setup(t, "unused")
	ctx := context.Background()

	checks := map[string]func() error{
		"disease":    func() error { _, err := f.set.Disease.Run(ctx, "ghost", "q", ""); return err },
		"irrigation": func() error { _, err := f.set.Irrigation.Run(ctx, "ghost", "q"); return err },
		"market":     func() error { _, err := f.set.Market.Run(ctx, "ghost", "q"); return err },
		"scheme":     func() error { _, err := f.set.Scheme.Run(ctx, "ghost", "q"); return err },
		"weather":    func() error { _, err := f.set.Weather.Run(ctx, "ghost", "q"); return err },
		"summary":    func() error { _, err := f.set.DailySummary.Run(ctx, "ghost", speech.Female); return err },
	}
	for name, run := range checks {
		if err := run(); !errors.Is(err, profile.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
	if n := f.provider.CallCount(); n != 0 {
		t.Errorf("expected zero oracle calls, got %d", n)
	}
}

func TestIrrigationDerivesFromWeather(t *testing.T) {
	f := setup(t, "Soil is dry.\nWater at 6 AM for 40 minutes\nA light evening watering helps\nMulch the beds")
	f.addFarmer(t, "u1", "Rice", "ragi")

	res, err := f.set.Irrigation.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.WaterRequirement != "52.5 liters per square meter" {
		t.Errorf("WaterRequirement = %q", res.WaterRequirement)
	}
	// Rainfall in the next two days exceeds 15mm.
	if res.MoistureLevel != weather.MoistureHigh {
		t.Errorf("MoistureLevel = %q", res.MoistureLevel)
	}
	if len(res.Schedule) != 2 {
		t.Errorf("Schedule = %q", res.Schedule)
	}
	p := f.provider.Prompts()[0]
	if !strings.Contains(p, `"General irrigation advice needed"`) || !strings.Contains(p, `"temperature": 38`) {
		t.Errorf("unexpected prompt:\n%s", p)
	}
}

func TestIrrigationWeatherFailurePropagates(t *testing.T) {
	f := setup(t, "unused")
	f.addFarmer(t, "u1", "rice")
	f.set.Irrigation.weather = fixedWeather{err: weather.ErrUnavailable}

	if _, err := f.set.Irrigation.Run(context.Background(), "u1", ""); !errors.Is(err, weather.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if f.provider.CallCount() != 0 {
		t.Error("oracle should not be called without weather data")
	}
}

func TestMarketAdvice(t *testing.T) {
	f := setup(t, "Prices are high this week. Sell now at the Mandya APMC.")
	f.addFarmer(t, "u1", "tomato", "onion")

	res, err := f.set.Market.Run(context.Background(), "u1", "should I sell?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Recommendation != structure.Sell {
		t.Errorf("Recommendation = %q", res.Recommendation)
	}
	if len(res.PriceData) != 2 || res.PriceData[1].Crop != "onion" {
		t.Errorf("PriceData = %+v", res.PriceData)
	}
	p := f.provider.Prompts()[0]
	if !strings.Contains(p, `"crop": "tomato"`) || !strings.Contains(p, "INR/quintal") {
		t.Errorf("prompt missing price table:\n%s", p)
	}
}

func TestMarketWaitReadsAsHold(t *testing.T) {
	f := setup(t, "I suggest you wait.")
	f.addFarmer(t, "u1", "onion")

	res, err := f.set.Market.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Recommendation != structure.Hold {
		t.Errorf("Recommendation = %q, want hold", res.Recommendation)
	}
	if !strings.Contains(f.provider.Prompts()[0], defaultMarketQuery) {
		t.Error("expected the default market query in the prompt")
	}
}

func TestSchemeEligibility(t *testing.T) {
	f := setup(t, "Apply for PM-KISAN.")
	f.addFarmer(t, "u1", "ragi")

	res, err := f.set.Scheme.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// 3 acres is about 1.2 ha: under every maximum and over the KCC minimum.
	if len(res.Schemes) != 4 {
		t.Errorf("expected all 4 schemes, got %d", len(res.Schemes))
	}
	p := f.provider.Prompts()[0]
	if strings.Contains(p, "Farmer's Query") {
		t.Error("empty query should be left out of the scheme prompt")
	}
	if !strings.Contains(p, "Raitha Bandhu") {
		t.Error("eligible schemes should be listed in the prompt")
	}
}

func TestWeatherBriefing(t *testing.T) {
	f := setup(t, "Hot week ahead.")
	f.addFarmer(t, "u1", "ragi")

	res, err := f.set.Weather.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Snapshot == nil || res.Snapshot.Location.District != "Mandya" {
		t.Errorf("unexpected snapshot: %+v", res.Snapshot)
	}
	if len(res.Alerts) != 2 {
		t.Errorf("expected heat and rain alerts, got %q", res.Alerts)
	}
	if !strings.Contains(f.provider.Prompts()[0], "Heat stress") {
		t.Error("alerts should be in the prompt")
	}
}

func TestOracleErrorPropagates(t *testing.T) {
	f := setup(t, "")
	f.provider.Err = errors.New("connection refused")
	f.addFarmer(t, "u1", "tomato")

	_, err := f.set.Disease.Run(context.Background(), "u1", "spots", "")
	if !errors.Is(err, llm.ErrOracleUnavailable) {
		t.Errorf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestDailySummary(t *testing.T) {
	f := setup(t, "")
	f.provider.Respond = func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "TASK: Create a daily farming summary"):
			return "Good morning Lakshmi!\nWeather looks hot today.\nTip: mulch to keep moisture in.\nHave a good day.", nil
		case strings.Contains(prompt, "TASK: Provide market advice"):
			return "Tomato is up 6%.\nHold onions.", nil
		case strings.Contains(prompt, "TASK: Provide irrigation advice"):
			return "Today water for 40 minutes at 6 AM.\nTomorrow skip.", nil
		}
		return "", errors.New("unexpected prompt")
	}
	f.addFarmer(t, "u1", "tomato")

	res, err := f.set.DailySummary.Run(context.Background(), "u1", speech.Female)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.provider.CallCount() != 3 {
		t.Errorf("expected 3 oracle calls, got %d", f.provider.CallCount())
	}
	if res.AudioURL != "/audio/u1/summary.mp3" {
		t.Errorf("AudioURL = %q", res.AudioURL)
	}
	want := structure.Categories{
		Weather:    "Weather looks hot",
		Market:     "Tomato is up 6%. Hold onions.",
		Irrigation: "Today water for 40 minutes at 6 AM.",
		General:    "Tip: mulch to keep moisture in.",
	}
	if res.Categories != want {
		t.Errorf("Categories = %+v, want %+v", res.Categories, want)
	}
	summaryPrompt := f.provider.Prompts()[2]
	if !strings.Contains(summaryPrompt, "Hold onions.") || !strings.Contains(summaryPrompt, "Today water for 40 minutes") {
		t.Error("summary prompt should embed the market and irrigation advice")
	}
}

func TestDailySummaryWithoutAudio(t *testing.T) {
	f := setup(t, "Summary text")
	f.synth.err = errors.New("tts down")
	f.addFarmer(t, "u1", "tomato")

	res, err := f.set.DailySummary.Run(context.Background(), "u1", speech.Male)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.AudioURL != "" {
		t.Errorf("AudioURL = %q, want empty", res.AudioURL)
	}
	if len(f.synth.voices) != 1 || f.synth.voices[0] != speech.Male {
		t.Errorf("voices = %v", f.synth.voices)
	}
}

func TestAgentsUseOneSharedClock(t *testing.T) {
	// The synthetic weather provider is deterministic per district and day,
	// so irrigation and weather agents see the same snapshot.
	f := setup(t, "ok")
	f.addFarmer(t, "u1", "ragi")
	day := func() time.Time { return time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC) }
	synthetic := weather.NewSynthetic(day)
	f.set.Irrigation.weather = synthetic
	f.set.Weather.weather = synthetic

	w, err := f.set.Weather.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Weather.Run: %v", err)
	}
	irr, err := f.set.Irrigation.Run(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("Irrigation.Run: %v", err)
	}
	if irr.MoistureLevel != weather.Moisture(w.Snapshot) {
		t.Errorf("moisture %q does not match the weather snapshot (%q)", irr.MoistureLevel, weather.Moisture(w.Snapshot))
	}
}
