package market

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fixedSource makes rand.Float64 return the same value on every draw.
type fixedSource struct{ f float64 }

func (s fixedSource) Uint64() uint64 { return uint64(s.f * (1 << 53)) }

func fixedRand(f float64) *rand.Rand { return rand.New(fixedSource{f}) }

var january = func() time.Time { return time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) }

func TestBasePrice(t *testing.T) {
	tests := []struct {
		crop, district string
		month          time.Month
		want           float64
	}{
		{"Tomato", "Nowhere", time.April, 1500},
		{"tomato", "Bangalore", time.April, 1650},
		{"tomato", "nowhere", time.July, 1950},
		{"dragonfruit", "nowhere", time.July, DefaultBasePrice},
		{"onion", "Mumbai", time.October, 1800 * 1.15 * 1.35},
	}
	for _, tt := range tests {
		got := BasePrice(tt.crop, tt.district, tt.month)
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("BasePrice(%q, %q, %v) = %v, want %v", tt.crop, tt.district, tt.month, got, tt.want)
		}
	}
}

func TestSyntheticPrices(t *testing.T) {
	tests := []struct {
		name  string
		draw  float64
		trend Trend
	}{
		{"up", 0.75, TrendUp},
		{"down", 0.25, TrendDown},
		{"stable", 0.5, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthetic(fixedRand(tt.draw), january)
			got, err := s.Prices(context.Background(), []string{"wheat"}, "nowhere")
			if err != nil {
				t.Fatalf("Prices: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(got))
			}
			e := got[0]
			// Wheat is 2200 with a January factor of 1.06.
			base := 2200 * 1.06
			wantCurrent := int(math.Round(base * (1 + (tt.draw*2-1)*MaxVolatility)))
			if e.CurrentPrice != wantCurrent {
				t.Errorf("CurrentPrice = %d, want %d", e.CurrentPrice, wantCurrent)
			}
			if e.AvgPrice != int(math.Round(base*0.95)) {
				t.Errorf("AvgPrice = %d", e.AvgPrice)
			}
			if e.Trend != tt.trend {
				t.Errorf("Trend = %q, want %q", e.Trend, tt.trend)
			}
			if e.Unit != PriceUnit || e.Source != "synthetic" || e.District != "nowhere" {
				t.Errorf("unexpected entry metadata: %+v", e)
			}
		})
	}
}

func TestSyntheticVolatilityBounded(t *testing.T) {
	s := NewSynthetic(nil, january)
	for range 200 {
		got, _ := s.Prices(context.Background(), []string{"rice"}, "")
		ratio := float64(got[0].CurrentPrice) / BasePrice("rice", "", time.January)
		if ratio < 0.899 || ratio > 1.101 {
			t.Fatalf("price ratio %v outside the volatility band", ratio)
		}
	}
}

func agmarknetServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api-key") != "k" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		switch {
		case q.Get("filters[commodity]") == "Tomato" && q.Get("filters[district]") == "Kolar":
			w.Write([]byte(`{"records": [
				{"market": "Kolar", "commodity": "Tomato", "arrival_date": "01/06/2025", "modal_price": "1200"},
				{"market": "Mulbagal", "commodity": "Tomato", "arrival_date": "03/06/2025", "modal_price": "1500"}
			]}`))
		case q.Get("filters[commodity]") == "Ragi" && q.Get("filters[district]") == "":
			w.Write([]byte(`{"records": [
				{"market": "Tumkur", "commodity": "Ragi", "arrival_date": "03/06/2025", "modal_price": 3400}
			]}`))
		default:
			w.Write([]byte(`{"records": []}`))
		}
	}))
}

func TestAgmarknetPrices(t *testing.T) {
	srv := agmarknetServer(t)
	defer srv.Close()

	a := NewAgmarknet("k", "", time.Second).WithBaseURL(srv.URL)
	got, err := a.Prices(context.Background(), []string{"tomato", "ragi", "saffron"}, "kolar")
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got)
	}

	tom := got[0]
	if tom.CurrentPrice != 1500 || tom.AvgPrice != 1350 || tom.Trend != TrendUp || tom.Market != "Mulbagal" {
		t.Errorf("unexpected tomato entry: %+v", tom)
	}
	if tom.LastUpdated.Format(time.DateOnly) != "2025-06-03" {
		t.Errorf("LastUpdated = %v", tom.LastUpdated)
	}

	ragi := got[1]
	if ragi.CurrentPrice != 3400 || ragi.Trend != TrendStable || ragi.Source != "agmarknet" {
		t.Errorf("unexpected ragi entry: %+v", ragi)
	}
}

func TestAgmarknetError(t *testing.T) {
	srv := agmarknetServer(t)
	defer srv.Close()

	_, err := NewAgmarknet("wrong", "", time.Second).WithBaseURL(srv.URL).
		Prices(context.Background(), []string{"tomato"}, "kolar")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestFallbackFillsMissingCrops(t *testing.T) {
	srv := agmarknetServer(t)
	defer srv.Close()

	f := NewFallback(
		NewAgmarknet("k", "", time.Second).WithBaseURL(srv.URL),
		NewSynthetic(fixedRand(0.5), january),
		nil,
	)
	got, err := f.Prices(context.Background(), []string{"saffron", "tomato"}, "kolar")
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %+v", got)
	}
	if got[0].Crop != "saffron" || got[0].Source != "synthetic" || got[0].CurrentPrice != 3000 {
		t.Errorf("unexpected filled entry: %+v", got[0])
	}
	if got[1].Source != "agmarknet" {
		t.Errorf("tomato should come from agmarknet: %+v", got[1])
	}
}

func TestFallbackOnError(t *testing.T) {
	srv := agmarknetServer(t)
	defer srv.Close()

	f := NewFallback(
		NewAgmarknet("wrong", "", time.Second).WithBaseURL(srv.URL),
		NewSynthetic(nil, january),
		nil,
	)
	got, err := f.Prices(context.Background(), []string{"tomato"}, "kolar")
	if err != nil {
		t.Fatalf("Prices: %v", err)
	}
	if len(got) != 1 || got[0].Source != "synthetic" {
		t.Errorf("expected synthetic fallback, got %+v", got)
	}
}

func TestNewSelectsSource(t *testing.T) {
	if _, ok := New("agmarknet", "", "", time.Second, nil).(*Synthetic); !ok {
		t.Error("agmarknet without a key should be synthetic")
	}
	if _, ok := New("agmarknet", "k", "", time.Second, nil).(*Fallback); !ok {
		t.Error("agmarknet with a key should be a fallback source")
	}
}
