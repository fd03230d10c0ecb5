package market

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Neutral values for crops, districts and months missing from the tables.
const (
	DefaultBasePrice      = 3000.0
	DefaultLocationFactor = 1.0
	DefaultSeasonalFactor = 1.0

	// MaxVolatility bounds the random swing applied to the base price.
	MaxVolatility = 0.10
	trendBand     = 0.02
)

var basePrices = map[string]float64{
	"rice":      2000,
	"wheat":     2200,
	"cotton":    6000,
	"sugarcane": 350,
	"tomato":    1500,
	"potato":    1200,
	"onion":     1800,
	"maize":     1900,
	"ragi":      3400,
	"groundnut": 5500,
	"chili":     8000,
	"turmeric":  7000,
}

// Urban demand lifts prices near the big markets.
var locationFactors = map[string]float64{
	"bangalore": 1.10,
	"bengaluru": 1.10,
	"mumbai":    1.15,
	"delhi":     1.12,
	"chennai":   1.08,
	"hyderabad": 1.05,
	"pune":      1.05,
	"mysore":    1.02,
	"mangalore": 1.03,
	"hubli":     0.98,
	"belgaum":   0.97,
	"bellary":   0.95,
	"bijapur":   0.94,
}

// Seasonal factors by crop and month. Harvest gluts push prices down,
// lean months push them up.
var seasonalFactors = map[string]map[time.Month]float64{
	"tomato": {
		time.June: 1.20, time.July: 1.30, time.August: 1.20,
		time.December: 0.85, time.January: 0.80, time.February: 0.85,
	},
	"onion": {
		time.September: 1.25, time.October: 1.35, time.November: 1.25,
		time.March: 0.85, time.April: 0.80, time.May: 0.85,
	},
	"potato": {
		time.February: 0.90, time.March: 0.85,
		time.September: 1.10, time.October: 1.15,
	},
	"rice": {
		time.October: 0.92, time.November: 0.90, time.December: 0.92,
		time.June: 1.05, time.July: 1.05,
	},
	"wheat": {
		time.April: 0.92, time.May: 0.94,
		time.December: 1.06, time.January: 1.06,
	},
	"cotton": {
		time.November: 0.94, time.December: 0.94,
		time.July: 1.05, time.August: 1.05,
	},
}

// Synthetic prices crops from a base table adjusted for district and
// season with a bounded random swing.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSynthetic returns a synthetic source. A nil rng draws from a randomly
// seeded generator and a nil clock means time.Now.
func NewSynthetic(rng *rand.Rand, now func() time.Time) *Synthetic {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Synthetic{rng: rng, now: now}
}

func (s *Synthetic) Prices(ctx context.Context, crops []string, district string) ([]PriceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PriceEntry, 0, len(crops))
	for _, crop := range crops {
		base := BasePrice(crop, district, now.Month())
		v := s.volatility()
		out = append(out, PriceEntry{
			Crop:         crop,
			CurrentPrice: int(math.Round(base * (1 + v))),
			AvgPrice:     int(math.Round(base * 0.95)),
			Unit:         PriceUnit,
			Trend:        trendOf(v),
			District:     district,
			Source:       "synthetic",
			LastUpdated:  now,
		})
	}
	return out, nil
}

func (s *Synthetic) volatility() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64()*2 - 1) * MaxVolatility
}

// BasePrice is the crop's table price scaled by district and month.
func BasePrice(crop, district string, month time.Month) float64 {
	key := strings.ToLower(strings.TrimSpace(crop))
	base, ok := basePrices[key]
	if !ok {
		base = DefaultBasePrice
	}
	loc, ok := locationFactors[strings.Join(strings.Fields(strings.ToLower(district)), "")]
	if !ok {
		loc = DefaultLocationFactor
	}
	season := DefaultSeasonalFactor
	if byMonth, ok := seasonalFactors[key]; ok {
		if f, ok := byMonth[month]; ok {
			season = f
		}
	}
	return base * loc * season
}

func trendOf(v float64) Trend {
	switch {
	case v > trendBand:
		return TrendUp
	case v < -trendBand:
		return TrendDown
	default:
		return TrendStable
	}
}
