package weather

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// Synthetic models weather from a district's typical climate and the
// season. Noise is seeded by district and date, so the same district
// gets the same snapshot all day.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic returns a synthetic provider. A nil clock means time.Now.
func NewSynthetic(now func() time.Time) *Synthetic {
	if now == nil {
		now = time.Now
	}
	return &Synthetic{now: now}
}

func (s *Synthetic) Snapshot(ctx context.Context, district string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := climateFor(district)
	sn := seasonFor(int(now.Month()))
	rng := seededRand(placeKey(district), now.Format(time.DateOnly))

	// between returns a uniform value in [lo, hi).
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	rain := func(max float64) float64 {
		if sn.rainChance > rng.Float64() {
			return math.Round(rng.Float64() * max)
		}
		return 0
	}

	cur := Conditions{
		Temperature: math.Round(c.baseTemp + sn.tempAdj + between(-3, 3)),
		Humidity:    clampPercent(math.Round(c.baseHumidity + sn.humidityAdj + between(-10, 10))),
		Rainfall:    rain(10),
		WindSpeed:   math.Round(c.baseWind + between(0, 5)),
		Pressure:    math.Round(1013 + between(-10, 10)),
		UVIndex:     math.Round(c.baseUV + sn.uvAdj),
		CloudCover:  clampPercent(math.Round(sn.cloudCover + between(-15, 15))),
		Condition:   sn.condition,
	}

	variants := conditionVariants[sn.condition]
	forecast := make([]Day, 0, ForecastDays)
	for i := range ForecastDays {
		forecast = append(forecast, Day{
			Date:                     now.AddDate(0, 0, i).Format(time.DateOnly),
			MinTemp:                  math.Round(cur.Temperature - 5 + between(0, 4)),
			MaxTemp:                  math.Round(cur.Temperature + 5 + between(0, 4)),
			AvgTemp:                  math.Round(cur.Temperature + between(-2, 2)),
			Rainfall:                 rain(15),
			Humidity:                 clampPercent(math.Round(cur.Humidity + between(-5, 5))),
			WindSpeed:                math.Max(0, math.Round(cur.WindSpeed+between(-1.5, 1.5))),
			Condition:                variants[rng.IntN(len(variants))],
			PrecipitationProbability: math.Round(sn.rainChance * 100),
		})
	}

	return &Snapshot{
		Current:     cur,
		Forecast:    forecast,
		Location:    Location{District: district, Latitude: c.lat, Longitude: c.lng},
		Source:      "synthetic",
		LastUpdated: now,
	}, nil
}

func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func clampPercent(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
