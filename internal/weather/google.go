package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const googleWeatherBaseURL = "https://weather.googleapis.com/v1"

// Google reads current conditions and the daily forecast from the Google
// Weather API.
type Google struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewGoogle creates a Google Weather provider.
func NewGoogle(apiKey string, timeout time.Duration) *Google {
	return &Google{
		apiKey:  apiKey,
		baseURL: googleWeatherBaseURL,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// WithBaseURL points the provider at a different endpoint root.
func (g *Google) WithBaseURL(u string) *Google {
	g.baseURL = u
	return g
}

type gwValue struct {
	Degrees  float64 `json:"degrees"`
	Value    float64 `json:"value"`
	Quantity float64 `json:"quantity"`
	Percent  float64 `json:"percent"`
}

type gwPrecipitation struct {
	QPF         gwValue `json:"qpf"`
	Probability gwValue `json:"probability"`
}

type gwWind struct {
	Speed gwValue `json:"speed"`
}

type gwCondition struct {
	Type string `json:"type"`
}

type gwCurrent struct {
	Temperature      *gwValue        `json:"temperature"`
	RelativeHumidity *float64        `json:"relativeHumidity"`
	Precipitation    gwPrecipitation `json:"precipitation"`
	Wind             gwWind          `json:"wind"`
	AirPressure      struct {
		MeanSeaLevelMillibars float64 `json:"meanSeaLevelMillibars"`
	} `json:"airPressure"`
	UVIndex          float64     `json:"uvIndex"`
	CloudCover       float64     `json:"cloudCover"`
	WeatherCondition gwCondition `json:"weatherCondition"`
}

type gwDayPart struct {
	WeatherCondition gwCondition     `json:"weatherCondition"`
	RelativeHumidity float64         `json:"relativeHumidity"`
	Precipitation    gwPrecipitation `json:"precipitation"`
	Wind             gwWind          `json:"wind"`
}

type gwForecastDay struct {
	DisplayDate struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"displayDate"`
	DaytimeForecast gwDayPart `json:"daytimeForecast"`
	MaxTemperature  gwValue   `json:"maxTemperature"`
	MinTemperature  gwValue   `json:"minTemperature"`
}

type gwForecast struct {
	ForecastDays []gwForecastDay `json:"forecastDays"`
}

func (g *Google) Snapshot(ctx context.Context, district string) (*Snapshot, error) {
	lat, lng := Coordinates(district)

	var cur gwCurrent
	if err := g.get(ctx, "/currentConditions:lookup", lat, lng, nil, &cur); err != nil {
		return nil, err
	}
	current := parseCurrent(cur)

	now := g.now().UTC()
	var fc gwForecast
	var forecast []Day
	params := url.Values{"days": {strconv.Itoa(ForecastDays)}}
	if err := g.get(ctx, "/forecast/days:lookup", lat, lng, params, &fc); err == nil && len(fc.ForecastDays) > 0 {
		forecast = parseForecast(fc, current, now)
	} else {
		forecast = forecastFromCurrent(current, now)
	}

	return &Snapshot{
		Current:     current,
		Forecast:    forecast,
		Location:    Location{District: district, Latitude: lat, Longitude: lng},
		Source:      "google",
		LastUpdated: now,
	}, nil
}

func (g *Google) get(ctx context.Context, path string, lat, lng float64, extra url.Values, out any) error {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("location.latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("location.longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	for k, vs := range extra {
		q[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating weather request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrUnavailable, path, err)
	}
	return nil
}

func parseCurrent(c gwCurrent) Conditions {
	out := Conditions{
		Temperature: 25,
		Humidity:    65,
		Rainfall:    c.Precipitation.QPF.Quantity,
		WindSpeed:   math.Round(orDefault(c.Wind.Speed.Value, 10)),
		Pressure:    math.Round(orDefault(c.AirPressure.MeanSeaLevelMillibars, 1013)),
		UVIndex:     c.UVIndex,
		CloudCover:  c.CloudCover,
		Condition:   mapGoogleCondition(c.WeatherCondition.Type),
	}
	if c.Temperature != nil {
		out.Temperature = math.Round(c.Temperature.Degrees)
	}
	if c.RelativeHumidity != nil {
		out.Humidity = *c.RelativeHumidity
	}
	return out
}

func parseForecast(fc gwForecast, cur Conditions, now time.Time) []Day {
	days := fc.ForecastDays
	if len(days) > ForecastDays {
		days = days[:ForecastDays]
	}
	out := make([]Day, 0, len(days))
	for i, d := range days {
		date := now.AddDate(0, 0, i).Format(time.DateOnly)
		if d.DisplayDate.Year > 0 {
			date = fmt.Sprintf("%04d-%02d-%02d", d.DisplayDate.Year, d.DisplayDate.Month, d.DisplayDate.Day)
		}
		minT := orDefault(d.MinTemperature.Degrees, cur.Temperature-5)
		maxT := orDefault(d.MaxTemperature.Degrees, cur.Temperature+5)
		out = append(out, Day{
			Date:                     date,
			MinTemp:                  math.Round(minT),
			MaxTemp:                  math.Round(maxT),
			AvgTemp:                  math.Round((minT + maxT) / 2),
			Rainfall:                 d.DaytimeForecast.Precipitation.QPF.Quantity,
			Humidity:                 orDefault(d.DaytimeForecast.RelativeHumidity, cur.Humidity),
			WindSpeed:                math.Round(orDefault(d.DaytimeForecast.Wind.Speed.Value, cur.WindSpeed)),
			Condition:                mapGoogleCondition(d.DaytimeForecast.WeatherCondition.Type),
			PrecipitationProbability: d.DaytimeForecast.Precipitation.Probability.Percent,
		})
	}
	return out
}

// forecastFromCurrent repeats the current conditions when the forecast
// lookup fails.
func forecastFromCurrent(cur Conditions, now time.Time) []Day {
	out := make([]Day, 0, ForecastDays)
	for i := range ForecastDays {
		out = append(out, Day{
			Date:                     now.AddDate(0, 0, i).Format(time.DateOnly),
			MinTemp:                  cur.Temperature - 3,
			MaxTemp:                  cur.Temperature + 3,
			AvgTemp:                  cur.Temperature,
			Rainfall:                 cur.Rainfall,
			Humidity:                 cur.Humidity,
			WindSpeed:                cur.WindSpeed,
			Condition:                cur.Condition,
			PrecipitationProbability: 20,
		})
	}
	return out
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
