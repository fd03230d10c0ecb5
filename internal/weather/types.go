// Package weather supplies the current conditions and a short forecast for
// a farmer's district, and derives irrigation figures from them.
package weather

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a provider cannot produce a snapshot.
var ErrUnavailable = errors.New("weather data unavailable")

// Conditions are the observed values at lookup time. Temperature is in °C,
// rainfall in mm, wind in km/h, humidity and cloud cover in percent.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
	WindSpeed   float64 `json:"windSpeed"`
	Pressure    float64 `json:"pressure"`
	UVIndex     float64 `json:"uvIndex"`
	CloudCover  float64 `json:"cloudCover"`
	Condition   string  `json:"condition"`
}

// Day is one forecast day.
type Day struct {
	Date                     string  `json:"date"`
	MinTemp                  float64 `json:"minTemp"`
	MaxTemp                  float64 `json:"maxTemp"`
	AvgTemp                  float64 `json:"avgTemp"`
	Rainfall                 float64 `json:"rainfall"`
	Humidity                 float64 `json:"humidity"`
	WindSpeed                float64 `json:"windSpeed"`
	Condition                string  `json:"condition"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
}

// Location identifies where a snapshot was taken.
type Location struct {
	District  string  `json:"district"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Snapshot is the weather data handed to the agents.
type Snapshot struct {
	Current     Conditions `json:"current"`
	Forecast    []Day      `json:"forecast"`
	Location    Location   `json:"location"`
	Source      string     `json:"source"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// Provider looks up weather for a district.
type Provider interface {
	Snapshot(ctx context.Context, district string) (*Snapshot, error)
}

// ForecastDays is the number of days every provider returns.
const ForecastDays = 7
