// Package market supplies crop price tables for the market advisor.
package market

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a source cannot produce prices.
var ErrUnavailable = errors.New("market data unavailable")

// Trend is the short-term price direction for a crop.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// PriceUnit is the unit every price is quoted in.
const PriceUnit = "INR/quintal"

// PriceEntry is one crop's price in a district.
type PriceEntry struct {
	Crop         string    `json:"crop"`
	CurrentPrice int       `json:"currentPrice"`
	AvgPrice     int       `json:"avgPrice"`
	Unit         string    `json:"unit"`
	Trend        Trend     `json:"trend"`
	District     string    `json:"district"`
	Market       string    `json:"market,omitempty"`
	Source       string    `json:"source"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Source returns prices for the given crops in a district. Crops the
// source knows nothing about are left out of the result.
type Source interface {
	Prices(ctx context.Context, crops []string, district string) ([]PriceEntry, error)
}
