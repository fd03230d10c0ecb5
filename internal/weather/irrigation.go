package weather

import (
	"fmt"
	"math"
	"strings"
)

// Moisture levels reported with irrigation advice.
const (
	MoistureHigh     = "High"
	MoistureModerate = "Moderate"
	MoistureLow      = "Low"
)

// BaseWaterRequirement is the daily need in litres per square metre before
// weather and crop adjustments.
const BaseWaterRequirement = 25.0

// Moisture estimates soil moisture from recent and expected rain.
func Moisture(s *Snapshot) string {
	if s == nil {
		return MoistureModerate
	}
	var upcoming float64
	for i := 0; i < 2 && i < len(s.Forecast); i++ {
		upcoming += s.Forecast[i].Rainfall
	}
	switch {
	case s.Current.Rainfall > 10 || upcoming > 15:
		return MoistureHigh
	case s.Current.Humidity < 50 && s.Current.Rainfall < 1:
		return MoistureLow
	default:
		return MoistureModerate
	}
}

// WaterRequirement returns litres per square metre per day, rounded to
// one decimal and never below 10.
func WaterRequirement(c Conditions, crop string) float64 {
	adj := 0.0
	if c.Temperature > 35 {
		adj += 0.30
	} else if c.Temperature < 20 {
		adj -= 0.20
	}
	if c.Humidity < 40 {
		adj += 0.20
	}
	if c.WindSpeed > 20 {
		adj += 0.15
	}
	if c.Rainfall > 5 {
		adj -= 0.40
	}

	need := BaseWaterRequirement * (1 + adj) * cropFactor(crop)
	need = math.Max(need, 10)
	return math.Round(need*10) / 10
}

// FormatRequirement renders a requirement the way it is shown to farmers.
func FormatRequirement(litres float64) string {
	return fmt.Sprintf("%.1f liters per square meter", litres)
}

func cropFactor(crop string) float64 {
	switch strings.ToLower(strings.TrimSpace(crop)) {
	case "rice", "sugarcane":
		return 1.4
	case "onion", "garlic":
		return 0.8
	default:
		return 1.0
	}
}

// Alerts lists the conditions in a snapshot worth warning a farmer about.
func Alerts(s *Snapshot) []string {
	if s == nil {
		return nil
	}
	var out []string
	c := s.Current
	if c.Temperature > 35 {
		out = append(out, fmt.Sprintf("Heat stress: %.0f°C now, increase watering frequency", c.Temperature))
	}
	if c.Humidity > 85 {
		out = append(out, "High humidity raises fungal disease risk, inspect leaves")
	}
	if c.WindSpeed > 30 {
		out = append(out, "Strong winds expected, stake tall crops")
	}
	for _, d := range s.Forecast[:min(3, len(s.Forecast))] {
		if d.Rainfall > 15 || d.Condition == "stormy" {
			out = append(out, fmt.Sprintf("Heavy rain likely on %s, clear drainage channels and hold irrigation", d.Date))
			break
		}
	}
	if len(out) == 0 {
		out = append(out, "No severe weather expected in the next few days")
	}
	return out
}
