package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

// maxTips caps every bundle section.
const maxTips = 5

// RecentWindow is how far back recent activity is counted.
const RecentWindow = 7 * 24 * time.Hour

// Bundle is the set of supplementary tips gathered from the agents that did
// not answer the query.
type Bundle struct {
	WeatherAlerts  []string `json:"weatherAlerts"`
	CropCare       []string `json:"cropCare"`
	MarketTips     []string `json:"marketTips"`
	SchemeTips     []string `json:"schemeTips"`
	RelatedActions []string `json:"relatedActions"`
}

// branches are the agents a bundle draws on, in section order.
var branches = []intent.Intent{intent.Weather, intent.Disease, intent.Irrigation, intent.Market, intent.Scheme}

var defaultTips = map[intent.Intent][]string{
	intent.Weather: {
		"Monsoon expected next week - prepare irrigation systems",
		"Temperature rising - increase watering frequency",
	},
	intent.Disease: {
		"Check for pest infections in tomato crops",
		"Apply fertilizer for better yield",
	},
	intent.Irrigation: {
		"Optimize watering schedule based on weather",
		"Monitor soil moisture levels regularly",
		"Consider water conservation techniques",
	},
	intent.Market: {
		"Tomato prices are up 15% this week - good time to sell",
		"Consider storing onions for better prices next month",
	},
	intent.Scheme: {
		"Apply for eligible government schemes",
		"Keep required documents ready",
		"Monitor scheme application deadlines",
	},
}

var relatedActions = map[intent.Intent][]string{
	intent.Disease: {
		"Upload a clear photo of the affected leaves",
		"Ask when to spray given this week's weather",
		"Check treatment costs against current crop prices",
	},
	intent.Irrigation: {
		"Check the 7-day weather forecast",
		"Ask about drip irrigation subsidies",
		"Review water needs for your next crop",
	},
	intent.Market: {
		"Compare prices at nearby mandis",
		"Ask about storage options for your harvest",
		"Check schemes for crop insurance",
	},
	intent.Scheme: {
		"Keep your land records and Aadhaar card ready",
		"Ask how to apply for the Kisan Credit Card",
		"Check today's market prices",
	},
	intent.Weather: {
		"Plan irrigation around expected rain",
		"Ask about protecting crops from heat",
		"Check prices before harvesting early",
	},
	intent.General: {
		"Ask about a crop disease",
		"Get irrigation advice for this week",
		"Check market prices for your crops",
		"Find government schemes you qualify for",
	},
}

// Recommendations is the daily recommendations view for one farmer.
type Recommendations struct {
	Success             bool             `json:"success"`
	Recommendations     *Bundle          `json:"recommendations"`
	Profile             *profile.Profile `json:"profile"`
	RecentActivityCount int              `json:"recentActivityCount"`
}

// Recommendations returns the farmer's bundle for today, building it with
// every agent on the first request of the UTC day.
func (d *Dispatcher) Recommendations(ctx context.Context, uid string) (*Recommendations, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, ErrMissingUID
	}
	p, err := d.d.Profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	date := now.Format(time.DateOnly)

	var b *Bundle
	if d.d.Snapshots != nil {
		cached, found, err := d.d.Snapshots.Get(ctx, uid, date)
		if err != nil {
			return nil, err
		}
		if found {
			b = cached
		}
	}
	if b == nil {
		b = d.bundle(ctx, uid, intent.General, nil)
		if d.d.Snapshots != nil {
			if err := d.d.Snapshots.Put(ctx, uid, date, b); err != nil {
				d.d.Logger.Warn("caching daily recommendations", zap.String("uid", uid), zap.Error(err))
			}
		}
	}

	recent := 0
	if d.d.Interactions != nil {
		recent, err = d.d.Interactions.CountSince(ctx, uid, now.Add(-RecentWindow))
		if err != nil {
			return nil, err
		}
	}

	return &Recommendations{Success: true, Recommendations: b, Profile: p, RecentActivityCount: recent}, nil
}

// bundle runs every branch except primary concurrently. primaryTips fill the
// primary's own section. A failing branch falls back to its default tips.
func (d *Dispatcher) bundle(ctx context.Context, uid string, primary intent.Intent, primaryTips []string) *Bundle {
	results := make([][]string, len(branches))

	var wg sync.WaitGroup
	for i, in := range branches {
		if in == primary {
			results[i] = withDefault(primaryTips, in)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			tips, err := d.supplement(ctx, in, uid)
			if err != nil {
				d.d.Logger.Warn("supplementary agent failed",
					zap.String("uid", uid),
					zap.String("agent", in.String()),
					zap.Error(err),
				)
			}
			results[i] = withDefault(tips, in)
		}()
	}
	wg.Wait()

	return &Bundle{
		WeatherAlerts:  results[0],
		CropCare:       capTips(append(append([]string{}, results[1]...), results[2]...)),
		MarketTips:     results[3],
		SchemeTips:     results[4],
		RelatedActions: relatedActions[primary],
	}
}

func (d *Dispatcher) supplement(ctx context.Context, in intent.Intent, uid string) ([]string, error) {
	a := d.d.Agents
	switch in {
	case intent.Weather:
		r, err := a.Weather.Run(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		return r.Alerts, nil
	case intent.Disease:
		r, err := a.Disease.Run(ctx, uid, "", "")
		if err != nil {
			return nil, err
		}
		return diseaseTips(r), nil
	case intent.Irrigation:
		r, err := a.Irrigation.Run(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		return irrigationTips(r), nil
	case intent.Market:
		r, err := a.Market.Run(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		return marketTips(r), nil
	case intent.Scheme:
		r, err := a.Scheme.Run(ctx, uid, "")
		if err != nil {
			return nil, err
		}
		return schemeTips(r), nil
	}
	return nil, fmt.Errorf("no supplementary agent for %s", in)
}

func diseaseTips(r *agents.DiseaseResult) []string {
	var out []string
	for _, t := range r.Treatment {
		if t != structure.DefaultTreatment {
			out = append(out, t)
		}
	}
	return out
}

func irrigationTips(r *agents.IrrigationResult) []string {
	out := append([]string{}, r.Schedule...)
	if r.WaterRequirement != "" {
		out = append(out, "Water requirement today: "+r.WaterRequirement)
	}
	if r.MoistureLevel != "" {
		out = append(out, "Soil moisture is "+r.MoistureLevel)
	}
	return out
}

func marketTips(r *agents.MarketResult) []string {
	var out []string
	for _, p := range r.PriceData {
		out = append(out, fmt.Sprintf("%s: ₹%d/quintal (avg ₹%d), trend %s", p.Crop, p.CurrentPrice, p.AvgPrice, p.Trend))
	}
	if len(out) > 0 {
		out = append(out, "Recommendation: "+string(r.Recommendation))
	}
	return out
}

func schemeTips(r *agents.SchemeResult) []string {
	var out []string
	for _, s := range r.Schemes {
		out = append(out, s.Name+": "+s.Benefit)
	}
	return out
}

func withDefault(tips []string, in intent.Intent) []string {
	if len(tips) == 0 {
		return defaultTips[in]
	}
	return capTips(tips)
}

func capTips(tips []string) []string {
	if len(tips) > maxTips {
		return tips[:maxTips]
	}
	return tips
}
