// Package agents implements the domain advisors. Each agent loads the
// farmer's profile, gathers its own auxiliary data, makes exactly one
// oracle call and structures the reply.
package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/llm"
	"github.com/ziadkadry99/krishisaarathi/internal/market"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/schemes"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
	"github.com/ziadkadry99/krishisaarathi/internal/weather"
)

// Deps are the collaborators shared by every agent.
type Deps struct {
	Profiles    *profile.Service
	Oracle      llm.Generator
	Weather     weather.Provider
	Market      market.Source
	Synthesizer speech.Synthesizer
	Logger      *zap.Logger
}

// Set holds one instance of every agent.
type Set struct {
	Disease      *Disease
	Irrigation   *Irrigation
	Market       *Market
	Scheme       *Scheme
	Weather      *Weather
	DailySummary *DailySummary
}

// New builds every agent over the same dependencies.
func New(d Deps) *Set {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Synthesizer == nil {
		d.Synthesizer = speech.Disabled{}
	}
	b := base{profiles: d.Profiles, oracle: d.Oracle, logger: d.Logger}
	s := &Set{
		Disease:    &Disease{base: b},
		Irrigation: &Irrigation{base: b, weather: d.Weather},
		Market:     &Market{base: b, source: d.Market},
		Scheme:     &Scheme{base: b},
		Weather:    &Weather{base: b, weather: d.Weather},
	}
	s.DailySummary = &DailySummary{base: b, market: s.Market, irrigation: s.Irrigation, synth: d.Synthesizer}
	return s
}

type base struct {
	profiles *profile.Service
	oracle   llm.Generator
	logger   *zap.Logger
}

func (b base) ask(ctx context.Context, agent, uid, prompt string) (string, error) {
	start := time.Now()
	reply, err := b.oracle.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s agent: %w", agent, err)
	}
	b.logger.Debug("agent answered",
		zap.String("agent", agent),
		zap.String("uid", uid),
		zap.Int("reply_chars", len(reply)),
		zap.Duration("duration", time.Since(start)),
	)
	return reply, nil
}

// DiseaseResult is a diagnosis with its urgency, treatments and cost.
type DiseaseResult struct {
	Advice    string            `json:"advice"`
	Urgency   structure.Urgency `json:"urgency"`
	Treatment []string          `json:"treatment"`
	Cost      string            `json:"cost"`
}

// Disease diagnoses crop problems from a description and optional image.
type Disease struct {
	base
}

// Run diagnoses query for uid. An empty query asks for a general health check.
func (a *Disease) Run(ctx context.Context, uid, query, imageURL string) (*DiseaseResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}
	prompt := diseasePrompt(a.profiles.Render(p), p, a.profiles.State(), orDefault(query, defaultDiseaseQuery), imageURL)
	reply, err := a.ask(ctx, "disease", uid, prompt)
	if err != nil {
		return nil, err
	}
	return &DiseaseResult{
		Advice:    reply,
		Urgency:   structure.ExtractUrgency(reply),
		Treatment: structure.ExtractTreatments(reply),
		Cost:      structure.ExtractCost(reply),
	}, nil
}

// IrrigationResult is watering advice with figures derived from the weather.
type IrrigationResult struct {
	Advice           string   `json:"advice"`
	Schedule         []string `json:"schedule"`
	MoistureLevel    string   `json:"moistureLevel"`
	WaterRequirement string   `json:"waterRequirement"`
}

// Irrigation advises on watering from the district's weather.
type Irrigation struct {
	base
	weather weather.Provider
}

func (a *Irrigation) Run(ctx context.Context, uid, query string) (*IrrigationResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}
	district := orDefault(p.District, a.profiles.State())
	snap, err := a.weather.Snapshot(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("irrigation agent: weather for %s: %w", district, err)
	}

	prompt := irrigationPrompt(a.profiles.Render(p), p, a.profiles.State(), query, weatherJSON(snap))
	reply, err := a.ask(ctx, "irrigation", uid, prompt)
	if err != nil {
		return nil, err
	}
	return &IrrigationResult{
		Advice:           reply,
		Schedule:         structure.ExtractSchedule(reply),
		MoistureLevel:    weather.Moisture(snap),
		WaterRequirement: weather.FormatRequirement(weather.WaterRequirement(snap.Current, p.PrimaryCrop())),
	}, nil
}

// MarketResult is selling advice with the price table it was based on.
type MarketResult struct {
	Advice         string                   `json:"advice"`
	Recommendation structure.Recommendation `json:"recommendation"`
	PriceData      []market.PriceEntry      `json:"priceData"`
}

// Market advises on when and where to sell.
type Market struct {
	base
	source market.Source
}

func (a *Market) Run(ctx context.Context, uid, query string) (*MarketResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}
	district := orDefault(p.District, a.profiles.State())
	prices, err := a.source.Prices(ctx, p.CropsGrown, district)
	if err != nil {
		return nil, fmt.Errorf("market agent: prices for %s: %w", district, err)
	}

	prompt := marketPrompt(a.profiles.Render(p), p, a.profiles.State(), query, market.PriceUnit, toJSON(prices))
	reply, err := a.ask(ctx, "market", uid, prompt)
	if err != nil {
		return nil, err
	}
	return &MarketResult{
		Advice:         reply,
		Recommendation: structure.ExtractRecommendation(reply),
		PriceData:      prices,
	}, nil
}

// SchemeResult explains the schemes the farmer is eligible for.
type SchemeResult struct {
	Advice  string           `json:"advice"`
	Schemes []schemes.Scheme `json:"schemes"`
}

// Scheme recommends government schemes.
type Scheme struct {
	base
}

func (a *Scheme) Run(ctx context.Context, uid, query string) (*SchemeResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}
	eligible := schemes.Filter(schemes.Catalog(), p.Hectares(), a.profiles.State())

	prompt := schemePrompt(a.profiles.Render(p), p, a.profiles.State(), query, toJSON(eligible))
	reply, err := a.ask(ctx, "scheme", uid, prompt)
	if err != nil {
		return nil, err
	}
	return &SchemeResult{Advice: reply, Schemes: eligible}, nil
}

// WeatherResult is a weather briefing with the data and alerts behind it.
type WeatherResult struct {
	Advice   string            `json:"advice"`
	Snapshot *weather.Snapshot `json:"snapshot"`
	Alerts   []string          `json:"alerts"`
}

// Weather briefs the farmer on the week's weather.
type Weather struct {
	base
	weather weather.Provider
}

func (a *Weather) Run(ctx context.Context, uid, query string) (*WeatherResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}
	district := orDefault(p.District, a.profiles.State())
	snap, err := a.weather.Snapshot(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("weather agent: weather for %s: %w", district, err)
	}
	alerts := weather.Alerts(snap)

	prompt := weatherPrompt(a.profiles.Render(p), p, a.profiles.State(), query, weatherJSON(snap), alerts)
	reply, err := a.ask(ctx, "weather", uid, prompt)
	if err != nil {
		return nil, err
	}
	return &WeatherResult{Advice: reply, Snapshot: snap, Alerts: alerts}, nil
}

// weatherJSON renders the parts of a snapshot the oracle needs.
func weatherJSON(s *weather.Snapshot) string {
	return toJSON(struct {
		Current  weather.Conditions `json:"current"`
		Forecast []weather.Day      `json:"forecast"`
	}{s.Current, s.Forecast})
}
