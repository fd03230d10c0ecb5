package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

// DailySummaryResult is the morning briefing for one farmer.
type DailySummaryResult struct {
	Summary    string               `json:"summary"`
	AudioURL   string               `json:"audioUrl"`
	Categories structure.Categories `json:"categories"`
}

// DailySummary combines market and irrigation advice into one briefing.
// It makes three oracle calls: market, irrigation and the summary itself.
type DailySummary struct {
	base
	market     *Market
	irrigation *Irrigation
	synth      speech.Synthesizer
}

// Run builds the briefing and voices it. Synthesis failures leave
// AudioURL empty.
func (a *DailySummary) Run(ctx context.Context, uid string, voice speech.Gender) (*DailySummaryResult, error) {
	p, err := a.profiles.Require(ctx, uid)
	if err != nil {
		return nil, err
	}

	m, err := a.market.Run(ctx, uid, "")
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	irr, err := a.irrigation.Run(ctx, uid, "")
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	summary, err := a.ask(ctx, "daily-summary", uid, summaryPrompt(a.profiles.Render(p), m.Advice, irr.Advice))
	if err != nil {
		return nil, err
	}

	audioURL, err := a.synth.Synthesize(ctx, summary, uid, voice)
	if err != nil {
		a.logger.Warn("daily summary audio failed", zap.String("uid", uid), zap.Error(err))
		audioURL = ""
	}

	return &DailySummaryResult{
		Summary:    summary,
		AudioURL:   audioURL,
		Categories: structure.ExtractCategories(summary, m.Advice, irr.Advice),
	}, nil
}
