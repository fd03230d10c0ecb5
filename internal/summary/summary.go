// Package summary generates, stores and pushes the daily farming briefing.
package summary

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/progress"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
)

// Service wraps the daily summary agent with persistence.
type Service struct {
	agent    *agents.DailySummary
	profiles *profile.Service
	synth    speech.Synthesizer
	store    *Store
	logger   *zap.Logger
	voice    speech.Gender
	now      func() time.Time
}

// NewService creates a Service. A nil synthesizer disables the push job's
// second audio attempt.
func NewService(agent *agents.DailySummary, profiles *profile.Service, synth speech.Synthesizer, store *Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if synth == nil {
		synth = speech.Disabled{}
	}
	return &Service{agent: agent, profiles: profiles, synth: synth, store: store, logger: logger, voice: speech.Female, now: time.Now}
}

// WithVoice sets the voice Push uses for each farmer's first synthesis
// attempt. The retry for audio subscribers is always FEMALE.
func (s *Service) WithVoice(v speech.Gender) *Service {
	if v != "" {
		s.voice = v
	}
	return s
}

func (s *Service) today() string {
	return s.now().UTC().Format(time.DateOnly)
}

// Generate builds today's summary for uid and stores it.
func (s *Service) Generate(ctx context.Context, uid string, voice speech.Gender) (*Record, error) {
	res, err := s.agent.Run(ctx, uid, voice)
	if err != nil {
		return nil, err
	}
	rec := &Record{
		UID:        uid,
		Date:       s.today(),
		Summary:    res.Summary,
		AudioURL:   res.AudioURL,
		Categories: res.Categories,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Today returns the stored summary for uid for the current UTC date.
func (s *Service) Today(ctx context.Context, uid string) (*Record, bool, error) {
	return s.store.Get(ctx, uid, s.today())
}

// Report tallies a push run.
type Report struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Push generates today's summary for every subscriber in the configured
// voice. Farmers who want audio notifications get a second synthesis attempt
// with the female voice when the first produced none. A failure for one farmer is logged and the
// run continues.
func (s *Service) Push(ctx context.Context, reporter progress.Reporter) (*Report, error) {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	subscribers, err := s.profiles.DailySummarySubscribers(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Total: len(subscribers), Failed: []string{}}
	reporter.Start(len(subscribers), "Daily summaries")
	defer reporter.Finish()

	for _, p := range subscribers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		err := s.pushOne(ctx, &p)
		reporter.Step(p.UserID, err)
		if err != nil {
			s.logger.Error("daily summary failed", zap.String("uid", p.UserID), zap.Error(err))
			report.Failed = append(report.Failed, p.UserID)
			continue
		}
		report.Succeeded++
	}

	s.logger.Info("daily summary push complete",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (s *Service) pushOne(ctx context.Context, p *profile.Profile) error {
	rec, err := s.Generate(ctx, p.UserID, s.voice)
	if err != nil {
		return err
	}
	if rec.AudioURL != "" || !p.Preferences.AudioNotifications {
		return nil
	}

	audioURL, err := s.synth.Synthesize(ctx, rec.Summary, p.UserID, speech.Female)
	if err != nil || audioURL == "" {
		s.logger.Warn("daily summary has no audio", zap.String("uid", p.UserID), zap.Error(err))
		return nil
	}
	rec.AudioURL = audioURL
	return s.store.Put(ctx, rec)
}
