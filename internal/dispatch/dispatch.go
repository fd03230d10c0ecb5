// Package dispatch answers a farmer's query end to end: transcription,
// classification, the matching agent, speech and the interaction log.
package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/agents"
	"github.com/ziadkadry99/krishisaarathi/internal/intent"
	"github.com/ziadkadry99/krishisaarathi/internal/interactions"
	"github.com/ziadkadry99/krishisaarathi/internal/profile"
	"github.com/ziadkadry99/krishisaarathi/internal/speech"
	"github.com/ziadkadry99/krishisaarathi/internal/structure"
)

var (
	// ErrMissingUID is returned when a query names no farmer.
	ErrMissingUID = errors.New("user ID is required")

	// ErrEmptyQuery is returned when there is neither text, audio nor an image.
	ErrEmptyQuery = errors.New("either voice query or image is required")

	// ErrInvalidAudio is returned when audioData is not valid base64.
	ErrInvalidAudio = errors.New("audioData must be base64 encoded")
)

// ClarificationText answers queries that match no domain.
const ClarificationText = "I understand your farming question. Could you please be more specific about what you need help with? I can assist with crop diseases, irrigation, market prices, or government schemes."

// Query is an incoming request. AudioData, when present, is base64 audio and
// replaces QueryText with its transcript.
type Query struct {
	UID       string `json:"uid"`
	QueryText string `json:"queryText,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	AudioData string `json:"audioData,omitempty"`
}

// Answer is the reply to a Query.
type Answer struct {
	Text            string            `json:"text"`
	AudioURL        string            `json:"audioUrl"`
	Intent          intent.Intent     `json:"intent"`
	Priority        structure.Urgency `json:"priority"`
	AdditionalData  map[string]any    `json:"additionalData"`
	Recommendations *Bundle           `json:"recommendations,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
}

// Classifier picks the intent for a query.
type Classifier interface {
	Classify(ctx context.Context, query string, hasImage bool) intent.Intent
}

// Deps are the collaborators a Dispatcher needs. Interactions and Snapshots
// may be nil, which disables logging and daily caching.
type Deps struct {
	Profiles     *profile.Service
	Classifier   Classifier
	Agents       *agents.Set
	Transcriber  speech.Transcriber
	Synthesizer  speech.Synthesizer
	Interactions *interactions.Store
	Snapshots    *SnapshotStore
	Logger       *zap.Logger
}

// Options tune a Dispatcher.
type Options struct {
	// Contextual attaches a recommendation bundle to every answer.
	Contextual bool
	Voice      speech.Gender
	Language   string
}

// Dispatcher routes queries to agents.
type Dispatcher struct {
	d    Deps
	opts Options
	now  func() time.Time
}

// New creates a Dispatcher.
func New(d Deps, opts Options) *Dispatcher {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Transcriber == nil {
		d.Transcriber = speech.Disabled{}
	}
	if d.Synthesizer == nil {
		d.Synthesizer = speech.Disabled{}
	}
	if opts.Voice == "" {
		opts.Voice = speech.Female
	}
	if opts.Language == "" {
		opts.Language = speech.DefaultLanguage
	}
	return &Dispatcher{d: d, opts: opts, now: time.Now}
}

// Handle answers q. The profile is checked before anything reaches the
// oracle, so an unknown uid fails with profile.ErrNotFound and no calls.
func (d *Dispatcher) Handle(ctx context.Context, q Query) (*Answer, error) {
	uid := strings.TrimSpace(q.UID)
	if uid == "" {
		return nil, ErrMissingUID
	}

	text := q.QueryText
	if q.AudioData != "" {
		audio, err := base64.StdEncoding.DecodeString(q.AudioData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
		text, err = d.d.Transcriber.Transcribe(ctx, audio, d.opts.Language)
		if err != nil {
			return nil, err
		}
	}
	text = strings.TrimSpace(text)
	if text == "" && q.ImageURL == "" {
		return nil, ErrEmptyQuery
	}

	if _, err := d.d.Profiles.Require(ctx, uid); err != nil {
		return nil, err
	}

	in := d.d.Classifier.Classify(ctx, text, q.ImageURL != "")
	res, err := d.route(ctx, in, uid, text, q.ImageURL)
	if err != nil {
		return nil, err
	}

	audioURL, err := d.d.Synthesizer.Synthesize(ctx, res.text, uid, d.opts.Voice)
	if err != nil {
		d.d.Logger.Warn("speech synthesis failed", zap.String("uid", uid), zap.Error(err))
		audioURL = ""
	}

	answer := &Answer{
		Text:           res.text,
		AudioURL:       audioURL,
		Intent:         in,
		Priority:       res.priority,
		AdditionalData: res.additional,
		Timestamp:      d.now().UTC(),
	}
	if d.opts.Contextual {
		answer.Recommendations = d.bundle(ctx, uid, in, res.tips)
	}

	d.log(ctx, uid, text, q.ImageURL, answer)
	return answer, nil
}

type routed struct {
	text       string
	priority   structure.Urgency
	additional map[string]any
	// tips are the primary result's contribution to a bundle.
	tips []string
}

func (d *Dispatcher) route(ctx context.Context, in intent.Intent, uid, text, imageURL string) (*routed, error) {
	a := d.d.Agents
	switch in {
	case intent.Disease:
		r, err := a.Disease.Run(ctx, uid, text, imageURL)
		if err != nil {
			return nil, err
		}
		return &routed{
			text:       r.Advice,
			priority:   r.Urgency,
			additional: map[string]any{"treatment": r.Treatment, "cost": r.Cost},
			tips:       diseaseTips(r),
		}, nil

	case intent.Irrigation:
		r, err := a.Irrigation.Run(ctx, uid, text)
		if err != nil {
			return nil, err
		}
		return &routed{
			text:     r.Advice,
			priority: structure.UrgencyMedium,
			additional: map[string]any{
				"waterSchedule":    r.Schedule,
				"soilMoisture":     r.MoistureLevel,
				"waterRequirement": r.WaterRequirement,
			},
			tips: irrigationTips(r),
		}, nil

	case intent.Market:
		r, err := a.Market.Run(ctx, uid, text)
		if err != nil {
			return nil, err
		}
		return &routed{
			text:       r.Advice,
			priority:   structure.UrgencyMedium,
			additional: map[string]any{"recommendation": r.Recommendation, "priceData": r.PriceData},
			tips:       marketTips(r),
		}, nil

	case intent.Scheme:
		r, err := a.Scheme.Run(ctx, uid, text)
		if err != nil {
			return nil, err
		}
		return &routed{
			text:       r.Advice,
			priority:   structure.UrgencyMedium,
			additional: map[string]any{"eligibleSchemes": r.Schemes},
			tips:       schemeTips(r),
		}, nil

	case intent.Weather:
		r, err := a.Weather.Run(ctx, uid, text)
		if err != nil {
			return nil, err
		}
		return &routed{
			text:       r.Advice,
			priority:   structure.UrgencyMedium,
			additional: map[string]any{"alerts": r.Alerts, "weather": r.Snapshot},
			tips:       r.Alerts,
		}, nil

	default:
		return &routed{
			text:       ClarificationText,
			priority:   structure.UrgencyMedium,
			additional: map[string]any{},
		}, nil
	}
}

// log records the interaction. A failed write is logged, not returned: the
// farmer already has an answer.
func (d *Dispatcher) log(ctx context.Context, uid, text, imageURL string, a *Answer) {
	if d.d.Interactions == nil {
		return
	}
	additional, err := json.Marshal(a.AdditionalData)
	if err != nil {
		d.d.Logger.Warn("encoding interaction data", zap.String("uid", uid), zap.Error(err))
		additional = nil
	}
	entry := &interactions.Entry{
		UID:            uid,
		QueryText:      text,
		ImageURL:       imageURL,
		Intent:         a.Intent,
		Response:       a.Text,
		AudioURL:       a.AudioURL,
		Priority:       a.Priority,
		AdditionalData: additional,
	}
	if err := d.d.Interactions.Log(ctx, entry); err != nil {
		d.d.Logger.Error("logging interaction", zap.String("uid", uid), zap.Error(err))
		return
	}
	d.d.Logger.Info("query answered",
		zap.String("uid", uid),
		zap.String("intent", a.Intent.String()),
		zap.String("priority", string(a.Priority)),
		zap.Bool("audio", a.AudioURL != ""),
	)
}
