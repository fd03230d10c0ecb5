package weather

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fallback tries the primary provider and answers from the secondary when
// it fails.
type Fallback struct {
	primary   Provider
	secondary Provider
	logger    *zap.Logger
}

// NewFallback wraps primary with a secondary provider.
func NewFallback(primary, secondary Provider, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Snapshot(ctx context.Context, district string) (*Snapshot, error) {
	s, err := f.primary.Snapshot(ctx, district)
	if err == nil {
		return s, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	f.logger.Warn("weather lookup failed, using fallback",
		zap.String("district", district), zap.Error(err))
	return f.secondary.Snapshot(ctx, district)
}

// New builds the provider selected by name. "google" needs an API key and
// falls back to the synthetic model; anything else is synthetic only.
func New(name, apiKey string, timeout time.Duration, logger *zap.Logger) Provider {
	synthetic := NewSynthetic(nil)
	if strings.EqualFold(name, "google") && apiKey != "" {
		return NewFallback(NewGoogle(apiKey, timeout), synthetic, logger)
	}
	return synthetic
}
