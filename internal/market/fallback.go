package market

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fallback asks the primary source first and prices every crop it could
// not answer for from the secondary.
type Fallback struct {
	primary   Source
	secondary Source
	logger    *zap.Logger
}

// NewFallback wraps primary with a secondary source.
func NewFallback(primary, secondary Source, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Prices(ctx context.Context, crops []string, district string) ([]PriceEntry, error) {
	got, err := f.primary.Prices(ctx, crops, district)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		f.logger.Warn("market lookup failed, using fallback",
			zap.String("district", district), zap.Error(err))
		return f.secondary.Prices(ctx, crops, district)
	}

	priced := make(map[string]PriceEntry, len(got))
	for _, e := range got {
		priced[strings.ToLower(e.Crop)] = e
	}
	var missing []string
	for _, c := range crops {
		if _, ok := priced[strings.ToLower(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return got, nil
	}

	extra, err := f.secondary.Prices(ctx, missing, district)
	if err != nil {
		return nil, err
	}
	for _, e := range extra {
		priced[strings.ToLower(e.Crop)] = e
	}

	// Keep the caller's crop order.
	out := make([]PriceEntry, 0, len(crops))
	for _, c := range crops {
		if e, ok := priced[strings.ToLower(c)]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// New builds the source selected by name. "agmarknet" needs an API key and
// falls back to the synthetic model; anything else is synthetic only.
func New(name, apiKey, resourceID string, timeout time.Duration, logger *zap.Logger) Source {
	synthetic := NewSynthetic(nil, nil)
	if strings.EqualFold(name, "agmarknet") && apiKey != "" {
		return NewFallback(NewAgmarknet(apiKey, resourceID, timeout), synthetic, logger)
	}
	return synthetic
}
