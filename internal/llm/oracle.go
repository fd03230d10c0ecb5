package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Generator is the prompt-in, text-out capability the classifier and the
// agents depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OracleOptions are the generation settings applied to every call.
type OracleOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Oracle adapts a chat Provider to the single-prompt Generator contract.
// Each Generate is exactly one provider call; nothing is retried.
type Oracle struct {
	provider Provider
	opts     OracleOptions
	logger   *zap.Logger
}

// NewOracle wraps provider. A nil logger disables logging.
func NewOracle(provider Provider, opts OracleOptions, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{provider: provider, opts: opts, logger: logger}
}

// Generate sends prompt as a single user message and returns the first text
// candidate, which may be empty. Errors always match ErrOracleUnavailable or
// ErrMalformedResponse under errors.Is.
func (o *Oracle) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := o.provider.Complete(ctx, CompletionRequest{
		Model:       o.opts.Model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
	})
	if err != nil {
		if !errors.Is(err, ErrOracleUnavailable) && !errors.Is(err, ErrMalformedResponse) {
			err = fmt.Errorf("%s: %w: %w", o.provider.Name(), ErrOracleUnavailable, err)
		}
		o.logger.Debug("oracle call failed",
			zap.String("provider", o.provider.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return "", err
	}
	if resp == nil {
		return "", nil
	}

	inputTokens := resp.InputTokens
	if inputTokens == 0 {
		inputTokens = EstimateTokens(prompt)
	}
	outputTokens := resp.OutputTokens
	if outputTokens == 0 {
		outputTokens = EstimateTokens(resp.Content)
	}
	model := resp.Model
	if model == "" {
		model = o.opts.Model
	}
	o.logger.Debug("oracle call",
		zap.String("provider", o.provider.Name()),
		zap.String("model", model),
		zap.Int("input_tokens", inputTokens),
		zap.Int("output_tokens", outputTokens),
		zap.Float64("estimated_cost_usd", EstimateCost(model, inputTokens, outputTokens)),
		zap.Duration("duration", time.Since(start)),
	)

	return resp.Content, nil
}
