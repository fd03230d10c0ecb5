// Package llmtest provides a recording llm.Provider for tests in other packages.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/krishisaarathi/internal/llm"
)

// Provider records every request and answers with Respond when set,
// otherwise with Err or a fixed Content.
type Provider struct {
	mu      sync.Mutex
	Calls   []llm.CompletionRequest
	Content string
	Err     error
	Respond func(prompt string) (string, error)
}

// New returns a Provider that always answers content.
func New(content string) *Provider {
	return &Provider{Content: content}
}

func (p *Provider) Name() string {
	return "mock"
}

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, req)
	respond, content, err := p.Respond, p.Content, p.Err
	p.mu.Unlock()

	if respond != nil {
		var prompt string
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		content, err = respond(prompt)
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{
		Content:      content,
		InputTokens:  10,
		OutputTokens: 20,
		Model:        "mock-model",
		FinishReason: "stop",
	}, nil
}

// CallCount returns the number of Complete calls so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Prompts returns the last message of every recorded request.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Calls))
	for _, c := range p.Calls {
		if len(c.Messages) > 0 {
			out = append(out, c.Messages[len(c.Messages)-1].Content)
		}
	}
	return out
}

// Oracle wraps p in an llm.Oracle with no logger.
func (p *Provider) Oracle() *llm.Oracle {
	return llm.NewOracle(p, llm.OracleOptions{Model: "mock-model", MaxTokens: 2048, Temperature: 0.7}, nil)
}
