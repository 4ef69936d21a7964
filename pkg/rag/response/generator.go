// Package response wraps an LLM provider with the tutoring generation
// policy: fixed temperature and an explicit, mode-dependent retry rule
// for rate limiting.
package response

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ai-tutor-be/pkg/fault"
	"ai-tutor-be/pkg/llm"
)

// tutoring responses use a fixed temperature
const temperature = 0.7

const retryBackoff = 2 * time.Second

// Generator produces answers from a conversation history.
//
// Retry is decided here and only here. In interactive mode a rate-limited
// call sleeps once for a short bounded interval and is retried a single
// time; any second rate limit, and every other failure kind, is returned
// to the caller. In serving mode no call ever sleeps: rate limits surface
// immediately so the handler can answer 429.
type Generator struct {
	provider llm.Provider
	logger   *zap.Logger

	retryOnRateLimit bool
	sleep            func(time.Duration)
}

type GeneratorOption func(*Generator)

// WithRateLimitRetry enables the interactive single-retry policy.
func WithRateLimitRetry() GeneratorOption {
	return func(g *Generator) {
		g.retryOnRateLimit = true
	}
}

// WithSleep replaces the backoff sleep, for tests.
func WithSleep(sleep func(time.Duration)) GeneratorOption {
	return func(g *Generator) {
		g.sleep = sleep
	}
}

func NewGenerator(provider llm.Provider, logger *zap.Logger, options ...GeneratorOption) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		provider: provider,
		logger:   logger,
		sleep:    time.Sleep,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Generate runs the chat completion for the given system instruction and
// turn history. The history must end with the user turn being answered.
func (g *Generator) Generate(ctx context.Context, systemInstruction string, turns []llm.Message) (string, error) {
	answer, err := g.provider.Chat(ctx, turns,
		llm.WithTemperature(temperature),
		llm.WithSystemInstruction(systemInstruction),
	)
	if err == nil {
		return answer, nil
	}

	if !g.retryOnRateLimit || !fault.IsKind(err, fault.KindRateLimited) {
		return "", err
	}

	g.logger.Warn("provider rate limited, retrying once",
		zap.Duration("backoff", retryBackoff),
	)
	g.sleep(retryBackoff)

	if err := ctx.Err(); err != nil {
		return "", fault.Wrap(fault.KindGenerationFailed, "response.Generate", err)
	}

	return g.provider.Chat(ctx, turns,
		llm.WithTemperature(temperature),
		llm.WithSystemInstruction(systemInstruction),
	)
}
