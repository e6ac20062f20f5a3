package greeting

import (
	"context"
	"strings"
	"time"

	"VibeWake/logger"
)

// Provider generates text for a prompt. It may fail.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Greeter turns an alarm label into a morning greeting. Greet never fails:
// provider errors, timeouts and empty answers map to the locale's fallback.
type Greeter struct {
	provider Provider
	texts    Texts
	timeout  time.Duration
}

// NewGreeter creates a Greeter. A non-positive timeout means 8s.
func NewGreeter(p Provider, texts Texts, timeout time.Duration) *Greeter {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Greeter{provider: p, texts: texts, timeout: timeout}
}

// Greet asks the provider for a greeting for label.
func (g *Greeter) Greet(ctx context.Context, label string) string {
	if label == "" {
		label = g.texts.DefaultLabel
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Generate(ctx, g.texts.Prompt(label))
	if err != nil {
		logger.Warn("Greeting generation failed, using fallback",
			logger.String("provider", g.provider.Name()),
			logger.String("label", label),
			logger.Duration("elapsed", time.Since(start)),
			logger.ErrorField(err))
		return g.texts.Fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("Greeting provider returned empty text", logger.String("provider", g.provider.Name()))
		return g.texts.Fallback
	}
	logger.Debug("Greeting generated",
		logger.String("provider", g.provider.Name()),
		logger.Duration("elapsed", time.Since(start)))
	return text
}

func (g *Greeter) Texts() Texts {
	return g.texts
}

func (g *Greeter) ProviderName() string {
	return g.provider.Name()
}
