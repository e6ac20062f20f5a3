package greeting

import (
	"context"
	"fmt"

	"VibeWake/config"
)

// NewFromConfig builds the Greeter selected by GREETING_PROVIDER.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Greeter, error) {
	var p Provider
	switch cfg.GreetingProvider {
	case config.GreetingOpenAI:
		p = NewOpenAIProvider(OpenAIConfig{
			APIBaseURL:  cfg.AIAPIBaseURL,
			APIKey:      cfg.AIAPIKey,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
		})
	case config.GreetingGemini:
		gp, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		p = gp
	case config.GreetingMock, "":
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown greeting provider %q", cfg.GreetingProvider)
	}
	return NewGreeter(p, TextsFor(cfg.GreetingLocale), cfg.GreetingTimeout), nil
}
