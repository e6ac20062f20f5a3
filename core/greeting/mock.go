package greeting

import "context"

const defaultMockReply = "Bom dia! Respire fundo, alongue-se e comece o dia no seu ritmo."

// MockProvider answers with a fixed reply and no network access.
type MockProvider struct {
	Reply string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Reply: defaultMockReply}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Reply, nil
}
