package mock

import (
	"context"
	"strings"

	"github.com/poiesic/tutorit/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// ChatCompletionFunc is called by ChatCompletion if set.
	// If nil, uses default echo behavior.
	ChatCompletionFunc func(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error)

	callCount int
	lastCall  []ai.Message
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// ChatCompletion returns a deterministic response derived from the last
// user message. Default behavior: echoes the user content with a fixed
// prefix, so tests can assert the prompt reached the generator.
func (m *MockGenerator) ChatCompletion(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
	m.callCount++
	m.lastCall = messages

	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, messages, opts...)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var user string
	for _, msg := range messages {
		if msg.Role == ai.RoleUser {
			user = msg.Content
		}
	}

	var sb strings.Builder
	sb.WriteString("generated response for: ")
	if len(user) > 80 {
		user = user[:80]
	}
	sb.WriteString(user)
	return sb.String(), nil
}

// CallCount returns the number of completions requested.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastMessages returns the messages from the most recent call.
func (m *MockGenerator) LastMessages() []ai.Message {
	return m.lastCall
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastCall = nil
	m.ChatCompletionFunc = nil
}
