package ai

// Role identifies the author of a chat completion message.
type Role string

const (
	// RoleSystem carries instructions that frame the model's behavior.
	RoleSystem Role = "system"
	// RoleUser carries the caller-supplied content.
	RoleUser Role = "user"
)

// Message is a single entry in an ordered chat completion request.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// CallOptions holds per-call generation parameters.
type CallOptions struct {
	// Temperature controls sampling randomness. Negative means provider default.
	Temperature float64
	// MaxTokens limits the response length. Zero means provider default.
	MaxTokens int
}

// DefaultCallOptions returns the zero configuration where the provider's
// defaults apply.
func DefaultCallOptions() CallOptions {
	return CallOptions{Temperature: -1}
}

// CallOption configures a single ChatCompletion call.
type CallOption func(*CallOptions)

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithMaxTokens sets the response token limit for one call.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}
