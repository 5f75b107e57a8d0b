package llm

import (
	"context"
	"sort"

	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
)

// Turn is one piece of user text in a session. Index 0 is the task, later
// turns are clarifications.
type Turn string

// Role of a message author
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message sent to a provider
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is what a provider receives for one generation
type Request struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// BlockKind classifies a piece of response content
type BlockKind string

const (
	BlockText      BlockKind = "text"
	BlockToolUse   BlockKind = "tool_use"
	BlockMedia     BlockKind = "media"
	BlockReasoning BlockKind = "reasoning"
	BlockOther     BlockKind = "other"
)

// Block is one ordered content block of a response
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text,omitempty"`
}

// Response is a provider reply in the order the service produced it
type Response struct {
	Model        string  `json:"model,omitempty"`
	Blocks       []Block `json:"blocks"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Provider represents LLM provider interface
type Provider interface {
	// Name returns the registry name of the provider
	Name() string

	// Complete sends one request and returns the raw reply. Implementations
	// must not retry.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// VerifyConnection verifies connection and gets available models
	VerifyConnection(ctx context.Context) ([]string, error)
}

// ProviderFactory is a function that creates a new Provider
type ProviderFactory func(config.ProviderConfig) (Provider, error)

var providerFactories = make(map[string]ProviderFactory)

// RegisterProvider makes provider available by name
func RegisterProvider(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

// GetProvider creates a new provider by name
func GetProvider(name string, cfg config.ProviderConfig) (Provider, error) {
	factory, ok := providerFactories[name]
	if !ok {
		return nil, aerrors.ErrProviderNotFoundError(name, RegisteredProviders())
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, aerrors.ErrProviderInitFailed(name, err)
	}
	return p, nil
}

// RegisteredProviders returns the sorted names of all registered providers
func RegisteredProviders() []string {
	names := make([]string, 0, len(providerFactories))
	for name := range providerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
