// Package providers defines the external model collaborators: embeddings
// generation and chat completion.
package providers

import (
	"context"
)

// ProviderType represents the type of provider.
type ProviderType string

const (
	ProviderTypeEmbeddings ProviderType = "embeddings"
	ProviderTypeChat       ProviderType = "chat"
)

// Provider is the base interface for all providers.
type Provider interface {
	// Name returns the provider's unique identifier.
	Name() string

	// Type returns the provider type.
	Type() ProviderType

	// Available returns true if the provider is configured and ready.
	Available() bool

	// RateLimit returns the rate limit configuration for this provider.
	RateLimit() RateLimitConfig
}

// EmbeddingsProvider generates vector embeddings from text.
type EmbeddingsProvider interface {
	Provider

	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call,
	// returned in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the embedding model identifier.
	ModelName() string

	// Dimensions returns the dimensionality of the embedding vectors.
	Dimensions() int
}

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatParams carries execution parameters for a chat completion.
type ChatParams struct {
	Temperature      float32
	TopP             float32
	PresencePenalty  float32
	FrequencyPenalty float32
	StopSequences    []string

	// MaxTokens caps the generated answer; zero means provider default.
	MaxTokens int
}

// TokenUsage is a typed snapshot of token accounting reported by a chat
// provider.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	Model        string
}

// ChatChunk is one increment of a streaming chat response.
type ChatChunk struct {
	// Content is the text delta; may be empty on usage-only chunks.
	Content string

	// Usage is set when the provider reports token accounting.
	Usage *TokenUsage
}

// ChatStream yields chat chunks until io.EOF.
type ChatStream interface {
	// Recv returns the next chunk, or io.EOF when the stream ends.
	Recv() (ChatChunk, error)

	// Close releases the stream.
	Close() error
}

// ChatProvider streams chat completions.
type ChatProvider interface {
	Provider

	// Stream starts a streaming completion for the given conversation.
	Stream(ctx context.Context, messages []ChatMessage, params ChatParams) (ChatStream, error)

	// ModelName returns the chat model identifier.
	ModelName() string
}
