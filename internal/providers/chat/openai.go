// Package chat implements the streaming chat provider against an
// OpenAI-compatible API.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quillmem/quill/internal/providers"
)

const defaultModel = "gpt-4o-mini"

// OpenAIProvider implements providers.ChatProvider on the OpenAI chat
// completions API.
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	model       string
	client      *openai.Client
	rateLimiter *providers.RateLimiter
}

// Option configures the OpenAIProvider.
type Option func(*OpenAIProvider)

// WithAPIKey overrides the key read from OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(p *OpenAIProvider) {
		p.apiKey = key
	}
}

// WithBaseURL points the provider at an alternate OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(p *OpenAIProvider) {
		p.baseURL = url
	}
}

// WithModel sets the chat model to use.
func WithModel(model string) Option {
	return func(p *OpenAIProvider) {
		p.model = model
	}
}

// NewOpenAIProvider creates a new OpenAI chat provider.
func NewOpenAIProvider(opts ...Option) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey: os.Getenv("OPENAI_API_KEY"),
		model:  defaultModel,
	}

	for _, opt := range opts {
		opt(p)
	}

	cfg := openai.DefaultConfig(p.apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	p.client = openai.NewClientWithConfig(cfg)
	p.rateLimiter = providers.NewRateLimiter(p.RateLimit())

	return p
}

// Name returns the provider's unique identifier.
func (p *OpenAIProvider) Name() string {
	return "openai-chat"
}

// Type returns the provider type.
func (p *OpenAIProvider) Type() providers.ProviderType {
	return providers.ProviderTypeChat
}

// Available returns true if the provider is configured and ready.
func (p *OpenAIProvider) Available() bool {
	return p.apiKey != ""
}

// RateLimit returns the rate limit configuration.
func (p *OpenAIProvider) RateLimit() providers.RateLimitConfig {
	return providers.RateLimitConfig{
		RequestsPerMinute: 60,
		TokensPerMinute:   150000,
		BurstSize:         10,
	}
}

// ModelName returns the chat model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Stream starts a streaming chat completion.
func (p *OpenAIProvider) Stream(ctx context.Context, messages []providers.ChatMessage, params providers.ChatParams) (providers.ChatStream, error) {
	if !p.Available() {
		return nil, fmt.Errorf("openai chat provider not available; OPENAI_API_KEY not set")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed; %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:            p.model,
		Temperature:      params.Temperature,
		TopP:             params.TopP,
		PresencePenalty:  params.PresencePenalty,
		FrequencyPenalty: params.FrequencyPenalty,
		Stop:             params.StopSequences,
		MaxTokens:        params.MaxTokens,
		Stream:           true,
		StreamOptions:    &openai.StreamOptions{IncludeUsage: true},
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start chat completion stream; %w", err)
	}

	return &openaiStream{inner: stream, model: p.model}, nil
}

// openaiStream adapts the go-openai stream to providers.ChatStream.
type openaiStream struct {
	inner *openai.ChatCompletionStream
	model string
}

// Recv returns the next chunk, or io.EOF when the stream ends.
func (s *openaiStream) Recv() (providers.ChatChunk, error) {
	resp, err := s.inner.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return providers.ChatChunk{}, io.EOF
		}
		return providers.ChatChunk{}, fmt.Errorf("stream receive failed; %w", err)
	}

	chunk := providers.ChatChunk{}
	if len(resp.Choices) > 0 {
		chunk.Content = resp.Choices[0].Delta.Content
	}
	if resp.Usage != nil {
		chunk.Usage = &providers.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
			Model:        s.model,
		}
	}
	return chunk, nil
}

// Close releases the stream.
func (s *openaiStream) Close() error {
	return s.inner.Close()
}

var _ providers.ChatProvider = (*OpenAIProvider)(nil)
var _ providers.ChatStream = (*openaiStream)(nil)
