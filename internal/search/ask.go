package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/quillmem/quill/internal/metrics"
	"github.com/quillmem/quill/internal/prompts"
	"github.com/quillmem/quill/internal/providers"
)

const (
	// NoAnswerText is the default reply when the facts are insufficient,
	// and the engine's reply when retrieval finds nothing.
	NoAnswerText = "INFO NOT FOUND"

	// DefaultFactTemplate renders one citation as a grounding fact.
	DefaultFactTemplate = "==== [File:{{$source}};Relevance:{{$relevance}}] ====\n{{$content}}"

	// noStreamText is emitted when the chat stream ends without content.
	noStreamText = "No response received from chat completion service."
)

// AskRequest is one grounded question.
type AskRequest struct {
	Index        string
	Question     string
	Filters      map[string]any
	Limit        int
	MinRelevance float32
}

// Answer is one increment of a streamed reply. The first increment carries
// the supporting citations; the last may carry token usage.
type Answer struct {
	// Text is the answer delta.
	Text string

	// NoResult marks an answer produced without grounding facts or
	// without model output.
	NoResult bool

	// Sources lists the citations the answer is grounded on. Set on the
	// first increment only.
	Sources []Citation

	// Usage is the provider's token accounting, set when reported.
	Usage *providers.TokenUsage
}

// AskEngine answers questions grounded on search results.
type AskEngine struct {
	engine       *Engine
	chat         providers.ChatProvider
	prompts      *prompts.Provider
	params       providers.ChatParams
	noAnswer     string
	factTemplate string
	logger       *slog.Logger
}

// AskOption configures the AskEngine.
type AskOption func(*AskEngine)

// WithChatParams overrides the chat execution parameters.
func WithChatParams(params providers.ChatParams) AskOption {
	return func(e *AskEngine) {
		e.params = params
	}
}

// WithNoAnswerText overrides the reply used when no answer is found.
func WithNoAnswerText(text string) AskOption {
	return func(e *AskEngine) {
		if text != "" {
			e.noAnswer = text
		}
	}
}

// WithFactTemplate overrides the grounding fact template.
func WithFactTemplate(template string) AskOption {
	return func(e *AskEngine) {
		if template != "" {
			e.factTemplate = template
		}
	}
}

// WithAskLogger sets the engine logger.
func WithAskLogger(l *slog.Logger) AskOption {
	return func(e *AskEngine) {
		e.logger = l
	}
}

// NewAskEngine creates an ask engine over a search engine and a chat
// provider.
func NewAskEngine(engine *Engine, chat providers.ChatProvider, promptProvider *prompts.Provider, opts ...AskOption) *AskEngine {
	e := &AskEngine{
		engine:       engine,
		chat:         chat,
		prompts:      promptProvider,
		params:       providers.ChatParams{Temperature: 0},
		noAnswer:     NoAnswerText,
		factTemplate: DefaultFactTemplate,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AskStream answers the question as a stream of increments. The channel is
// closed when the answer is complete.
func (e *AskEngine) AskStream(ctx context.Context, req AskRequest) (<-chan Answer, error) {
	if req.Question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrInvalidArgument)
	}

	results, err := e.engine.Search(ctx, SearchRequest{
		Index:        req.Index,
		Query:        req.Question,
		Filters:      req.Filters,
		Limit:        req.Limit,
		MinRelevance: req.MinRelevance,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Answer, 1)

	if results.Empty() {
		out <- Answer{Text: e.noAnswer, NoResult: true}
		close(out)
		metrics.AskCompleted("empty")
		return out, nil
	}

	prompt, err := e.prompts.Render(prompts.AskWithFacts, map[string]string{
		"facts":    e.formatFacts(results.Citations),
		"input":    req.Question,
		"notFound": e.noAnswer,
	})
	if err != nil {
		close(out)
		metrics.AskCompleted("error")
		return nil, fmt.Errorf("failed to render prompt; %w", err)
	}

	stream, err := e.chat.Stream(ctx, []providers.ChatMessage{
		{Role: providers.RoleUser, Content: prompt},
	}, e.params)
	if err != nil {
		close(out)
		metrics.AskCompleted("error")
		return nil, fmt.Errorf("failed to start chat completion; %w", err)
	}

	go e.pump(stream, results.Citations, out)
	return out, nil
}

// pump forwards stream chunks to the answer channel.
func (e *AskEngine) pump(stream providers.ChatStream, sources []Citation, out chan<- Answer) {
	defer close(out)
	defer stream.Close()

	var usage *providers.TokenUsage
	sent := false

	for {
		chunk, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.logger.Error("chat stream failed", "error", err)
				metrics.AskCompleted("error")
			}
			break
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if chunk.Content == "" {
			continue
		}

		answer := Answer{Text: chunk.Content}
		if !sent {
			answer.Sources = sources
			sent = true
		}
		out <- answer
	}

	if !sent {
		out <- Answer{Text: noStreamText, NoResult: true, Sources: sources, Usage: usage}
		metrics.AskCompleted("empty")
		return
	}
	if usage != nil {
		out <- Answer{Usage: usage}
	}
	metrics.AskCompleted("ok")
}

// Ask answers the question in one shot by draining the stream.
func (e *AskEngine) Ask(ctx context.Context, req AskRequest) (Answer, error) {
	stream, err := e.AskStream(ctx, req)
	if err != nil {
		return Answer{}, err
	}

	var merged Answer
	var text strings.Builder
	for answer := range stream {
		text.WriteString(answer.Text)
		if answer.Sources != nil {
			merged.Sources = answer.Sources
		}
		if answer.Usage != nil {
			merged.Usage = answer.Usage
		}
		if answer.NoResult {
			merged.NoResult = true
		}
	}

	merged.Text = text.String()
	if strings.EqualFold(strings.TrimSpace(merged.Text), e.noAnswer) {
		merged.NoResult = true
	}
	return merged, nil
}

// formatFacts renders citations into the prompt's fact block, one
// substituted fact template per citation, blank-line separated.
func (e *AskEngine) formatFacts(citations []Citation) string {
	facts := make([]string, 0, len(citations))
	for _, c := range citations {
		source := c.Source
		if source == "" {
			source = c.DocumentID
		}
		facts = append(facts, prompts.Substitute(e.factTemplate, map[string]string{
			"content":   c.Content,
			"source":    source,
			"relevance": fmt.Sprintf("%.3f", c.RelevanceScore),
			"memoryId":  c.ID,
		}))
	}
	return strings.Join(facts, "\n\n") + "\n"
}
