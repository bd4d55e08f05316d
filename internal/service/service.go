// Package service assembles the configured components into the application
// facade the commands call: ingestion, search, and grounded answers.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillmem/quill/internal/cache"
	"github.com/quillmem/quill/internal/chunkers"
	"github.com/quillmem/quill/internal/config"
	"github.com/quillmem/quill/internal/extractor"
	"github.com/quillmem/quill/internal/pipeline"
	"github.com/quillmem/quill/internal/prompts"
	"github.com/quillmem/quill/internal/providers"
	"github.com/quillmem/quill/internal/providers/chat"
	"github.com/quillmem/quill/internal/providers/embeddings"
	"github.com/quillmem/quill/internal/search"
	"github.com/quillmem/quill/internal/vectorstore"
)

// Service is the application facade over the pipeline and the query
// engines.
type Service struct {
	cfg       *config.Config
	store     vectorstore.Store
	embedder  providers.EmbeddingsProvider
	chat      providers.ChatProvider
	cache     cache.EmbeddingsCache
	extractor *extractor.Client
	engine    *search.Engine
	ask       *search.AskEngine
	logger    *slog.Logger
}

// Deps carries the service's collaborators. Zero fields fall back to
// config-driven construction in New; tests fill them directly via Assemble.
type Deps struct {
	Store     vectorstore.Store
	Embedder  providers.EmbeddingsProvider
	Chat      providers.ChatProvider
	Cache     cache.EmbeddingsCache
	Extractor *extractor.Client
}

// New builds a fully wired service from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	deps := Deps{}

	if cfg.Qdrant.Enabled {
		store, err := vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.ResolveAPIKey(),
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build vector store; %w", err)
		}
		deps.Store = store
	} else {
		deps.Store = vectorstore.NewMemoryStore()
	}

	embedOpts := []embeddings.Option{
		embeddings.WithAPIKey(cfg.Embeddings.ResolveAPIKey()),
		embeddings.WithModel(cfg.Embeddings.Model),
		embeddings.WithDimensions(cfg.Embeddings.Dimensions),
	}
	if cfg.Embeddings.BaseURL != "" {
		embedOpts = append(embedOpts, embeddings.WithBaseURL(cfg.Embeddings.BaseURL))
	}
	deps.Embedder = embeddings.NewOpenAIProvider(embedOpts...)

	chatOpts := []chat.Option{
		chat.WithAPIKey(cfg.Chat.ResolveAPIKey()),
		chat.WithModel(cfg.Chat.Model),
	}
	if cfg.Chat.BaseURL != "" {
		chatOpts = append(chatOpts, chat.WithBaseURL(cfg.Chat.BaseURL))
	}
	deps.Chat = chat.NewOpenAIProvider(chatOpts...)

	if cfg.Cache.Enabled {
		deps.Cache = cache.NewRedisCache(cfg.Cache.RedisAddr,
			cache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour))
	}

	if cfg.Extractor.BaseURL != "" {
		deps.Extractor = extractor.NewClient(cfg.Extractor.BaseURL,
			extractor.WithTimeout(time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second))
	}

	return Assemble(cfg, deps, logger), nil
}

// Assemble wires a service from explicit collaborators.
func Assemble(cfg *config.Config, deps Deps, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	engineOpts := []search.EngineOption{
		search.WithDefaultIndex(cfg.Search.DefaultIndex),
		search.WithDefaultLimit(cfg.Search.Limit),
		search.WithLogger(logger),
	}
	if cfg.Search.Rerank {
		engineOpts = append(engineOpts, search.WithReranker(search.NewLexicalReranker()))
	}
	engine := search.NewEngine(deps.Store, deps.Embedder, engineOpts...)

	askEngine := search.NewAskEngine(engine, deps.Chat, promptProvider(),
		search.WithChatParams(providers.ChatParams{
			Temperature:      cfg.Chat.Temperature,
			TopP:             cfg.Chat.TopP,
			PresencePenalty:  cfg.Chat.PresencePenalty,
			FrequencyPenalty: cfg.Chat.FrequencyPenalty,
			StopSequences:    cfg.Chat.StopSequences,
			MaxTokens:        cfg.Chat.MaxTokens,
		}),
		search.WithNoAnswerText(cfg.Search.EmptyAnswer),
		search.WithFactTemplate(cfg.Search.FactTemplate),
		search.WithAskLogger(logger))

	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		embedder:  deps.Embedder,
		chat:      deps.Chat,
		cache:     deps.Cache,
		extractor: deps.Extractor,
		engine:    engine,
		ask:       askEngine,
		logger:    logger,
	}
}

// IngestRequest is one document to ingest.
type IngestRequest struct {
	// Index is the target collection. Empty means the configured default.
	Index string

	FileName    string
	ContentType string
	Bytes       []byte

	Tags map[string]string
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	DocumentID  string
	ExecutionID string
	Index       string
	Partitions  int
}

// Ingest runs the full pipeline for one document.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	if req.FileName == "" {
		return IngestResult{}, fmt.Errorf("%w: file name must not be empty", search.ErrInvalidArgument)
	}
	if len(req.Bytes) == 0 {
		return IngestResult{}, fmt.Errorf("%w: document is empty", search.ErrInvalidArgument)
	}

	index := req.Index
	if index == "" {
		index = s.cfg.Search.DefaultIndex
	}

	state := pipeline.NewState(index)
	for _, step := range pipeline.DefaultSteps() {
		state.Then(step)
	}
	state.AddUpload(pipeline.UploadedFile{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Bytes:       req.Bytes,
	})
	for k, v := range req.Tags {
		state.Tags[k] = v
	}

	if err := s.orchestrator().Run(ctx, state); err != nil {
		return IngestResult{}, err
	}

	return IngestResult{
		DocumentID:  state.DocumentID,
		ExecutionID: state.ExecutionID,
		Index:       index,
		Partitions:  len(state.ArtifactsByKind(pipeline.ArtifactTextPartition)),
	}, nil
}

// IngestURL fetches a remote document through the extractor service and
// ingests the converted markdown.
func (s *Service) IngestURL(ctx context.Context, index, rawURL string, tags map[string]string) (IngestResult, error) {
	if s.extractor == nil {
		return IngestResult{}, fmt.Errorf("url ingestion requires the extractor service; set extractor.base_url")
	}

	markdown, err := s.extractor.ConvertURL(ctx, rawURL)
	if err != nil {
		return IngestResult{}, fmt.Errorf("failed to convert url; %w", err)
	}

	return s.Ingest(ctx, IngestRequest{
		Index:       index,
		FileName:    urlFileName(rawURL),
		ContentType: "text/markdown",
		Bytes:       []byte(markdown),
		Tags:        tags,
	})
}

// Search runs a similarity search.
func (s *Service) Search(ctx context.Context, req search.SearchRequest) (search.SearchResults, error) {
	return s.engine.Search(ctx, req)
}

// Ask answers a question grounded on stored memories.
func (s *Service) Ask(ctx context.Context, req search.AskRequest) (search.Answer, error) {
	return s.ask.Ask(ctx, req)
}

// AskStream answers a question as a stream of increments.
func (s *Service) AskStream(ctx context.Context, req search.AskRequest) (<-chan search.Answer, error) {
	return s.ask.AskStream(ctx, req)
}

// ListIndexes returns the names of all stored collections.
func (s *Service) ListIndexes(ctx context.Context) ([]string, error) {
	return s.store.ListCollections(ctx)
}

// orchestrator builds the configured step pipeline.
func (s *Service) orchestrator() *pipeline.Orchestrator {
	handlers := []pipeline.StepHandler{
		pipeline.NewExtractionHandler(s.extractor, s.logger),
		pipeline.NewChunkingHandler(s.chunker(), s.chunkMode(), s.logger),
		pipeline.NewEmbeddingsHandler(s.embedder, s.cache, s.logger),
		pipeline.NewSaveHandler(s.store, s.logger),
	}
	return pipeline.NewOrchestrator(handlers,
		pipeline.WithMaxRetries(s.cfg.Pipeline.MaxRetries),
		pipeline.WithBackoffBase(time.Duration(s.cfg.Pipeline.BackoffMs)*time.Millisecond),
		pipeline.WithLogger(s.logger))
}

// chunker builds the configured chunker.
func (s *Service) chunker() pipeline.Chunker {
	cc := s.cfg.Pipeline.Chunking
	if cc.Mode == pipeline.ChunkModeSimple {
		opts := chunkers.DefaultSimpleOptions()
		opts.MaxChunkSize = cc.MaxChunkSize
		opts.TextOverlap = cc.Overlap
		return chunkers.NewSimpleChunker(opts)
	}

	opts := chunkers.DefaultSemanticOptions()
	opts.MaxChunkSize = cc.SemanticMaxChunkSize
	opts.MinChunkSize = cc.MinChunkSize
	opts.TitleLevelThreshold = cc.TitleLevelThreshold
	opts.IncludeTitleContext = cc.IncludeTitleContext
	return chunkers.NewSemanticChunker(opts)
}

// chunkMode normalizes the configured mode to a pipeline constant.
func (s *Service) chunkMode() string {
	if s.cfg.Pipeline.Chunking.Mode == pipeline.ChunkModeSimple {
		return pipeline.ChunkModeSimple
	}
	return pipeline.ChunkModeSemantic
}

// promptProvider resolves templates, honoring overrides dropped into the
// config directory.
func promptProvider() *prompts.Provider {
	dir := config.ConfigDir()
	if dir == "" {
		return prompts.NewProvider()
	}
	return prompts.NewProvider(prompts.WithOverrideDir(filepath.Join(dir, "prompts")))
}

// urlFileName derives a stable markdown file name from a URL.
func urlFileName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "page.md"
	}

	name := parsed.Host
	if base := path.Base(parsed.Path); base != "" && base != "/" && base != "." {
		name += "-" + base
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
	return strings.TrimSuffix(name, ".md") + ".md"
}
