// Package search implements the query surface over the vector store:
// similarity search with citations and grounded, streamed answers.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quillmem/quill/internal/metrics"
	"github.com/quillmem/quill/internal/providers"
	"github.com/quillmem/quill/internal/vectorstore"
)

// ErrInvalidArgument is returned for requests that fail validation.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultLimit bounds searches that do not specify one.
const DefaultLimit = 10

// SearchRequest is one similarity search.
type SearchRequest struct {
	// Index is the collection to search. Empty means the default index.
	Index string

	// Query is the natural-language query text.
	Query string

	// Filters restrict results by payload field equality. Common aliases
	// (documentId, DocumentId) are normalized to their payload names.
	Filters map[string]any

	// Limit caps the number of citations. Zero means the engine's
	// configured default.
	Limit int

	// MinRelevance drops citations scoring below the threshold.
	MinRelevance float32
}

// Citation is one search hit with enough context to attribute it.
type Citation struct {
	ID             string
	DocumentID     string
	Content        string
	Source         string
	Title          string
	TitleHierarchy []string
	RelevanceScore float32
}

// SearchResults is the outcome of one search.
type SearchResults struct {
	Query     string
	Citations []Citation
}

// Empty reports whether the search matched nothing.
func (r SearchResults) Empty() bool {
	return len(r.Citations) == 0
}

// Reranker reorders citations after retrieval.
type Reranker interface {
	Rerank(query string, citations []Citation) []Citation
}

// Engine executes searches by embedding the query and scanning the vector
// store.
type Engine struct {
	store    vectorstore.Store
	embedder providers.EmbeddingsProvider
	reranker Reranker
	index    string
	limit    int
	logger   *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithReranker adds a post-retrieval reranking pass.
func WithReranker(r Reranker) EngineOption {
	return func(e *Engine) {
		e.reranker = r
	}
}

// WithDefaultIndex sets the collection used when a request names none.
func WithDefaultIndex(index string) EngineOption {
	return func(e *Engine) {
		e.index = index
	}
}

// WithDefaultLimit sets the result cap used when a request passes zero.
func WithDefaultLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a search engine.
func NewEngine(store vectorstore.Store, embedder providers.EmbeddingsProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		embedder: embedder,
		index:    "memory",
		limit:    DefaultLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search embeds the query and returns the nearest records as citations.
// Backend failures are absorbed: the engine logs them and returns empty
// results, so a degraded store never breaks callers.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (SearchResults, error) {
	if req.Query == "" {
		return SearchResults{}, fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	}

	results := SearchResults{Query: req.Query}
	index := req.Index
	if index == "" {
		index = e.index
	}
	limit := req.Limit
	if limit <= 0 {
		limit = e.limit
	}

	vector, err := e.embedder.Embed(ctx, req.Query)
	if err != nil {
		e.logger.Error("query embedding failed", "index", index, "error", err)
		metrics.SearchCompleted("error")
		return results, nil
	}

	hits, err := e.store.Search(ctx, index, vector, vectorstore.SearchParams{
		Limit:    limit,
		MinScore: req.MinRelevance,
		Filter:   normalizeFilters(req.Filters),
	})
	if err != nil {
		e.logger.Error("vector store search failed", "index", index, "error", err)
		metrics.SearchCompleted("error")
		return results, nil
	}

	for _, hit := range hits {
		source := hit.Record.FileName
		if source == "" {
			source = hit.Record.DocumentID
		}
		results.Citations = append(results.Citations, Citation{
			ID:             hit.Record.ID,
			DocumentID:     hit.Record.DocumentID,
			Content:        hit.Record.Text,
			Source:         source,
			Title:          hit.Record.Title,
			TitleHierarchy: hit.Record.TitleHierarchy,
			RelevanceScore: hit.Score,
		})
	}

	if e.reranker != nil {
		results.Citations = e.reranker.Rerank(req.Query, results.Citations)
	}

	if results.Empty() {
		metrics.SearchCompleted("empty")
	} else {
		metrics.SearchCompleted("ok")
	}
	return results, nil
}

// filterAliases maps accepted filter spellings to payload field names.
var filterAliases = map[string]string{
	"documentId":   "document_id",
	"DocumentId":   "document_id",
	"document_id":  "document_id",
	"executionId":  "execution_id",
	"ExecutionId":  "execution_id",
	"execution_id": "execution_id",
	"index":        "index",
	"Index":        "index",
	"fileName":     "file_name",
	"FileName":     "file_name",
	"filename":     "file_name",
	"file_name":    "file_name",
	"title":        "title",
}

// normalizeFilters translates request filters into store payload filters.
// Unrecognized keys pass through as tag filters.
func normalizeFilters(filters map[string]any) vectorstore.Filter {
	if len(filters) == 0 {
		return nil
	}
	out := make(vectorstore.Filter, len(filters))
	for key, value := range filters {
		if field, ok := filterAliases[key]; ok {
			out[field] = value
			continue
		}
		out["tag_"+key] = value
	}
	return out
}
