package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// validLogLevels lists recognized log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validEmbeddingsProviders lists recognized embeddings providers.
var validEmbeddingsProviders = map[string]bool{
	"openai": true,
}

// validChunkingModes lists recognized chunking modes.
var validChunkingModes = map[string]bool{
	"simple":   true,
	"semantic": true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.LogLevel),
		})
	}

	if cfg.Extractor.TimeoutSeconds < 1 {
		errs = append(errs, ValidationError{
			Field:   "extractor.timeout_seconds",
			Message: fmt.Sprintf("must be at least 1 second, got %d", cfg.Extractor.TimeoutSeconds),
		})
	}

	if !validEmbeddingsProviders[cfg.Embeddings.Provider] {
		errs = append(errs, ValidationError{
			Field:   "embeddings.provider",
			Message: fmt.Sprintf("unrecognized provider %q", cfg.Embeddings.Provider),
		})
	}
	if cfg.Embeddings.Dimensions < 1 {
		errs = append(errs, ValidationError{
			Field:   "embeddings.dimensions",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Embeddings.Dimensions),
		})
	}
	if cfg.Embeddings.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embeddings.model",
			Message: "must not be empty",
		})
	}

	if cfg.Chat.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "chat.model",
			Message: "must not be empty",
		})
	}

	if cfg.Qdrant.Enabled {
		if cfg.Qdrant.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "qdrant.host",
				Message: "must not be empty when qdrant is enabled",
			})
		}
		if cfg.Qdrant.Port < 1 || cfg.Qdrant.Port > 65535 {
			errs = append(errs, ValidationError{
				Field:   "qdrant.port",
				Message: fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Qdrant.Port),
			})
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisAddr == "" {
		errs = append(errs, ValidationError{
			Field:   "cache.redis_addr",
			Message: "must not be empty when the cache is enabled",
		})
	}

	if cfg.Pipeline.MaxRetries < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.max_retries",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Pipeline.MaxRetries),
		})
	}
	if cfg.Pipeline.BackoffMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.backoff_ms",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Pipeline.BackoffMs),
		})
	}

	errs = append(errs, validateChunking(&cfg.Pipeline.Chunking)...)

	if cfg.Search.DefaultIndex == "" {
		errs = append(errs, ValidationError{
			Field:   "search.default_index",
			Message: "must not be empty",
		})
	}
	if cfg.Search.Limit < 1 {
		errs = append(errs, ValidationError{
			Field:   "search.limit",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Search.Limit),
		})
	}
	if cfg.Search.MinRelevance < 0 || cfg.Search.MinRelevance > 1 {
		errs = append(errs, ValidationError{
			Field:   "search.min_relevance",
			Message: fmt.Sprintf("must be between 0 and 1, got %f", cfg.Search.MinRelevance),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateChunking checks the partitioning configuration.
func validateChunking(c *ChunkingConfig) ValidationErrors {
	var errs ValidationErrors

	if !validChunkingModes[c.Mode] {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.mode",
			Message: fmt.Sprintf("must be simple or semantic, got %q", c.Mode),
		})
	}
	if c.MaxChunkSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.max_chunk_size",
			Message: fmt.Sprintf("must be positive, got %d", c.MaxChunkSize),
		})
	}
	if c.Overlap < 0 || c.Overlap >= c.MaxChunkSize {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.overlap",
			Message: fmt.Sprintf("must be non-negative and smaller than max_chunk_size, got %d", c.Overlap),
		})
	}
	if c.SemanticMaxChunkSize < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.semantic_max_chunk_size",
			Message: fmt.Sprintf("must be positive, got %d", c.SemanticMaxChunkSize),
		})
	}
	if c.MinChunkSize < 0 || c.MinChunkSize > c.SemanticMaxChunkSize {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.min_chunk_size",
			Message: fmt.Sprintf("must be between 0 and semantic_max_chunk_size, got %d", c.MinChunkSize),
		})
	}
	if c.TitleLevelThreshold < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.chunking.title_level_threshold",
			Message: fmt.Sprintf("must be at least 1, got %d", c.TitleLevelThreshold),
		})
	}

	return errs
}
