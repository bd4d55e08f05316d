package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultLogFile  = "~/.config/quill/quill.log"

	DefaultExtractorBaseURL = ""
	DefaultExtractorTimeout = 300 // seconds

	DefaultEmbeddingsProvider   = "openai"
	DefaultEmbeddingsModel      = "text-embedding-3-small"
	DefaultEmbeddingsDimensions = 1536
	DefaultEmbeddingsAPIKeyEnv  = "OPENAI_API_KEY"

	DefaultChatModel       = "gpt-4o-mini"
	DefaultChatTemperature = 0.0
	DefaultChatAPIKeyEnv   = "OPENAI_API_KEY"

	DefaultQdrantHost      = "localhost"
	DefaultQdrantPort      = 6334
	DefaultQdrantAPIKeyEnv = "QDRANT_API_KEY"

	DefaultCacheRedisAddr = "localhost:6379"
	DefaultCacheTTLHours  = 720

	DefaultPipelineMaxRetries = 2
	DefaultPipelineBackoffMs  = 200

	DefaultChunkingMode         = "semantic"
	DefaultMaxChunkSize         = 1000
	DefaultChunkOverlap         = 100
	DefaultSemanticMaxChunkSize = 2000
	DefaultMinChunkSize         = 100
	DefaultTitleLevelThreshold  = 2

	DefaultSearchIndex        = "memory"
	DefaultSearchLimit        = 10
	DefaultSearchMinRelevance = 0.0
)

// NewDefaultConfig returns a Config populated with all defaults.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Extractor: ExtractorConfig{
			BaseURL:        DefaultExtractorBaseURL,
			TimeoutSeconds: DefaultExtractorTimeout,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   DefaultEmbeddingsProvider,
			Model:      DefaultEmbeddingsModel,
			Dimensions: DefaultEmbeddingsDimensions,
			APIKeyEnv:  DefaultEmbeddingsAPIKeyEnv,
		},
		Chat: ChatConfig{
			Model:       DefaultChatModel,
			Temperature: DefaultChatTemperature,
			APIKeyEnv:   DefaultChatAPIKeyEnv,
		},
		Qdrant: QdrantConfig{
			Host:      DefaultQdrantHost,
			Port:      DefaultQdrantPort,
			APIKeyEnv: DefaultQdrantAPIKeyEnv,
		},
		Cache: CacheConfig{
			RedisAddr: DefaultCacheRedisAddr,
			TTLHours:  DefaultCacheTTLHours,
		},
		Pipeline: PipelineConfig{
			MaxRetries: DefaultPipelineMaxRetries,
			BackoffMs:  DefaultPipelineBackoffMs,
			Chunking: ChunkingConfig{
				Mode:                 DefaultChunkingMode,
				MaxChunkSize:         DefaultMaxChunkSize,
				Overlap:              DefaultChunkOverlap,
				SemanticMaxChunkSize: DefaultSemanticMaxChunkSize,
				MinChunkSize:         DefaultMinChunkSize,
				TitleLevelThreshold:  DefaultTitleLevelThreshold,
				IncludeTitleContext:  true,
			},
		},
		Search: SearchConfig{
			DefaultIndex: DefaultSearchIndex,
			Limit:        DefaultSearchLimit,
			MinRelevance: DefaultSearchMinRelevance,
			Rerank:       true,
		},
	}
}

// setViperDefaults registers all default configuration values with a viper instance.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_file", DefaultLogFile)

	// Extractor defaults
	v.SetDefault("extractor.base_url", DefaultExtractorBaseURL)
	v.SetDefault("extractor.timeout_seconds", DefaultExtractorTimeout)

	// Embeddings defaults
	v.SetDefault("embeddings.provider", DefaultEmbeddingsProvider)
	v.SetDefault("embeddings.model", DefaultEmbeddingsModel)
	v.SetDefault("embeddings.dimensions", DefaultEmbeddingsDimensions)
	v.SetDefault("embeddings.api_key_env", DefaultEmbeddingsAPIKeyEnv)

	// Chat defaults
	v.SetDefault("chat.model", DefaultChatModel)
	v.SetDefault("chat.temperature", DefaultChatTemperature)
	v.SetDefault("chat.api_key_env", DefaultChatAPIKeyEnv)

	// Qdrant defaults
	v.SetDefault("qdrant.enabled", false)
	v.SetDefault("qdrant.host", DefaultQdrantHost)
	v.SetDefault("qdrant.port", DefaultQdrantPort)
	v.SetDefault("qdrant.api_key_env", DefaultQdrantAPIKeyEnv)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", DefaultCacheRedisAddr)
	v.SetDefault("cache.ttl_hours", DefaultCacheTTLHours)

	// Pipeline defaults
	v.SetDefault("pipeline.max_retries", DefaultPipelineMaxRetries)
	v.SetDefault("pipeline.backoff_ms", DefaultPipelineBackoffMs)
	v.SetDefault("pipeline.chunking.mode", DefaultChunkingMode)
	v.SetDefault("pipeline.chunking.max_chunk_size", DefaultMaxChunkSize)
	v.SetDefault("pipeline.chunking.overlap", DefaultChunkOverlap)
	v.SetDefault("pipeline.chunking.semantic_max_chunk_size", DefaultSemanticMaxChunkSize)
	v.SetDefault("pipeline.chunking.min_chunk_size", DefaultMinChunkSize)
	v.SetDefault("pipeline.chunking.title_level_threshold", DefaultTitleLevelThreshold)
	v.SetDefault("pipeline.chunking.include_title_context", true)

	// Search defaults
	v.SetDefault("search.default_index", DefaultSearchIndex)
	v.SetDefault("search.limit", DefaultSearchLimit)
	v.SetDefault("search.min_relevance", DefaultSearchMinRelevance)
	v.SetDefault("search.rerank", true)
}
