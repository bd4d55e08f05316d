// Package config defines the application configuration, its defaults, and
// the loading and validation logic around it.
package config

import "os"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel   string           `yaml:"log_level" mapstructure:"log_level"`
	LogFile    string           `yaml:"log_file" mapstructure:"log_file"`
	Extractor  ExtractorConfig  `yaml:"extractor" mapstructure:"extractor"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" mapstructure:"embeddings"`
	Chat       ChatConfig       `yaml:"chat" mapstructure:"chat"`
	Qdrant     QdrantConfig     `yaml:"qdrant" mapstructure:"qdrant"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
}

// ExtractorConfig holds the document conversion service configuration.
type ExtractorConfig struct {
	// BaseURL of the markdown extractor service. Empty disables the
	// service; ingestion then relies on the fallback extraction path.
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// EmbeddingsConfig holds embeddings provider configuration.
type EmbeddingsConfig struct {
	Provider   string  `yaml:"provider" mapstructure:"provider"`
	Model      string  `yaml:"model" mapstructure:"model"`
	Dimensions int     `yaml:"dimensions" mapstructure:"dimensions"`
	BaseURL    string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey     *string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv  string  `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// ResolveAPIKey returns the API key from config or falls back to environment variable.
func (c *EmbeddingsConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// ChatConfig holds chat completion provider configuration.
type ChatConfig struct {
	Model            string   `yaml:"model" mapstructure:"model"`
	BaseURL          string   `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Temperature      float32  `yaml:"temperature" mapstructure:"temperature"`
	TopP             float32  `yaml:"top_p" mapstructure:"top_p"`
	PresencePenalty  float32  `yaml:"presence_penalty" mapstructure:"presence_penalty"`
	FrequencyPenalty float32  `yaml:"frequency_penalty" mapstructure:"frequency_penalty"`
	StopSequences    []string `yaml:"stop_sequences,omitempty" mapstructure:"stop_sequences"`
	MaxTokens        int      `yaml:"max_tokens" mapstructure:"max_tokens"`
	APIKey           *string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIKeyEnv        string   `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// ResolveAPIKey returns the API key from config or falls back to environment variable.
func (c *ChatConfig) ResolveAPIKey() string {
	if c.APIKey != nil && *c.APIKey != "" {
		return *c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// QdrantConfig holds vector store connection configuration. When disabled,
// records are kept in an in-process store that does not survive restarts.
type QdrantConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Host      string `yaml:"host" mapstructure:"host"`
	Port      int    `yaml:"port" mapstructure:"port"`
	UseTLS    bool   `yaml:"use_tls" mapstructure:"use_tls"`
	APIKeyEnv string `yaml:"api_key_env" mapstructure:"api_key_env"`
}

// ResolveAPIKey returns the API key from the environment.
func (c *QdrantConfig) ResolveAPIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// CacheConfig holds the embeddings cache configuration.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`
	TTLHours  int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// PipelineConfig holds ingestion pipeline configuration.
type PipelineConfig struct {
	MaxRetries int            `yaml:"max_retries" mapstructure:"max_retries"`
	BackoffMs  int            `yaml:"backoff_ms" mapstructure:"backoff_ms"`
	Chunking   ChunkingConfig `yaml:"chunking" mapstructure:"chunking"`
}

// ChunkingConfig holds partitioning configuration.
type ChunkingConfig struct {
	// Mode selects the chunker: "simple" or "semantic".
	Mode                 string `yaml:"mode" mapstructure:"mode"`
	MaxChunkSize         int    `yaml:"max_chunk_size" mapstructure:"max_chunk_size"`
	Overlap              int    `yaml:"overlap" mapstructure:"overlap"`
	SemanticMaxChunkSize int    `yaml:"semantic_max_chunk_size" mapstructure:"semantic_max_chunk_size"`
	MinChunkSize         int    `yaml:"min_chunk_size" mapstructure:"min_chunk_size"`
	TitleLevelThreshold  int    `yaml:"title_level_threshold" mapstructure:"title_level_threshold"`
	IncludeTitleContext  bool   `yaml:"include_title_context" mapstructure:"include_title_context"`
}

// SearchConfig holds query surface configuration.
type SearchConfig struct {
	DefaultIndex string  `yaml:"default_index" mapstructure:"default_index"`
	Limit        int     `yaml:"limit" mapstructure:"limit"`
	MinRelevance float32 `yaml:"min_relevance" mapstructure:"min_relevance"`
	Rerank       bool    `yaml:"rerank" mapstructure:"rerank"`

	// EmptyAnswer is the reply used when no stored facts answer the
	// question. Empty means the built-in default.
	EmptyAnswer string `yaml:"empty_answer,omitempty" mapstructure:"empty_answer"`

	// FactTemplate formats one citation as a grounding fact. Placeholders:
	// {{$content}}, {{$source}}, {{$relevance}}, {{$memoryId}}. Empty means
	// the built-in default.
	FactTemplate string `yaml:"fact_template,omitempty" mapstructure:"fact_template"`
}
