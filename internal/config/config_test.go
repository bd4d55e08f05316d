package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := Validate(&cfg); err != nil {
		t.Errorf("default config invalid; %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"bad chunking mode", func(c *Config) { c.Pipeline.Chunking.Mode = "clever" }, "pipeline.chunking.mode"},
		{"overlap too large", func(c *Config) { c.Pipeline.Chunking.Overlap = 5000 }, "pipeline.chunking.overlap"},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "acme" }, "embeddings.provider"},
		{"zero dimensions", func(c *Config) { c.Embeddings.Dimensions = 0 }, "embeddings.dimensions"},
		{"empty chat model", func(c *Config) { c.Chat.Model = "" }, "chat.model"},
		{"qdrant bad port", func(c *Config) { c.Qdrant.Enabled = true; c.Qdrant.Port = 0 }, "qdrant.port"},
		{"negative retries", func(c *Config) { c.Pipeline.MaxRetries = -1 }, "pipeline.max_retries"},
		{"empty index", func(c *Config) { c.Search.DefaultIndex = "" }, "search.default_index"},
		{"relevance out of range", func(c *Config) { c.Search.MinRelevance = 1.5 }, "search.min_relevance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention field %s", err, tt.field)
			}
		})
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "broken"},
		{Field: "b", Message: "also broken"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "a: broken") || !strings.Contains(msg, "b: also broken") {
		t.Errorf("message = %q", msg)
	}

	single := ValidationErrors{{Field: "a", Message: "broken"}}
	if single.Error() != "a: broken" {
		t.Errorf("single = %q", single.Error())
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `log_level: debug
pipeline:
  chunking:
    mode: simple
    max_chunk_size: 800
search:
  default_index: notes
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config; %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath; %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Pipeline.Chunking.Mode != "simple" || cfg.Pipeline.Chunking.MaxChunkSize != 800 {
		t.Errorf("chunking = %+v", cfg.Pipeline.Chunking)
	}
	if cfg.Search.DefaultIndex != "notes" {
		t.Errorf("DefaultIndex = %q", cfg.Search.DefaultIndex)
	}
	// Unset fields keep their defaults.
	if cfg.Embeddings.Model != DefaultEmbeddingsModel {
		t.Errorf("Embeddings.Model = %q", cfg.Embeddings.Model)
	}
}

func TestLoadFromPathInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: shouty\n"), 0600); err != nil {
		t.Fatalf("write config; %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := NewDefaultConfig()
	cfg.LogLevel = "warn"
	if err := Write(&cfg, path); err != nil {
		t.Fatalf("Write; %v", err)
	}

	if !ConfigExistsAt(path) {
		t.Error("ConfigExistsAt = false after write")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath; %v", err)
	}
	if loaded.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", loaded.LogLevel)
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("QUILL_TEST_KEY", "from-env")

	c := EmbeddingsConfig{APIKeyEnv: "QUILL_TEST_KEY"}
	if got := c.ResolveAPIKey(); got != "from-env" {
		t.Errorf("ResolveAPIKey = %q", got)
	}

	inline := "inline-key"
	c.APIKey = &inline
	if got := c.ResolveAPIKey(); got != "inline-key" {
		t.Errorf("ResolveAPIKey = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := resolveHomeDir()
	if home == "" {
		t.Skip("no home directory")
	}

	if got := expandHome("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/abs/x.yaml"); got != "/abs/x.yaml" {
		t.Errorf("expandHome altered absolute path: %q", got)
	}
}
