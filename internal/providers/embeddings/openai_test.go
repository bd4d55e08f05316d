package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProviderDefaults(t *testing.T) {
	p := NewOpenAIProvider(WithAPIKey("test-key"))

	if p.Name() != "openai-embeddings" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.ModelName() != "text-embedding-3-small" {
		t.Errorf("ModelName() = %q", p.ModelName())
	}
	if p.Dimensions() != 1536 {
		t.Errorf("Dimensions() = %d", p.Dimensions())
	}
	if !p.Available() {
		t.Error("Available() = false with key set")
	}
}

func TestOpenAIProviderNotAvailable(t *testing.T) {
	p := NewOpenAIProvider(WithAPIKey(""))

	if p.Available() {
		t.Error("Available() = true without key")
	}
	if _, err := p.Embed(context.Background(), "hello"); err == nil {
		t.Error("Embed succeeded without key")
	}
}

func TestEmbedBatch(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request; %v", err)
		}
		if len(req.Input) != 2 {
			t.Fatalf("input length = %d", len(req.Input))
		}

		// Return the entries out of order; index is authoritative.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.3, 0.4}, "index": 1},
				{"embedding": []float64{0.1, 0.2}, "index": 0},
			},
			"usage": map[string]int{"prompt_tokens": 4, "total_tokens": 4},
		})
	})

	p := NewOpenAIProvider(WithAPIKey("test-key"), WithBaseURL(srv.URL), WithDimensions(2))
	vectors, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch returned error; %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not reordered by index: %v", vectors)
	}
}

func TestEmbedSingle(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float64{0.5, 0.6, 0.7}, "index": 0},
			},
		})
	})

	p := NewOpenAIProvider(WithAPIKey("test-key"), WithBaseURL(srv.URL))
	vec, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed returned error; %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("vector length = %d", len(vec))
	}
}

func TestEmbedBatchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "api error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
			},
		},
		{
			name: "count mismatch",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"data": []map[string]any{},
				})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			p := NewOpenAIProvider(WithAPIKey("test-key"), WithBaseURL(srv.URL))
			if _, err := p.EmbedBatch(context.Background(), []string{"x"}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
