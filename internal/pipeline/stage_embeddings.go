package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/quillmem/quill/internal/cache"
	"github.com/quillmem/quill/internal/providers"
)

// EmbeddingsHandler generates an embedding vector for every text partition,
// consulting the cache before calling the provider.
type EmbeddingsHandler struct {
	provider providers.EmbeddingsProvider
	cache    cache.EmbeddingsCache
	logger   *slog.Logger
}

// NewEmbeddingsHandler creates the embeddings step handler. A nil cache
// disables caching.
func NewEmbeddingsHandler(provider providers.EmbeddingsProvider, c cache.EmbeddingsCache, logger *slog.Logger) *EmbeddingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingsHandler{provider: provider, cache: c, logger: logger}
}

// StepName returns the step identifier.
func (h *EmbeddingsHandler) StepName() string {
	return StepEmbeddings
}

// Invoke embeds every partition that does not already carry a vector.
// Provider failures are transient; the orchestrator retries and already
// embedded partitions are skipped on re-invocation.
func (h *EmbeddingsHandler) Invoke(ctx context.Context, state *State) (Outcome, error) {
	partitions := state.ArtifactsByKind(ArtifactTextPartition)
	if len(partitions) == 0 {
		state.Log(StepEmbeddings, "no partitions to embed")
		return Success, nil
	}

	model := h.provider.ModelName()

	// Resolve what still needs a provider call: vectors already in the
	// side-band (a retried attempt) or in the cache are reused.
	var pending []*Artifact
	var pendingTexts []string
	cacheHits := 0

	for _, p := range partitions {
		if _, done := state.Context.Embeddings[p.ID]; done {
			continue
		}

		text := h.partitionText(state, p)
		hash := cache.ContentHash(text)

		if h.cache != nil {
			vector, err := h.cache.Get(ctx, model, hash)
			if err == nil {
				h.attach(state, p, vector)
				cacheHits++
				continue
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				h.logger.Warn("embeddings cache read failed",
					"partition", p.Name,
					"error", err)
			}
		}

		pending = append(pending, p)
		pendingTexts = append(pendingTexts, text)
	}

	if cacheHits > 0 {
		state.Log(StepEmbeddings, fmt.Sprintf("%d embeddings served from cache", cacheHits))
	}

	if len(pending) > 0 {
		vectors, err := h.provider.EmbedBatch(ctx, pendingTexts)
		if err != nil {
			state.Log(StepEmbeddings, fmt.Sprintf("embedding generation failed: %v", err))
			return TransientError, fmt.Errorf("failed to generate embeddings; %w", err)
		}

		for i, p := range pending {
			h.attach(state, p, vectors[i])
			if h.cache != nil {
				if err := h.cache.Set(ctx, model, cache.ContentHash(pendingTexts[i]), vectors[i]); err != nil {
					h.logger.Warn("embeddings cache write failed",
						"partition", p.Name,
						"error", err)
				}
			}
		}
	}

	state.Log(StepEmbeddings, fmt.Sprintf("embedded %d partitions (%d from cache)", len(partitions), cacheHits))
	return Success, nil
}

// partitionText returns the text to embed for a partition, substituting a
// placeholder when the chunk text is missing so the record still gets a
// vector.
func (h *EmbeddingsHandler) partitionText(state *State, p *Artifact) string {
	if text, ok := state.Context.ChunkText[p.ID]; ok && text != "" {
		return text
	}
	h.logger.Warn("partition has no chunk text, embedding placeholder", "partition", p.Name)
	return fmt.Sprintf("Sample text content for %s", p.Name)
}

// attach records the vector in the side-band and labels the partition.
func (h *EmbeddingsHandler) attach(state *State, p *Artifact, vector []float32) {
	state.Context.Embeddings[p.ID] = vector
	p.AttachDerived(LabelEmbedding, DerivedFile{
		ParentArtifactID:  p.ID,
		SourcePartitionID: p.ID,
		ContentSHA256:     vectorSHA256(vector),
	})
	state.Touch()
}

// vectorSHA256 hashes the vector's raw little-endian float bits.
func vectorSHA256(vector []float32) string {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

var _ StepHandler = (*EmbeddingsHandler)(nil)
