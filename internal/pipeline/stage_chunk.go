package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/quillmem/quill/internal/chunkers"
)

// Chunker splits extracted text into partitions.
type Chunker interface {
	Chunk(text string) []chunkers.Chunk
}

// Chunking modes; the mode names the partition artifacts.
const (
	ChunkModeSimple   = "simple"
	ChunkModeSemantic = "semantic"
)

// ChunkingHandler partitions each extracted-text artifact into chunk
// artifacts sized for the embedding model.
type ChunkingHandler struct {
	chunker Chunker
	mode    string
	logger  *slog.Logger
}

// NewChunkingHandler creates the chunking step handler. mode must be
// ChunkModeSimple or ChunkModeSemantic and controls partition naming.
func NewChunkingHandler(chunker Chunker, mode string, logger *slog.Logger) *ChunkingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChunkingHandler{chunker: chunker, mode: mode, logger: logger}
}

// StepName returns the step identifier.
func (h *ChunkingHandler) StepName() string {
	return StepChunking
}

// Invoke chunks every extracted-text artifact that has not been partitioned
// yet.
func (h *ChunkingHandler) Invoke(ctx context.Context, state *State) (Outcome, error) {
	parents := state.ArtifactsByKind(ArtifactExtractedText)
	if len(parents) == 0 {
		state.Log(StepChunking, "no extracted text to chunk")
		return Success, nil
	}

	existing := existingArtifactIDs(state)
	ordinal := 0

	for _, parent := range parents {
		if err := ctx.Err(); err != nil {
			return TransientError, err
		}

		text, ok := state.Context.ExtractedText[parent.ID]
		if !ok || text == "" {
			state.Log(StepChunking, fmt.Sprintf("no extracted text for %s, skipping", parent.Name))
			h.logger.Warn("no extracted text for artifact",
				"artifact", parent.Name,
				"document_id", state.DocumentID)
			continue
		}

		chunks := h.chunker.Chunk(text)
		if len(chunks) == 0 {
			state.Log(StepChunking, fmt.Sprintf("chunker produced no partitions for %s", parent.Name))
			h.logger.Warn("chunker produced no partitions",
				"artifact", parent.Name,
				"document_id", state.DocumentID)
			continue
		}

		for _, chunk := range chunks {
			name := h.partitionName(parent.Name, chunk.Index)
			id := artifactID(state.ExecutionID, StepChunking, ordinal, name)
			ordinal++
			if existing[id] {
				continue
			}

			sum := sha256.Sum256([]byte(chunk.Content))
			artifact := &Artifact{
				ID:              id,
				Name:            name,
				Size:            int64(len(chunk.Content)),
				ContentType:     "text/plain",
				Kind:            ArtifactTextPartition,
				PartitionNumber: chunk.Index,
				SectionNumber:   parent.SectionNumber,
			}
			artifact.AttachDerived(LabelChunkText, DerivedFile{
				ParentArtifactID:  id,
				SourcePartitionID: parent.ID,
				ContentSHA256:     hex.EncodeToString(sum[:]),
			})

			state.Context.ChunkText[id] = chunk.Content
			if h.mode == ChunkModeSemantic {
				state.Context.ChunkMetadata[id] = chunk.Metadata
			}
			state.AddArtifact(artifact)
		}

		state.Log(StepChunking, fmt.Sprintf("partitioned %s into %d chunks", parent.Name, len(chunks)))
	}

	return Success, nil
}

// partitionName builds the artifact name for one partition of a source file.
func (h *ChunkingHandler) partitionName(parentName string, index int) string {
	stem := fileStem(parentName)
	if h.mode == ChunkModeSemantic {
		return fmt.Sprintf("%s.semantic-chunk%03d.txt", stem, index)
	}
	return fmt.Sprintf("%s.chunk%03d.txt", stem, index)
}

var _ StepHandler = (*ChunkingHandler)(nil)
