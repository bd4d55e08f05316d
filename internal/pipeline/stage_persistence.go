package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillmem/quill/internal/vectorstore"
)

// DefaultIndex is the collection used when a state names no index.
const DefaultIndex = "memory"

// UpsertBatchSize bounds one vector store write.
const UpsertBatchSize = 100

// SaveHandler persists embedded partitions to the vector store. Records are
// keyed by partition artifact ID, so retries upsert rather than duplicate.
type SaveHandler struct {
	store  vectorstore.Store
	logger *slog.Logger
}

// NewSaveHandler creates the persistence step handler.
func NewSaveHandler(store vectorstore.Store, logger *slog.Logger) *SaveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveHandler{store: store, logger: logger}
}

// StepName returns the step identifier.
func (h *SaveHandler) StepName() string {
	return StepSave
}

// Invoke writes one record per embedded partition into the state's index
// collection. Store failures are transient.
func (h *SaveHandler) Invoke(ctx context.Context, state *State) (Outcome, error) {
	partitions := state.ArtifactsByKind(ArtifactTextPartition)
	if len(partitions) == 0 {
		state.Log(StepSave, "no partitions to save")
		return Success, nil
	}

	collection := state.Index
	if collection == "" {
		collection = DefaultIndex
	}

	records := make([]vectorstore.Record, 0, len(partitions))
	for _, p := range partitions {
		vector, ok := state.Context.Embeddings[p.ID]
		if !ok {
			state.Log(StepSave, fmt.Sprintf("partition %s has no embedding", p.Name))
			return TransientError, fmt.Errorf("partition %s has no embedding", p.Name)
		}
		records = append(records, h.record(state, p, collection, vector))
	}

	dimensions := len(records[0].Embedding)
	if dimensions == 0 {
		return TransientError, fmt.Errorf("partition %s has an empty embedding", partitions[0].Name)
	}

	if err := h.store.EnsureCollection(ctx, collection, dimensions); err != nil {
		state.Log(StepSave, fmt.Sprintf("failed to ensure collection %s: %v", collection, err))
		return TransientError, fmt.Errorf("failed to ensure collection %q; %w", collection, err)
	}

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(records))
		if err := h.store.Upsert(ctx, collection, records[start:end]); err != nil {
			state.Log(StepSave, fmt.Sprintf("upsert failed: %v", err))
			return TransientError, fmt.Errorf("failed to save records; %w", err)
		}
	}

	state.Log(StepSave, fmt.Sprintf("saved %d records to %s", len(records), collection))
	h.logger.Info("records saved",
		"collection", collection,
		"count", len(records),
		"document_id", state.DocumentID)
	return Success, nil
}

// record builds the vector store record for one partition.
func (h *SaveHandler) record(state *State, p *Artifact, collection string, vector []float32) vectorstore.Record {
	rec := vectorstore.Record{
		ID:              p.ID,
		DocumentID:      state.DocumentID,
		ExecutionID:     state.ExecutionID,
		Index:           collection,
		FileName:        h.sourceFileName(state, p),
		Text:            state.Context.ChunkText[p.ID],
		ArtifactKind:    string(p.Kind),
		PartitionNumber: p.PartitionNumber,
		SectionNumber:   p.SectionNumber,
		Tags:            state.Tags,
		CreatedAt:       time.Now().UTC(),
		Embedding:       vector,
	}
	if meta, ok := state.Context.ChunkMetadata[p.ID]; ok {
		rec.Title = meta.Title
		rec.TitleHierarchy = meta.TitleHierarchy
	}
	return rec
}

// sourceFileName resolves the original uploaded file a partition came from.
func (h *SaveHandler) sourceFileName(state *State, p *Artifact) string {
	df, ok := p.DerivedFiles[LabelChunkText]
	if !ok {
		return p.Name
	}
	for _, a := range state.Files {
		if a.ID == df.SourcePartitionID {
			return a.Name
		}
	}
	return p.Name
}

var _ StepHandler = (*SaveHandler)(nil)
