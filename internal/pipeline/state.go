package pipeline

import (
	"time"

	"github.com/quillmem/quill/internal/chunkers"
)

// ArtifactKind classifies pipeline artifacts.
type ArtifactKind string

const (
	ArtifactUndefined           ArtifactKind = "undefined"
	ArtifactExtractedText       ArtifactKind = "extracted-text"
	ArtifactTextPartition       ArtifactKind = "text-partition"
	ArtifactTextEmbeddingVector ArtifactKind = "text-embedding-vector"
	ArtifactSyntheticData       ArtifactKind = "synthetic-data"
	ArtifactExtractedContent    ArtifactKind = "extracted-content"
)

// UploadedFile is a caller-supplied input document. Immutable after
// construction.
type UploadedFile struct {
	FileName    string
	Bytes       []byte
	ContentType string
}

// DerivedFile records the provenance of a labeled payload attached to an
// artifact.
type DerivedFile struct {
	// ParentArtifactID is the artifact this payload belongs to.
	ParentArtifactID string

	// SourcePartitionID links a partition back to the extracted-text
	// artifact it was cut from. Empty for non-partition payloads.
	SourcePartitionID string

	// ContentSHA256 is the hex SHA-256 of the payload bytes.
	ContentSHA256 string
}

// Artifact is a file-like record produced at some pipeline stage.
type Artifact struct {
	ID              string
	Name            string
	Size            int64
	ContentType     string
	Kind            ArtifactKind
	PartitionNumber int
	SectionNumber   int

	// DerivedFiles maps a payload label (extracted.txt, chunk.txt,
	// embedding.vec) to its provenance entry.
	DerivedFiles map[string]DerivedFile
}

// AttachDerived records a derived payload label on the artifact.
func (a *Artifact) AttachDerived(label string, df DerivedFile) {
	if a.DerivedFiles == nil {
		a.DerivedFiles = make(map[string]DerivedFile)
	}
	a.DerivedFiles[label] = df
}

// HasDerived reports whether the artifact carries the given payload label.
func (a *Artifact) HasDerived(label string) bool {
	_, ok := a.DerivedFiles[label]
	return ok
}

// SideBand carries heavy per-artifact payloads outside the artifact values
// themselves. One map per payload kind keeps the entries typed.
type SideBand struct {
	// ExtractedText maps extracted-text artifact ID to markdown.
	ExtractedText map[string]string

	// ChunkText maps partition artifact ID to chunk text.
	ChunkText map[string]string

	// Embeddings maps partition artifact ID to its vector.
	Embeddings map[string][]float32

	// ChunkMetadata maps partition artifact ID to structural metadata
	// emitted by the semantic chunker.
	ChunkMetadata map[string]chunkers.ChunkMetadata
}

func newSideBand() SideBand {
	return SideBand{
		ExtractedText: make(map[string]string),
		ChunkText:     make(map[string]string),
		Embeddings:    make(map[string][]float32),
		ChunkMetadata: make(map[string]chunkers.ChunkMetadata),
	}
}

// LogEntry is one line of the pipeline's own log ring.
type LogEntry struct {
	Time   time.Time
	Source string
	Text   string
}

// State is the mutable record threaded through all steps of one ingestion.
// A State is owned by exactly one executing task; it is not safe for
// concurrent mutation.
type State struct {
	// Index is the target logical collection.
	Index string

	// DocumentID uniquely identifies the ingested document.
	DocumentID string

	// ExecutionID identifies this pipeline run. Artifact IDs are derived
	// from it, so re-running a step within one execution reproduces the
	// same ID sequence.
	ExecutionID string

	Steps          []string
	RemainingSteps []string
	CompletedSteps []string

	Tags     map[string]string
	Metadata map[string]string

	// FilesToUpload holds pending inputs; consumed by extraction.
	FilesToUpload []UploadedFile

	// Files holds produced artifacts, append-only.
	Files []*Artifact

	Context SideBand

	Created    time.Time
	LastUpdate time.Time

	Complete       bool
	UploadComplete bool

	LogEntries []LogEntry
}

// NewState creates a pipeline state for one ingestion into the given index.
func NewState(index string) *State {
	now := time.Now()
	return &State{
		Index:       index,
		DocumentID:  newID(),
		ExecutionID: newID(),
		Tags:        make(map[string]string),
		Metadata:    make(map[string]string),
		Context:     newSideBand(),
		Created:     now,
		LastUpdate:  now,
	}
}

// Then appends a step to both the plan and the remaining queue.
func (s *State) Then(step string) *State {
	s.Steps = append(s.Steps, step)
	s.RemainingSteps = append(s.RemainingSteps, step)
	return s
}

// AddUpload queues an input file for extraction.
func (s *State) AddUpload(f UploadedFile) *State {
	s.FilesToUpload = append(s.FilesToUpload, f)
	return s
}

// AddArtifact appends a produced artifact. Artifacts are never removed.
func (s *State) AddArtifact(a *Artifact) {
	s.Files = append(s.Files, a)
	s.Touch()
}

// ArtifactsByKind returns the artifacts of the given kind in production
// order.
func (s *State) ArtifactsByKind(kind ArtifactKind) []*Artifact {
	var out []*Artifact
	for _, a := range s.Files {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Log appends an entry to the pipeline log and refreshes LastUpdate.
func (s *State) Log(source, text string) {
	s.LogEntries = append(s.LogEntries, LogEntry{
		Time:   time.Now(),
		Source: source,
		Text:   text,
	})
	s.Touch()
}

// Touch refreshes LastUpdate.
func (s *State) Touch() {
	s.LastUpdate = time.Now()
}
