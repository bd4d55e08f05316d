// Package vectorstore defines the persistence layer for embedded memory
// records and its backends.
package vectorstore

import (
	"context"
	"time"
)

// Record is one persisted memory chunk with its embedding and payload.
type Record struct {
	// ID is the point identifier, a UUID string.
	ID string

	DocumentID  string
	ExecutionID string

	// Index is the logical collection the record belongs to.
	Index string

	FileName string

	// Text is the chunk content, stored in the payload so search results
	// can be cited without a second lookup.
	Text string

	ArtifactKind    string
	PartitionNumber int
	SectionNumber   int

	// Title and TitleHierarchy carry the semantic chunker's structural
	// metadata when present.
	Title          string
	TitleHierarchy []string

	Tags map[string]string

	CreatedAt time.Time

	Embedding []float32
}

// Filter restricts a search to records whose payload fields equal the given
// values. Only equality matching is supported.
type Filter map[string]any

// ScoredRecord is a search hit with its similarity score.
type ScoredRecord struct {
	Record Record
	Score  float32
}

// SearchParams bounds a similarity search.
type SearchParams struct {
	// Limit caps the number of hits. Zero means the store default.
	Limit int

	// MinScore drops hits scoring below the threshold. Zero keeps all.
	MinScore float32

	Filter Filter
}

// Store is the vector persistence backend.
type Store interface {
	// EnsureCollection creates the collection if it does not exist. The
	// dimensions of an existing collection are not altered.
	EnsureCollection(ctx context.Context, name string, dimensions int) error

	// Upsert writes records into the collection, replacing any existing
	// points with the same IDs.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Search returns the records nearest to the query vector, best first.
	Search(ctx context.Context, collection string, vector []float32, params SearchParams) ([]ScoredRecord, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)
}
