package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store backed by maps. Used in tests and as a
// fallback when no Qdrant instance is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dimensions int
	records    map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memoryCollection)}
}

// EnsureCollection creates the collection if it does not exist.
func (s *MemoryStore) EnsureCollection(_ context.Context, name string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		s.collections[name] = &memoryCollection{
			dimensions: dimensions,
			records:    make(map[string]Record),
		}
	}
	return nil
}

// Upsert writes records, replacing existing ones with the same IDs.
func (s *MemoryStore) Upsert(_ context.Context, collection string, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}
	for _, r := range records {
		if len(r.Embedding) != col.dimensions {
			return fmt.Errorf("record %s has %d dimensions, collection %q expects %d",
				r.ID, len(r.Embedding), collection, col.dimensions)
		}
		col.records[r.ID] = r
	}
	return nil
}

// Search returns the records nearest to the query vector by cosine
// similarity, best first.
func (s *MemoryStore) Search(_ context.Context, collection string, vector []float32, params SearchParams) ([]ScoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}

	limit := params.Limit
	if limit == 0 {
		limit = DefaultSearchLimit
	}

	var hits []ScoredRecord
	for _, r := range col.records {
		if !matchesFilter(r, params.Filter) {
			continue
		}
		score := cosineSimilarity(vector, r.Embedding)
		if params.MinScore > 0 && score < params.MinScore {
			continue
		}
		hits = append(hits, ScoredRecord{Record: r, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ListCollections returns the collection names in sorted order.
func (s *MemoryStore) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of records in a collection. Test helper.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return 0
	}
	return len(col.records)
}

// matchesFilter applies the same payload-field equality semantics the
// Qdrant backend uses.
func matchesFilter(r Record, f Filter) bool {
	for field, want := range f {
		var got any
		switch field {
		case "document_id":
			got = r.DocumentID
		case "execution_id":
			got = r.ExecutionID
		case "index":
			got = r.Index
		case "file_name":
			got = r.FileName
		case "artifact_kind":
			got = r.ArtifactKind
		case "partition_number":
			got = int64(r.PartitionNumber)
		case "section_number":
			got = int64(r.SectionNumber)
		case "title":
			got = r.Title
		default:
			if len(field) > 4 && field[:4] == "tag_" {
				got = r.Tags[field[4:]]
			} else {
				return false
			}
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

func looseEqual(got, want any) bool {
	if g, ok := got.(int64); ok {
		switch w := want.(type) {
		case int:
			return g == int64(w)
		case int64:
			return g == w
		case float64:
			return g == int64(w)
		}
	}
	return fmt.Sprintf("%v", got) == fmt.Sprintf("%v", want)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ Store = (*MemoryStore)(nil)
