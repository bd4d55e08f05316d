package vectorstore

import (
	"context"
	"testing"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.EnsureCollection(ctx, "memory", 3); err != nil {
		t.Fatalf("EnsureCollection; %v", err)
	}

	records := []Record{
		{
			ID:         "a1",
			DocumentID: "doc-1",
			Index:      "memory",
			FileName:   "notes.md",
			Text:       "alpha content",
			Embedding:  []float32{1, 0, 0},
			Tags:       map[string]string{"project": "quill"},
		},
		{
			ID:         "b2",
			DocumentID: "doc-2",
			Index:      "memory",
			FileName:   "report.md",
			Text:       "beta content",
			Embedding:  []float32{0, 1, 0},
		},
		{
			ID:         "c3",
			DocumentID: "doc-1",
			Index:      "memory",
			FileName:   "notes.md",
			Text:       "gamma content",
			Embedding:  []float32{0.9, 0.1, 0},
		},
	}
	if err := s.Upsert(ctx, "memory", records); err != nil {
		t.Fatalf("Upsert; %v", err)
	}
	return s
}

func TestMemoryStoreSearchOrdersByScore(t *testing.T) {
	s := seedStore(t)

	hits, err := s.Search(context.Background(), "memory", []float32{1, 0, 0}, SearchParams{Limit: 3})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].Record.ID != "a1" {
		t.Errorf("best hit = %s", hits[0].Record.ID)
	}
	if hits[1].Record.ID != "c3" {
		t.Errorf("second hit = %s", hits[1].Record.ID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits out of order at %d", i)
		}
	}
}

func TestMemoryStoreSearchFilter(t *testing.T) {
	s := seedStore(t)

	hits, err := s.Search(context.Background(), "memory", []float32{1, 0, 0}, SearchParams{
		Limit:  10,
		Filter: Filter{"document_id": "doc-2"},
	})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	if len(hits) != 1 || hits[0].Record.ID != "b2" {
		t.Errorf("filtered hits = %+v", hits)
	}
}

func TestMemoryStoreSearchTagFilter(t *testing.T) {
	s := seedStore(t)

	hits, err := s.Search(context.Background(), "memory", []float32{1, 0, 0}, SearchParams{
		Limit:  10,
		Filter: Filter{"tag_project": "quill"},
	})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	if len(hits) != 1 || hits[0].Record.ID != "a1" {
		t.Errorf("tag-filtered hits = %+v", hits)
	}
}

func TestMemoryStoreMinScore(t *testing.T) {
	s := seedStore(t)

	hits, err := s.Search(context.Background(), "memory", []float32{1, 0, 0}, SearchParams{
		Limit:    10,
		MinScore: 0.95,
	})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	for _, h := range hits {
		if h.Score < 0.95 {
			t.Errorf("hit %s below threshold: %f", h.Record.ID, h.Score)
		}
	}
	// a1 is an exact match and c3 (cosine ~0.994) also clears 0.95; only
	// the orthogonal b2 is dropped.
	if len(hits) != 2 {
		t.Fatalf("got %d hits above 0.95", len(hits))
	}
	if hits[0].Record.ID != "a1" || hits[1].Record.ID != "c3" {
		t.Errorf("hits = [%s %s]", hits[0].Record.ID, hits[1].Record.ID)
	}

	hits, err = s.Search(context.Background(), "memory", []float32{1, 0, 0}, SearchParams{
		Limit:    10,
		MinScore: 0.999,
	})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	if len(hits) != 1 || hits[0].Record.ID != "a1" {
		t.Errorf("hits above 0.999 = %+v", hits)
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "memory", []Record{{
		ID:        "a1",
		Text:      "replaced",
		Embedding: []float32{0, 0, 1},
	}})
	if err != nil {
		t.Fatalf("Upsert; %v", err)
	}
	if got := s.Count("memory"); got != 3 {
		t.Errorf("Count = %d after replace", got)
	}

	hits, err := s.Search(ctx, "memory", []float32{0, 0, 1}, SearchParams{Limit: 1})
	if err != nil {
		t.Fatalf("Search; %v", err)
	}
	if hits[0].Record.Text != "replaced" {
		t.Errorf("record not replaced: %q", hits[0].Record.Text)
	}
}

func TestMemoryStoreDimensionMismatch(t *testing.T) {
	s := seedStore(t)

	err := s.Upsert(context.Background(), "memory", []Record{{
		ID:        "bad",
		Embedding: []float32{1, 2},
	}})
	if err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Search(context.Background(), "missing", []float32{1}, SearchParams{}); err == nil {
		t.Error("expected error for unknown collection")
	}
	if err := s.Upsert(context.Background(), "missing", []Record{{ID: "x"}}); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestMemoryStoreListCollections(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.EnsureCollection(ctx, "zeta", 2)
	_ = s.EnsureCollection(ctx, "alpha", 2)
	_ = s.EnsureCollection(ctx, "alpha", 2)

	names, err := s.ListCollections(ctx)
	if err != nil {
		t.Fatalf("ListCollections; %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("names = %v", names)
	}
}
