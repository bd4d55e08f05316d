package chunkers

import (
	"strings"
	"testing"
)

func TestDefaultSimpleOptions(t *testing.T) {
	opts := DefaultSimpleOptions()

	if opts.MaxChunkSize != 1000 {
		t.Errorf("MaxChunkSize = %d, want 1000", opts.MaxChunkSize)
	}
	if opts.TextOverlap != 100 {
		t.Errorf("TextOverlap = %d, want 100", opts.TextOverlap)
	}
	if len(opts.SplitCharacters) != 5 || opts.SplitCharacters[0] != "\n\n" {
		t.Errorf("SplitCharacters = %v, want paragraph-first preferences", opts.SplitCharacters)
	}
}

func TestSimpleChunkerEmptyInput(t *testing.T) {
	c := NewSimpleChunker(DefaultSimpleOptions())

	for _, text := range []string{"", "   ", "\n\n\t"} {
		if got := c.Chunk(text); len(got) != 0 {
			t.Errorf("Chunk(%q) produced %d chunks, want 0", text, len(got))
		}
	}
}

func TestSimpleChunkerShortInput(t *testing.T) {
	c := NewSimpleChunker(DefaultSimpleOptions())

	chunks := c.Chunk("Hello world. This is a test.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Hello world. This is a test." {
		t.Errorf("Content = %q, want input unchanged", chunks[0].Content)
	}
	if chunks[0].Index != 0 {
		t.Errorf("Index = %d, want 0", chunks[0].Index)
	}
}

func TestSimpleChunkerRespectsMaxSize(t *testing.T) {
	c := NewSimpleChunker(SimpleOptions{MaxChunkSize: 100, TextOverlap: 10})

	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString("The quick brown fox jumps. ")
	}
	chunks := c.Chunk(b.String())

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Content) > 100 {
			t.Errorf("chunk %d length %d exceeds max 100", i, len(ch.Content))
		}
		if ch.Index != i {
			t.Errorf("chunk %d has Index %d", i, ch.Index)
		}
	}
}

func TestSimpleChunkerPrefersParagraphBoundary(t *testing.T) {
	c := NewSimpleChunker(SimpleOptions{MaxChunkSize: 60, TextOverlap: 0})

	text := "First paragraph here.\n\nSecond paragraph follows with more text than fits."
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "First paragraph here." {
		t.Errorf("first chunk = %q, want cut at paragraph boundary", chunks[0].Content)
	}
}

func TestSimpleChunkerSentenceBoundaryFallback(t *testing.T) {
	c := NewSimpleChunker(SimpleOptions{MaxChunkSize: 40, TextOverlap: 0})

	text := "A short sentence ends here. Another one continues past the window."
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Content, "ends here.") {
		t.Errorf("first chunk = %q, want cut after sentence", chunks[0].Content)
	}
}

func TestSimpleChunkerOverlap(t *testing.T) {
	c := NewSimpleChunker(SimpleOptions{
		MaxChunkSize:    50,
		TextOverlap:     20,
		SplitCharacters: []string{". "},
	})

	text := strings.Repeat("abcdefghij", 20)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Without any split characters present, consecutive chunks share the
	// configured overlap.
	tail := chunks[0].Content[len(chunks[0].Content)-20:]
	if !strings.HasPrefix(chunks[1].Content, tail) {
		t.Errorf("chunk 1 does not start with chunk 0's overlap tail")
	}
}

func TestSimpleChunkerForwardProgress(t *testing.T) {
	// Overlap nearly as large as the window must still terminate.
	c := NewSimpleChunker(SimpleOptions{MaxChunkSize: 10, TextOverlap: 9})

	chunks := c.Chunk(strings.Repeat("x", 200))
	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
}
