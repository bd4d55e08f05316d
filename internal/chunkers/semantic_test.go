package chunkers

import (
	"strings"
	"testing"
)

func TestDefaultSemanticOptions(t *testing.T) {
	opts := DefaultSemanticOptions()

	if opts.MaxChunkSize != 2000 {
		t.Errorf("MaxChunkSize = %d, want 2000", opts.MaxChunkSize)
	}
	if opts.MinChunkSize != 100 {
		t.Errorf("MinChunkSize = %d, want 100", opts.MinChunkSize)
	}
	if opts.TitleLevelThreshold != 2 {
		t.Errorf("TitleLevelThreshold = %d, want 2", opts.TitleLevelThreshold)
	}
	if !opts.IncludeTitleContext {
		t.Error("IncludeTitleContext should default to true")
	}
}

func TestDetectHeadings(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		titles []string
		levels []int
	}{
		{
			name:   "markdown levels",
			text:   "# One\n\nbody\n\n### Three\n\nbody",
			titles: []string{"One", "Three"},
			levels: []int{1, 3},
		},
		{
			name:   "underline equals and dashes",
			text:   "Title\n=====\n\nbody\n\nSub\n---\n\nbody",
			titles: []string{"Title", "Sub"},
			levels: []int{1, 2},
		},
		{
			name:   "numbered",
			text:   "1. Introduction\n\nbody\n\n2. Methods\n\nbody",
			titles: []string{"Introduction", "Methods"},
			levels: []int{1, 1},
		},
		{
			name:   "no headings",
			text:   "just a paragraph\nwith two lines",
			titles: nil,
			levels: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headings := detectHeadings(tt.text)
			if len(headings) != len(tt.titles) {
				t.Fatalf("detected %d headings, want %d", len(headings), len(tt.titles))
			}
			for i, h := range headings {
				if h.title != tt.titles[i] {
					t.Errorf("heading %d title = %q, want %q", i, h.title, tt.titles[i])
				}
				if h.level != tt.levels[i] {
					t.Errorf("heading %d level = %d, want %d", i, h.level, tt.levels[i])
				}
			}
		})
	}
}

func TestUpdateTitleStack(t *testing.T) {
	var stack []string

	stack = updateTitleStack(stack, heading{level: 1, title: "Doc"})
	stack = updateTitleStack(stack, heading{level: 2, title: "Part"})
	if strings.Join(stack, "/") != "Doc/Part" {
		t.Fatalf("stack = %v", stack)
	}

	// Sibling replaces at same level.
	stack = updateTitleStack(stack, heading{level: 2, title: "Other"})
	if strings.Join(stack, "/") != "Doc/Other" {
		t.Fatalf("stack = %v", stack)
	}

	// Jumping levels fills intermediates.
	stack = updateTitleStack(stack, heading{level: 4, title: "Deep"})
	if strings.Join(stack, "/") != "Doc/Other/"+untitledSection+"/Deep" {
		t.Fatalf("stack = %v", stack)
	}

	// Shallower heading pops back.
	stack = updateTitleStack(stack, heading{level: 1, title: "Next"})
	if strings.Join(stack, "/") != "Next" {
		t.Fatalf("stack = %v", stack)
	}
}

func TestSemanticChunkerEmptyInput(t *testing.T) {
	c := NewSemanticChunker(DefaultSemanticOptions())

	if got := c.Chunk(""); len(got) != 0 {
		t.Errorf("empty input produced %d chunks", len(got))
	}
	if got := c.Chunk("  \n \t"); len(got) != 0 {
		t.Errorf("blank input produced %d chunks", len(got))
	}
}

func TestSemanticChunkerHeadingSections(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        1,
		TitleLevelThreshold: 2,
		IncludeTitleContext: true,
	})

	chunks := c.Chunk("# T\n\nI.\n\n## A\n\nAlpha.\n\n## B\n\nBeta.")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantTitles := []string{"T", "A", "B"}
	for i, ch := range chunks {
		if ch.Metadata.Title != wantTitles[i] {
			t.Errorf("chunk %d title = %q, want %q", i, ch.Metadata.Title, wantTitles[i])
		}
		if ch.Index != i {
			t.Errorf("chunk %d Index = %d", i, ch.Index)
		}
	}

	if chunks[0].Content != "# T\n\nI." {
		t.Errorf("chunk 0 content = %q", chunks[0].Content)
	}
	if h := chunks[1].Metadata.TitleHierarchy; len(h) != 2 || h[0] != "T" || h[1] != "A" {
		t.Errorf("chunk 1 hierarchy = %v, want [T A]", h)
	}
}

func TestSemanticChunkerDeepHeadingsStayInChunk(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        1,
		TitleLevelThreshold: 1,
	})

	text := "# Top\n\nIntro.\n\n## Inner\n\nDetail text.\n\n## Another\n\nMore detail."
	chunks := c.Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk with deep headings packed, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Content, "## Inner") || !strings.Contains(chunks[0].Content, "## Another") {
		t.Errorf("deep sections missing from chunk: %q", chunks[0].Content)
	}
}

func TestSemanticChunkerParagraphOverflow(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        1000,
		MinChunkSize:        100,
		TitleLevelThreshold: 2,
	})

	// ~2400 characters of headingless paragraphs.
	para := strings.Repeat("Steady prose sentences fill this paragraph with content. ", 7)
	text := strings.TrimSpace(strings.Repeat(para+"\n\n", 6))
	if len(text) < 2300 || len(text) > 2600 {
		t.Fatalf("fixture length %d out of range", len(text))
	}

	chunks := c.Chunk(text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch.Content) > 1000 {
			t.Errorf("chunk %d length %d exceeds 1000", i, len(ch.Content))
		}
	}
}

func TestSemanticChunkerOversizedSection(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        300,
		MinChunkSize:        10,
		TitleLevelThreshold: 2,
		IncludeTitleContext: true,
	})

	body := strings.Repeat("A sentence with several words inside it. ", 20)
	chunks := c.Chunk("# Big\n\n" + body)

	if len(chunks) < 2 {
		t.Fatalf("expected oversized section to split, got %d chunks", len(chunks))
	}
	if chunks[0].Metadata.Title != "Big" {
		t.Errorf("first chunk title = %q, want Big", chunks[0].Metadata.Title)
	}
	if h := chunks[0].Metadata.TitleHierarchy; len(h) != 1 || h[0] != "Big" {
		t.Errorf("first chunk hierarchy = %v, want [Big]", h)
	}
	for i, ch := range chunks {
		if len(ch.Content) > 300 {
			t.Errorf("chunk %d length %d exceeds 300", i, len(ch.Content))
		}
	}
}

func TestSemanticChunkerMinSizeFilter(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        50,
		TitleLevelThreshold: 2,
	})

	chunks := c.Chunk("# A\n\nTiny.\n\n# B\n\nThis section carries enough text to clear the minimum chunk size filter easily.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk after filtering, got %d", len(chunks))
	}
	if chunks[0].Metadata.Title != "B" {
		t.Errorf("surviving chunk title = %q, want B", chunks[0].Metadata.Title)
	}
}

func TestSemanticChunkerKeepsLargestWhenAllFiltered(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        500,
		TitleLevelThreshold: 2,
	})

	chunks := c.Chunk("# A\n\nShort.\n\n# B\n\nSlightly longer body text here.")
	if len(chunks) != 1 {
		t.Fatalf("expected the single largest chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.Title != "B" {
		t.Errorf("kept chunk title = %q, want B (the largest)", chunks[0].Metadata.Title)
	}
}

func TestSemanticChunkerPreambleBeforeFirstHeading(t *testing.T) {
	c := NewSemanticChunker(SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        1,
		TitleLevelThreshold: 2,
	})

	chunks := c.Chunk("Leading text without a heading.\n\n# First\n\nBody.")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "Leading text without a heading." {
		t.Errorf("preamble chunk = %q", chunks[0].Content)
	}
	if chunks[0].Metadata.Title != "" {
		t.Errorf("preamble should have no title, got %q", chunks[0].Metadata.Title)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One sentence. Two sentence.\nThree goes on")
	want := []string{"One sentence.", "Two sentence.", "Three goes on"}

	if len(got) != len(want) {
		t.Fatalf("got %d sentences %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitByWords(t *testing.T) {
	pieces := splitByWords("alpha beta gamma delta epsilon", 11)
	for i, p := range pieces {
		if len(p) > 11 {
			t.Errorf("piece %d %q exceeds max", i, p)
		}
	}
	if strings.Join(pieces, " ") != "alpha beta gamma delta epsilon" {
		t.Errorf("words lost in split: %v", pieces)
	}

	// A single oversized word becomes its own piece.
	pieces = splitByWords("supercalifragilistic", 5)
	if len(pieces) != 1 || pieces[0] != "supercalifragilistic" {
		t.Errorf("oversized word handling = %v", pieces)
	}
}
