package chunkers

import (
	"regexp"
	"strings"
)

const untitledSection = "Untitled Section"

var (
	// Matches markdown headings (# to ######).
	markdownHeadingRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	// Matches numbered headings such as "1. Title" or "2.3.1 Title".
	numberedHeadingRegex = regexp.MustCompile(`^((?:\d+\.)+)\s+(.+)$`)
)

// heading is one detected document heading.
type heading struct {
	// pos is the byte offset of the heading line in the source text.
	pos   int
	level int
	title string
}

// SemanticChunker partitions text by heading hierarchy. Headings at or above
// the configured threshold start new chunks; deeper sections are packed into
// the current chunk while they fit.
type SemanticChunker struct {
	opts SemanticOptions
}

// NewSemanticChunker creates a semantic chunker. Zero or missing option
// values fall back to defaults.
func NewSemanticChunker(opts SemanticOptions) *SemanticChunker {
	def := DefaultSemanticOptions()
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = def.MaxChunkSize
	}
	if opts.MinChunkSize < 0 {
		opts.MinChunkSize = def.MinChunkSize
	}
	if opts.TitleLevelThreshold <= 0 {
		opts.TitleLevelThreshold = def.TitleLevelThreshold
	}
	return &SemanticChunker{opts: opts}
}

// Name returns the chunker's identifier.
func (c *SemanticChunker) Name() string {
	return "semantic"
}

// Chunk splits text into heading-aligned chunks.
func (c *SemanticChunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return []Chunk{}
	}

	headings := detectHeadings(text)
	if len(headings) == 0 {
		return c.finalize(c.splitOversized(text, ChunkMetadata{}))
	}

	var (
		chunks []Chunk
		stack  []string
	)

	// Content before the first heading forms its own chunk.
	if pre := text[:headings[0].pos]; strings.TrimSpace(pre) != "" {
		chunks = append(chunks, c.emit(pre, ChunkMetadata{})...)
	}

	var (
		current     string
		currentMeta ChunkMetadata
	)
	flush := func() {
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, c.emit(current, currentMeta)...)
		}
		current = ""
	}

	for i, h := range headings {
		stack = updateTitleStack(stack, h)

		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].pos
		}
		section := text[h.pos:end]

		meta := ChunkMetadata{Title: h.title, TitleLevel: h.level}
		if c.opts.IncludeTitleContext {
			meta.TitleHierarchy = append([]string(nil), stack...)
		}

		if h.level <= c.opts.TitleLevelThreshold {
			flush()
			current = section
			currentMeta = meta
			continue
		}

		// Deeper heading: stay inside the current chunk while it fits.
		if current != "" && len(current)+len(section)+2 <= c.opts.MaxChunkSize {
			current += section
			continue
		}

		flush()
		current = section
		currentMeta = meta
	}
	flush()

	return c.finalize(chunks)
}

// emit produces one or more chunks from a section, splitting when the
// section alone exceeds the size ceiling.
func (c *SemanticChunker) emit(section string, meta ChunkMetadata) []Chunk {
	trimmed := strings.TrimSpace(section)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= c.opts.MaxChunkSize {
		return []Chunk{{Content: trimmed, Metadata: meta}}
	}
	return c.splitOversized(trimmed, meta)
}

// splitOversized breaks text on paragraph boundaries, falling back to
// sentences and finally word boundaries.
func (c *SemanticChunker) splitOversized(text string, meta ChunkMetadata) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	parts := strings.Split(text, "\n\n")
	joiner := "\n\n"
	if len(parts) == 1 {
		parts = splitSentences(text)
		joiner = " "
	}

	var (
		chunks  []Chunk
		current strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, Chunk{Content: s, Metadata: meta})
		}
		current.Reset()
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if current.Len()+len(part)+len(joiner) > c.opts.MaxChunkSize && current.Len() > 0 {
			flush()
		}

		if len(part) > c.opts.MaxChunkSize {
			flush()
			for _, piece := range splitByWords(part, c.opts.MaxChunkSize) {
				chunks = append(chunks, Chunk{Content: piece, Metadata: meta})
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString(joiner)
		}
		current.WriteString(part)
	}
	flush()

	return chunks
}

// finalize filters undersized chunks and assigns output indexes. When the
// filter would discard everything, the largest chunk is kept so non-empty
// input always yields at least one chunk.
func (c *SemanticChunker) finalize(chunks []Chunk) []Chunk {
	if len(chunks) == 0 {
		return []Chunk{}
	}

	kept := make([]Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if len(ch.Content) >= c.opts.MinChunkSize {
			kept = append(kept, ch)
		}
	}

	if len(kept) == 0 {
		largest := chunks[0]
		for _, ch := range chunks[1:] {
			if len(ch.Content) > len(largest.Content) {
				largest = ch
			}
		}
		kept = append(kept, largest)
	}

	for i := range kept {
		kept[i].Index = i
	}
	return kept
}

// updateTitleStack maintains the current title path for a new heading.
func updateTitleStack(stack []string, h heading) []string {
	for len(stack) >= h.level {
		stack = stack[:len(stack)-1]
	}
	for len(stack) < h.level-1 {
		stack = append(stack, untitledSection)
	}
	return append(stack, h.title)
}

// detectHeadings finds markdown, underline, and numbered headings in a
// single pass and returns them ordered by position.
func detectHeadings(text string) []heading {
	var headings []heading

	lines := strings.Split(text, "\n")
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}

	for i, line := range lines {
		if m := markdownHeadingRegex.FindStringSubmatch(line); m != nil {
			headings = append(headings, heading{
				pos:   offsets[i],
				level: len(m[1]),
				title: strings.TrimSpace(m[2]),
			})
			continue
		}

		if m := numberedHeadingRegex.FindStringSubmatch(line); m != nil {
			headings = append(headings, heading{
				pos:   offsets[i],
				level: strings.Count(m[1], "."),
				title: strings.TrimSpace(m[2]),
			})
			continue
		}

		if i+1 < len(lines) {
			if level, ok := underlineLevel(lines[i+1]); ok && strings.TrimSpace(line) != "" {
				headings = append(headings, heading{
					pos:   offsets[i],
					level: level,
					title: strings.TrimSpace(line),
				})
			}
		}
	}

	return headings
}

// underlineLevel reports whether a line is a setext underline and which
// heading level it denotes (= for level 1, - for level 2).
func underlineLevel(line string) (int, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return 0, false
	}
	if strings.Count(trimmed, "=") == len(trimmed) {
		return 1, true
	}
	if strings.Count(trimmed, "-") == len(trimmed) {
		return 2, true
	}
	return 0, false
}

// splitSentences splits text after sentence terminators, keeping the
// terminating period with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	rest := text

	for {
		idxSpace := strings.Index(rest, ". ")
		idxNewline := strings.Index(rest, ".\n")

		idx := idxSpace
		if idx == -1 || (idxNewline != -1 && idxNewline < idx) {
			idx = idxNewline
		}
		if idx == -1 {
			break
		}

		sentences = append(sentences, rest[:idx+1])
		rest = rest[idx+2:]
	}

	if strings.TrimSpace(rest) != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitByWords force-splits text on word boundaries. A single word longer
// than maxSize becomes its own chunk.
func splitByWords(text string, maxSize int) []string {
	words := strings.Fields(text)
	var (
		pieces  []string
		current strings.Builder
	)

	for _, w := range words {
		if current.Len() > 0 && current.Len()+len(w)+1 > maxSize {
			pieces = append(pieces, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
