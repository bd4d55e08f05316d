package chunkers

import (
	"strings"
)

// backwardSearchWindow bounds how far the simple chunker looks back from the
// target end for a preferred split boundary.
const backwardSearchWindow = 200

// SimpleChunker splits text with a sliding window, preferring to end chunks
// on natural boundaries and overlapping neighbors by a fixed amount.
type SimpleChunker struct {
	opts SimpleOptions
}

// NewSimpleChunker creates a simple chunker. Zero or missing option values
// fall back to defaults.
func NewSimpleChunker(opts SimpleOptions) *SimpleChunker {
	def := DefaultSimpleOptions()
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = def.MaxChunkSize
	}
	if opts.TextOverlap < 0 || opts.TextOverlap >= opts.MaxChunkSize {
		opts.TextOverlap = def.TextOverlap
	}
	if len(opts.SplitCharacters) == 0 {
		opts.SplitCharacters = def.SplitCharacters
	}
	return &SimpleChunker{opts: opts}
}

// Name returns the chunker's identifier.
func (c *SimpleChunker) Name() string {
	return "simple"
}

// Chunk walks the text and emits trimmed, overlapping chunks.
func (c *SimpleChunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return []Chunk{}
	}

	var chunks []Chunk
	pos := 0

	for pos < len(text) {
		end := min(pos+c.opts.MaxChunkSize, len(text))

		// Prefer a natural boundary when the window doesn't reach the end.
		if end < len(text) {
			if adjusted, ok := c.findSplitPoint(text, pos, end); ok {
				end = adjusted
			}
		}

		piece := strings.TrimSpace(text[pos:end])
		if piece != "" {
			chunks = append(chunks, Chunk{
				Index:   len(chunks),
				Content: piece,
			})
		}

		if end >= len(text) {
			break
		}

		// Guarantee forward progress even when the overlap would rewind
		// past the current position.
		pos = max(pos+1, end-c.opts.TextOverlap)
	}

	return chunks
}

// findSplitPoint searches backward from end for the earliest-preference split
// character and returns the position just after it.
func (c *SimpleChunker) findSplitPoint(text string, pos, end int) (int, bool) {
	windowStart := max(pos, end-backwardSearchWindow)
	window := text[windowStart:end]

	for _, sep := range c.opts.SplitCharacters {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			return windowStart + idx + len(sep), true
		}
	}
	return end, false
}
