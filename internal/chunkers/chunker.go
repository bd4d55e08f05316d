package chunkers

// Chunk represents one partition of extracted text.
type Chunk struct {
	// Index is the zero-based position in the output sequence.
	Index int

	// Content is the chunk text.
	Content string

	// Metadata contains structural information about the chunk.
	Metadata ChunkMetadata
}

// ChunkMetadata describes where a chunk sits in the document structure.
// Populated by the semantic chunker; zero for the simple chunker.
type ChunkMetadata struct {
	// Title is the heading that governs this chunk.
	Title string

	// TitleLevel is the heading depth (1 = document title).
	TitleLevel int

	// TitleHierarchy is the path of titles from the document root down to
	// the chunk's own section.
	TitleHierarchy []string
}

// SimpleOptions configures the simple sliding-window chunker.
type SimpleOptions struct {
	// MaxChunkSize is the maximum chunk length in characters.
	MaxChunkSize int

	// TextOverlap is the number of characters repeated between neighboring
	// chunks.
	TextOverlap int

	// SplitCharacters are boundary preferences, most preferred first.
	SplitCharacters []string
}

// DefaultSimpleOptions returns the default simple chunker configuration.
func DefaultSimpleOptions() SimpleOptions {
	return SimpleOptions{
		MaxChunkSize:    1000,
		TextOverlap:     100,
		SplitCharacters: []string{"\n\n", "\n", ". ", "! ", "? "},
	}
}

// SemanticOptions configures the structure-aware semantic chunker.
type SemanticOptions struct {
	// MaxChunkSize is the maximum chunk length in characters.
	MaxChunkSize int

	// MinChunkSize filters out chunks shorter than this after splitting.
	MinChunkSize int

	// TitleLevelThreshold is the deepest heading level that still starts a
	// new chunk. Deeper headings stay inside the current chunk.
	TitleLevelThreshold int

	// IncludeTitleContext records the title hierarchy in chunk metadata.
	IncludeTitleContext bool
}

// DefaultSemanticOptions returns the default semantic chunker configuration.
func DefaultSemanticOptions() SemanticOptions {
	return SemanticOptions{
		MaxChunkSize:        2000,
		MinChunkSize:        100,
		TitleLevelThreshold: 2,
		IncludeTitleContext: true,
	}
}
