package chunker

// Metadata carries the named fields attached to every chunk. It replaces
// an open-ended key/value bag so the payload shape is checked at compile
// time; the vector-store payload is derived from these fields.
type Metadata struct {
	// Chapter is the chapter identifier of the source document.
	Chapter string `json:"chapter"`

	// Title is the source document title.
	Title string `json:"title"`

	// Section is the heading of the originating section.
	Section string `json:"section"`

	// HeadingPath is the flattened ancestor chain, e.g. "Ch 1 > Sec 1.1".
	HeadingPath string `json:"heading_path"`

	// URL is the canonical URL path of the rendered document.
	URL string `json:"url"`

	// Description is the document description from front matter.
	Description string `json:"description"`

	// Keywords are the document keywords from front matter.
	Keywords []string `json:"keywords"`

	// SourceFile is the source file path.
	SourceFile string `json:"source_file"`

	// ChunkIndex is the chunk's 0-based position within its section.
	ChunkIndex int `json:"chunk_index"`

	// LineStart and LineEnd are the source line span of the originating
	// section.
	LineStart int `json:"line_start"`
	LineEnd   int `json:"line_end"`
}

// ContentChunk is an immutable unit of retrievable text produced by the
// chunker. Identity (a point ID) is assigned at persistence time, not here.
type ContentChunk struct {
	// Text is the chunk text. Never empty.
	Text string

	// TokenCount is the codec token count of Text, recomputed at creation.
	TokenCount int

	// HeadingPath is the heading ancestry snapshot at creation.
	HeadingPath []string

	// SourceFile is the source file path.
	SourceFile string

	// LineStart and LineEnd are inherited from the originating section.
	LineStart int
	LineEnd   int

	// ChunkIndex is the 0-based position within the originating section.
	ChunkIndex int

	// Metadata holds the retrieval metadata attached at persistence.
	Metadata Metadata
}
