// Package retrieval implements hybrid retrieval over indexed chunks,
// combining dense vector search with BM25 lexical scoring through
// reciprocal rank fusion.
package retrieval

import "errors"

// Sentinel errors for retrieval operations.
var (
	// ErrEmptyQuery indicates an empty or whitespace-only query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidConfig indicates invalid retriever configuration.
	ErrInvalidConfig = errors.New("invalid retrieval configuration")

	// ErrRetrievalFailed indicates one of the retrieval paths failed.
	// Hybrid retrieval has no partial results; either path failing fails
	// the whole operation.
	ErrRetrievalFailed = errors.New("retrieval failed")
)

// RetrievedChunk is a single retrieval result.
type RetrievedChunk struct {
	// ID is the point identifier in the vector store.
	ID string `json:"id"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Score is the chunk's relevance. After fusion it holds the
	// reciprocal rank fusion value, not the raw path score.
	Score float64 `json:"score"`

	// Chapter and Section locate the chunk in its source document.
	Chapter string `json:"chapter,omitempty"`
	Section string `json:"section,omitempty"`

	// URL points at the source page, when the document carries one.
	URL string `json:"url,omitempty"`

	// Metadata holds the full stored payload.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
