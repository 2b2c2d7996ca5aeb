// Package chunker splits structured documents into bounded, context-preserving
// text units ready for embedding and retrieval.
//
// Chunks respect heading boundaries, target a [MinChunkSize, MaxChunkSize]
// token window, and carry an overlap fragment between consecutive chunks of
// the same section for context continuity. Output is deterministic: the same
// document and configuration always produce byte-identical chunks.
package chunker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docquery/internal/document"
	"github.com/fyrsmithlabs/docquery/internal/tokenizer"
)

// Sentinel errors for chunking.
var (
	// ErrInvalidConfig indicates invalid chunk size bounds.
	ErrInvalidConfig = errors.New("invalid chunker configuration")

	// ErrEmptyDocument indicates a nil document or one with no content.
	ErrEmptyDocument = errors.New("empty document")
)

// paragraphSplit matches blank-line paragraph boundaries.
var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// syntheticHeading is used when a document carries no headings at all.
const syntheticHeading = "Introduction"

// Config holds chunk sizing bounds in codec tokens.
type Config struct {
	// MinChunkSize is the minimum tokens per chunk. A section's terminal
	// remainder chunk may fall below it.
	MinChunkSize int

	// MaxChunkSize is the maximum tokens per chunk. Must exceed MinChunkSize.
	MaxChunkSize int

	// OverlapSize is the number of tail tokens carried into the next chunk
	// of the same section. Must be smaller than MinChunkSize.
	OverlapSize int
}

// DefaultConfig returns the 400/600/50 window used for textbook content.
func DefaultConfig() Config {
	return Config{
		MinChunkSize: 400,
		MaxChunkSize: 600,
		OverlapSize:  50,
	}
}

// Validate checks the size bounds. Violations are fatal at construction.
func (c Config) Validate() error {
	if c.MinChunkSize <= 0 {
		return fmt.Errorf("%w: min chunk size must be positive, got %d", ErrInvalidConfig, c.MinChunkSize)
	}
	if c.MaxChunkSize <= c.MinChunkSize {
		return fmt.Errorf("%w: max chunk size (%d) must exceed min (%d)", ErrInvalidConfig, c.MaxChunkSize, c.MinChunkSize)
	}
	if c.OverlapSize < 0 {
		return fmt.Errorf("%w: overlap size cannot be negative, got %d", ErrInvalidConfig, c.OverlapSize)
	}
	if c.OverlapSize >= c.MinChunkSize {
		return fmt.Errorf("%w: overlap size (%d) must be smaller than min chunk size (%d)", ErrInvalidConfig, c.OverlapSize, c.MinChunkSize)
	}
	return nil
}

// SemanticChunker converts a structured document into an ordered sequence
// of ContentChunks. It is stateless between calls and safe for concurrent
// use as long as the codec is.
type SemanticChunker struct {
	config Config
	codec  tokenizer.Codec
	logger *zap.Logger
}

// New creates a SemanticChunker. The codec supplies token counts for all
// sizing decisions.
func New(config Config, codec tokenizer.Codec, logger *zap.Logger) (*SemanticChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, fmt.Errorf("%w: codec required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SemanticChunker{
		config: config,
		codec:  codec,
		logger: logger,
	}, nil
}

// ChunkDocument chunks a single document.
//
// Sections must arrive in document order; the chunker maintains the heading
// ancestry as a level-keyed stack across them. A document with no sections
// is treated as one synthetic level-1 "Introduction" section over its raw
// content.
func (c *SemanticChunker) ChunkDocument(doc *document.Document) ([]ContentChunk, error) {
	if doc == nil {
		return nil, ErrEmptyDocument
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	sections := doc.Sections
	if len(sections) == 0 {
		if strings.TrimSpace(doc.Content) == "" {
			return nil, fmt.Errorf("%w: %s has no sections and no content", ErrEmptyDocument, doc.FilePath)
		}
		sections = []document.Section{{
			Heading:   syntheticHeading,
			Level:     1,
			Content:   doc.Content,
			LineStart: 1,
			LineEnd:   1 + strings.Count(doc.Content, "\n"),
		}}
	}

	var (
		chunks []ContentChunk
		path   HeadingPath
	)

	for _, sec := range sections {
		path = path.Push(sec.Level, sec.Heading)
		chunks = append(chunks, c.chunkSection(doc, sec, path.Clone())...)
	}

	c.logger.Debug("chunked document",
		zap.String("file", doc.FilePath),
		zap.Int("sections", len(sections)),
		zap.Int("chunks", len(chunks)),
	)

	return chunks, nil
}

// ChunkDocuments chunks multiple documents, skipping any that fail and
// logging the failure. Results preserve document order.
func (c *SemanticChunker) ChunkDocuments(docs []*document.Document) []ContentChunk {
	var all []ContentChunk
	for _, doc := range docs {
		chunks, err := c.ChunkDocument(doc)
		if err != nil {
			c.logger.Error("failed to chunk document",
				zap.String("file", fileOf(doc)),
				zap.Error(err),
			)
			continue
		}
		all = append(all, chunks...)
	}
	return all
}

func fileOf(doc *document.Document) string {
	if doc == nil {
		return ""
	}
	return doc.FilePath
}

// chunkSection emits one chunk for a section that fits within MaxChunkSize,
// or splits it along paragraph boundaries otherwise.
func (c *SemanticChunker) chunkSection(doc *document.Document, sec document.Section, path HeadingPath) []ContentChunk {
	if c.codec.CountTokens(sec.Content) <= c.config.MaxChunkSize {
		return []ContentChunk{c.newChunk(doc, sec, path, sec.Content, 0)}
	}
	return c.splitSection(doc, sec, path)
}

// splitSection greedily accumulates paragraphs into chunks.
//
// A buffer closes when the next paragraph would push it past MaxChunkSize
// and it already holds MinChunkSize tokens; the next buffer is seeded with
// the closed buffer's last OverlapSize tokens. A buffer still below
// MinChunkSize takes the paragraph anyway rather than emitting an
// undersized chunk, so a single paragraph larger than MaxChunkSize is
// emitted whole and unsplit.
func (c *SemanticChunker) splitSection(doc *document.Document, sec document.Section, path HeadingPath) []ContentChunk {
	var (
		chunks     []ContentChunk
		buffer     string
		bufTokens  int
		chunkIndex int
	)

	for _, para := range splitParagraphs(sec.Content) {
		paraTokens := c.codec.CountTokens(para)

		if bufTokens+paraTokens > c.config.MaxChunkSize {
			if bufTokens >= c.config.MinChunkSize {
				chunks = append(chunks, c.newChunk(doc, sec, path, buffer, chunkIndex))
				chunkIndex++

				buffer = c.overlapText(buffer) + "\n\n" + para
				bufTokens = c.codec.CountTokens(buffer)
				continue
			}
			// Undersized buffer: force-append so no chunk is emitted
			// below MinChunkSize mid-section.
			buffer += "\n\n" + para
			bufTokens += paraTokens
			continue
		}

		if buffer == "" {
			buffer = para
		} else {
			buffer += "\n\n" + para
		}
		bufTokens += paraTokens
	}

	// Terminal remainder: emitted regardless of MinChunkSize.
	if strings.TrimSpace(buffer) != "" {
		chunks = append(chunks, c.newChunk(doc, sec, path, buffer, chunkIndex))
	}

	return chunks
}

// splitParagraphs splits text on blank-line boundaries, dropping empties.
func splitParagraphs(text string) []string {
	parts := paragraphSplit.Split(text, -1)
	paras := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// overlapText returns the last OverlapSize tokens of text, decoded. Text
// at or under the overlap size is returned whole.
func (c *SemanticChunker) overlapText(text string) string {
	tokens := c.codec.Encode(text)
	if len(tokens) <= c.config.OverlapSize {
		return text
	}
	return c.codec.Decode(tokens[len(tokens)-c.config.OverlapSize:])
}

// newChunk builds a ContentChunk with a recomputed token count and the
// metadata snapshot for the current heading path.
func (c *SemanticChunker) newChunk(doc *document.Document, sec document.Section, path HeadingPath, text string, chunkIndex int) ContentChunk {
	text = strings.TrimSpace(text)

	return ContentChunk{
		Text:        text,
		TokenCount:  c.codec.CountTokens(text),
		HeadingPath: path.Strings(),
		SourceFile:  doc.FilePath,
		LineStart:   sec.LineStart,
		LineEnd:     sec.LineEnd,
		ChunkIndex:  chunkIndex,
		Metadata: Metadata{
			Chapter:     doc.Chapter,
			Title:       doc.Title,
			Section:     sec.Heading,
			HeadingPath: path.String(),
			URL:         doc.URLPath,
			Description: doc.Description,
			Keywords:    doc.Keywords,
			SourceFile:  doc.FilePath,
			ChunkIndex:  chunkIndex,
			LineStart:   sec.LineStart,
			LineEnd:     sec.LineEnd,
		},
	}
}
