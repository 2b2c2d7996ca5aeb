// Package document defines the structured-document model supplied by an
// external parser.
//
// The chunker never reads raw files; it consumes Documents whose sections
// were already extracted upstream. Nesting between sections is implied by
// heading level, not by an explicit tree.
package document

import (
	"errors"
	"fmt"
)

// Sentinel errors for document validation.
var (
	// ErrEmptyDocument indicates a document with no usable content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrInvalidSection indicates a section with a missing heading or
	// an out-of-range heading level.
	ErrInvalidSection = errors.New("invalid section")
)

// Section is a contiguous region of a document under one heading.
// Sections appear in document order.
type Section struct {
	// Heading is the section heading text.
	Heading string `json:"heading"`

	// Level is the heading level, 1 (top) through 6.
	Level int `json:"level"`

	// Content is the section body text.
	Content string `json:"content"`

	// LineStart and LineEnd are the source line span of the section.
	LineStart int `json:"line_start"`
	LineEnd   int `json:"line_end"`
}

// Validate checks the section's heading and level.
// Line spans are the caller's responsibility and are not validated here.
func (s Section) Validate() error {
	if s.Heading == "" {
		return fmt.Errorf("%w: heading required", ErrInvalidSection)
	}
	if s.Level < 1 || s.Level > 6 {
		return fmt.Errorf("%w: heading level must be 1-6, got %d", ErrInvalidSection, s.Level)
	}
	return nil
}

// Document is a parsed long-form document with ordered sections and the
// metadata carried from its front matter.
type Document struct {
	// FilePath is the source file path.
	FilePath string `json:"file_path"`

	// Title is the document title.
	Title string `json:"title"`

	// Chapter is the chapter identifier the document belongs to.
	Chapter string `json:"chapter"`

	// Description is a short summary carried from front matter.
	Description string `json:"description"`

	// Keywords are search keywords carried from front matter.
	Keywords []string `json:"keywords"`

	// URLPath is the canonical URL path of the rendered document.
	URLPath string `json:"url_path"`

	// Content is the raw body for documents where the parser found no
	// headings. Empty when Sections is populated.
	Content string `json:"content,omitempty"`

	// Sections are the document sections in document order.
	Sections []Section `json:"sections"`
}

// Validate checks that the document carries at least a title or file path
// and that every section is well formed.
func (d *Document) Validate() error {
	if d.Title == "" && d.FilePath == "" {
		return fmt.Errorf("%w: title or file path required", ErrEmptyDocument)
	}
	for i, sec := range d.Sections {
		if err := sec.Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
	}
	return nil
}
