// Package tokenizer provides sub-word token counting for chunk sizing.
//
// Token counts drive chunk boundary decisions only; they carry no semantic
// meaning. The default encoding matches what OpenAI-family embedding models
// use (cl100k_base).
package tokenizer

import (
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// ErrUnknownEncoding indicates the requested encoding name is not supported.
var ErrUnknownEncoding = errors.New("unknown tokenizer encoding")

// Codec encodes text into model token units and back.
//
// Implementations must be deterministic: the same text always yields the
// same token sequence. Codec is safe for concurrent use.
type Codec interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int

	// Encode converts text into token IDs.
	Encode(text string) []int

	// Decode converts token IDs back into text.
	Decode(tokens []int) string
}

// Tiktoken is a Codec backed by the tiktoken BPE tokenizer.
type Tiktoken struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTiktoken creates a Codec for the given encoding name.
// An empty name selects DefaultEncoding.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownEncoding, encoding, err)
	}

	return &Tiktoken{enc: enc, encoding: encoding}, nil
}

// Encoding returns the configured encoding name.
func (t *Tiktoken) Encoding() string {
	return t.encoding
}

// CountTokens returns the number of tokens in text.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.Encode(text))
}

// Encode converts text into token IDs. Special tokens are treated as
// ordinary text.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// Decode converts token IDs back into text.
func (t *Tiktoken) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

var _ Codec = (*Tiktoken)(nil)
