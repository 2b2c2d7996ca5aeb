// Package embeddings provides embedding generation via multiple providers.
//
// Providers are external collaborators: the retrieval engine calls them as
// black boxes returning fixed-length vectors. Transient failures (rate
// limits, temporary API errors) are retried here at the collaborator
// boundary, never inside the retrieval logic.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for embedding generation.
var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates a provider call failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrRateLimited indicates the provider rejected the call due to
	// rate limiting. Retryable.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrRetriesExhausted indicates all retry attempts failed.
	ErrRetriesExhausted = errors.New("embedding retries exhausted")
)

// Provider is the interface for embedding providers.
//
// EmbedDocuments is order-preserving: vector i corresponds to texts[i].
// Vectors have a fixed length equal to Dimension().
type Provider interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query. Some models
	// optimize differently for queries vs documents.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension for the current model.
	Dimension() int

	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is the provider type: "tei", "fastembed", or "openai".
	Provider string

	// Model is the embedding model name.
	Model string

	// BaseURL is the API base URL (TEI and OpenAI-compatible endpoints).
	BaseURL string

	// APIKey authenticates against the OpenAI provider.
	APIKey string

	// Dimensions is the vector length; required for the OpenAI provider,
	// detected from the model name otherwise.
	Dimensions int

	// CacheDir is the model cache directory (fastembed only).
	CacheDir string
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "tei", "":
		svc, err := NewService(Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return &teiProvider{Service: svc, dimension: detectDimensionFromModel(cfg.Model)}, nil
	case "fastembed":
		return NewFastEmbedProvider(FastEmbedConfig{
			Model:    cfg.Model,
			CacheDir: cfg.CacheDir,
		})
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// IsRetryable reports whether an embedding error is worth retrying.
// Rate limits and provider-side failures are transient; input and
// configuration errors are not.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrEmbeddingFailed)
}

// detectDimensionFromModel returns the embedding dimension for a model name,
// falling back to 384 (bge-small class models).
func detectDimensionFromModel(model string) int {
	if dim, ok := fastEmbedModelDimension(model); ok {
		return dim
	}
	switch {
	case strings.Contains(model, "text-embedding-3-large"):
		return 3072
	case strings.Contains(model, "text-embedding"):
		return 1536
	case strings.Contains(model, "base"):
		return 768
	case strings.Contains(model, "large"):
		return 1024
	default:
		return 384
	}
}

// teiProvider wraps Service to implement Provider.
type teiProvider struct {
	*Service
	dimension int
}

// Dimension returns the embedding dimension based on the configured model.
func (t *teiProvider) Dimension() int {
	return t.dimension
}

// Close is a no-op for TEI since it uses HTTP.
func (t *teiProvider) Close() error {
	return nil
}
