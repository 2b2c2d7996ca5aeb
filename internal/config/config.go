// Package config provides configuration for the docquery engine.
//
// Configuration is an explicit struct constructed once at startup and passed
// into component constructors; there is no ambient global. Values come from
// hardcoded defaults, an optional YAML file, and environment variables, in
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/docquery/internal/logging"
)

// ErrInvalidConfig indicates invalid configuration values.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the complete docquery configuration.
type Config struct {
	Chunking    ChunkingConfig    `koanf:"chunking"`
	Retrieval   RetrievalConfig   `koanf:"retrieval"`
	Embedding   EmbeddingConfig   `koanf:"embedding"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Logging     logging.Config    `koanf:"logging"`
}

// ChunkingConfig holds semantic chunker bounds in codec tokens.
type ChunkingConfig struct {
	MinChunkSize int    `koanf:"min_chunk_size"`
	MaxChunkSize int    `koanf:"max_chunk_size"`
	OverlapSize  int    `koanf:"overlap_size"`
	Encoding     string `koanf:"encoding"`
}

// RetrievalConfig holds hybrid retrieval tuning.
type RetrievalConfig struct {
	// TopK is the final result count after fusion.
	TopK int `koanf:"top_k"`

	// RetrievalTopK caps each candidate path before fusion. Documents
	// ranked outside both windows are invisible to fusion; widen it to
	// trade latency for recall.
	RetrievalTopK int `koanf:"retrieval_top_k"`

	// RRFK is the reciprocal rank fusion constant.
	RRFK int `koanf:"rrf_k"`

	// MinScore is the minimum cosine similarity for the vector path.
	MinScore float32 `koanf:"min_score"`

	// CandidateLimit bounds the lexical candidate fetch.
	CandidateLimit int `koanf:"candidate_limit"`

	// UseHybrid enables the lexical path and fusion.
	UseHybrid bool `koanf:"use_hybrid"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the backend: tei, fastembed, or openai.
	Provider string `koanf:"provider"`

	Model      string `koanf:"model"`
	BaseURL    string `koanf:"base_url"`
	APIKey     string `koanf:"api_key"`
	Dimensions int    `koanf:"dimensions"`

	// BatchSize is the number of texts per provider call.
	BatchSize int `koanf:"batch_size"`

	// MaxRetries bounds retry attempts for transient provider failures.
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the initial backoff; it doubles per attempt.
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// CacheSize is the embedding LRU cache capacity. Zero disables caching.
	CacheSize int `koanf:"cache_size"`

	// CacheDir caches fastembed model files.
	CacheDir string `koanf:"cache_dir"`
}

// VectorStoreConfig holds vector index settings.
type VectorStoreConfig struct {
	// Provider selects the backend: qdrant or chromem.
	Provider string `koanf:"provider"`

	Host       string `koanf:"host"`
	Port       int    `koanf:"port"`
	Collection string `koanf:"collection"`
	UseTLS     bool   `koanf:"use_tls"`

	// Path is the chromem persistence directory. Empty means in-memory.
	Path string `koanf:"path"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			MinChunkSize: 400,
			MaxChunkSize: 600,
			OverlapSize:  50,
			Encoding:     "cl100k_base",
		},
		Retrieval: RetrievalConfig{
			TopK:           5,
			RetrievalTopK:  20,
			RRFK:           60,
			MinScore:       0,
			CandidateLimit: 1000,
			UseHybrid:      true,
		},
		Embedding: EmbeddingConfig{
			Provider:     "tei",
			Model:        "BAAI/bge-small-en-v1.5",
			BaseURL:      "http://localhost:8080",
			Dimensions:   384,
			BatchSize:    100,
			MaxRetries:   3,
			RetryBackoff: time.Second,
			CacheSize:    4096,
		},
		VectorStore: VectorStoreConfig{
			Provider:   "qdrant",
			Host:       "localhost",
			Port:       6334,
			Collection: "textbook_chunks",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the configuration for fatal errors.
func (c *Config) Validate() error {
	if c.Chunking.MinChunkSize <= 0 {
		return fmt.Errorf("%w: chunking.min_chunk_size must be positive", ErrInvalidConfig)
	}
	if c.Chunking.MaxChunkSize <= c.Chunking.MinChunkSize {
		return fmt.Errorf("%w: chunking.max_chunk_size must exceed min_chunk_size", ErrInvalidConfig)
	}
	if c.Chunking.OverlapSize < 0 || c.Chunking.OverlapSize >= c.Chunking.MinChunkSize {
		return fmt.Errorf("%w: chunking.overlap_size must be in [0, min_chunk_size)", ErrInvalidConfig)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.RetrievalTopK < c.Retrieval.TopK {
		return fmt.Errorf("%w: retrieval.retrieval_top_k must be at least top_k", ErrInvalidConfig)
	}
	if c.Retrieval.RRFK <= 0 {
		return fmt.Errorf("%w: retrieval.rrf_k must be positive", ErrInvalidConfig)
	}
	if c.Retrieval.CandidateLimit <= 0 {
		return fmt.Errorf("%w: retrieval.candidate_limit must be positive", ErrInvalidConfig)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding.dimensions must be positive", ErrInvalidConfig)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: embedding.batch_size must be positive", ErrInvalidConfig)
	}
	if c.Embedding.MaxRetries < 0 {
		return fmt.Errorf("%w: embedding.max_retries cannot be negative", ErrInvalidConfig)
	}
	if c.VectorStore.Collection == "" {
		return fmt.Errorf("%w: vectorstore.collection required", ErrInvalidConfig)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
