package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docquery/internal/chunker"
	"github.com/fyrsmithlabs/docquery/internal/config"
	"github.com/fyrsmithlabs/docquery/internal/embeddings"
	"github.com/fyrsmithlabs/docquery/internal/logging"
	"github.com/fyrsmithlabs/docquery/internal/tokenizer"
	"github.com/fyrsmithlabs/docquery/internal/vectorstore"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    vectorstore.Store
	embedder embeddings.Provider
}

// newApp loads configuration and wires the logger and vector store.
// The embedding provider is wired separately because the collection
// subcommands do not need one.
func newApp(withEmbedder bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := vectorstore.New(vectorstore.Options{
		Provider:   cfg.VectorStore.Provider,
		Collection: cfg.VectorStore.Collection,
		Host:       cfg.VectorStore.Host,
		Port:       cfg.VectorStore.Port,
		UseTLS:     cfg.VectorStore.UseTLS,
		Path:       cfg.VectorStore.Path,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, store: store}

	if withEmbedder {
		embedder, err := newEmbedder(cfg, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		a.embedder = embedder
	}

	return a, nil
}

// newEmbedder builds the provider with retries and, when enabled, the
// LRU cache stacked on top.
func newEmbedder(cfg *config.Config, logger *zap.Logger) (embeddings.Provider, error) {
	provider, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
		CacheDir:   cfg.Embedding.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	embedder := embeddings.WithRetry(provider, embeddings.RetryPolicy{
		MaxAttempts:    cfg.Embedding.MaxRetries,
		InitialBackoff: cfg.Embedding.RetryBackoff,
	}, logger)

	if cfg.Embedding.CacheSize > 0 {
		cached, err := embeddings.WithCache(embedder, cfg.Embedding.Model, cfg.Embedding.CacheSize, logger)
		if err != nil {
			return nil, fmt.Errorf("creating embedding cache: %w", err)
		}
		return cached, nil
	}
	return embedder, nil
}

// newChunker builds the semantic chunker from configuration.
func (a *app) newChunker() (*chunker.SemanticChunker, error) {
	codec, err := tokenizer.NewTiktoken(a.cfg.Chunking.Encoding)
	if err != nil {
		return nil, fmt.Errorf("creating tokenizer: %w", err)
	}

	return chunker.New(chunker.Config{
		MinChunkSize: a.cfg.Chunking.MinChunkSize,
		MaxChunkSize: a.cfg.Chunking.MaxChunkSize,
		OverlapSize:  a.cfg.Chunking.OverlapSize,
	}, codec, a.logger)
}

// close releases app resources.
func (a *app) close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}
