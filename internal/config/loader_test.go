package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 600, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 50, cfg.Chunking.OverlapSize)
	assert.Equal(t, "cl100k_base", cfg.Chunking.Encoding)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 20, cfg.Retrieval.RetrievalTopK)
	assert.Equal(t, 60, cfg.Retrieval.RRFK)
	assert.True(t, cfg.Retrieval.UseHybrid)
	assert.Equal(t, "qdrant", cfg.VectorStore.Provider)
	assert.Equal(t, 6334, cfg.VectorStore.Port)
	assert.Equal(t, "textbook_chunks", cfg.VectorStore.Collection)
	assert.Equal(t, "tei", cfg.Embedding.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
chunking:
  min_chunk_size: 200
  max_chunk_size: 300
retrieval:
  top_k: 8
  retrieval_top_k: 32
  use_hybrid: false
vectorstore:
  provider: chromem
  collection: my_chunks
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Chunking.MinChunkSize)
	assert.Equal(t, 300, cfg.Chunking.MaxChunkSize)
	// Unset fields keep their defaults.
	assert.Equal(t, 50, cfg.Chunking.OverlapSize)
	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, 32, cfg.Retrieval.RetrievalTopK)
	assert.False(t, cfg.Retrieval.UseHybrid)
	assert.Equal(t, "chromem", cfg.VectorStore.Provider)
	assert.Equal(t, "my_chunks", cfg.VectorStore.Collection)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  top_k: 8\n"), 0o600))

	t.Setenv("DOCQUERY_RETRIEVAL__TOP_K", "12")
	t.Setenv("DOCQUERY_VECTORSTORE__HOST", "qdrant.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Retrieval.TopK)
	assert.Equal(t, "qdrant.internal", cfg.VectorStore.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("DOCQUERY_RETRIEVAL__TOP_K", "-1")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.yaml")
	require.NoError(t, os.WriteFile(path, make([]byte, maxConfigFileSize+1), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"retrieval_top_k below top_k", func(c *Config) { c.Retrieval.RetrievalTopK = 2 }},
		{"zero rrf_k", func(c *Config) { c.Retrieval.RRFK = 0 }},
		{"overlap at min", func(c *Config) { c.Chunking.OverlapSize = c.Chunking.MinChunkSize }},
		{"empty collection", func(c *Config) { c.VectorStore.Collection = "" }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}
