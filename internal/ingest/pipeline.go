// Package ingest runs the chunk, embed, and upsert pipeline that populates
// the vector store from structured documents.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docquery/internal/chunker"
	"github.com/fyrsmithlabs/docquery/internal/document"
	"github.com/fyrsmithlabs/docquery/internal/embeddings"
	"github.com/fyrsmithlabs/docquery/internal/vectorstore"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("docquery.ingest")

// upsertBatchSize bounds how many points go into one upsert request.
const upsertBatchSize = 100

// Sentinel errors for the ingestion pipeline.
var (
	// ErrNoDocuments indicates an empty document set.
	ErrNoDocuments = errors.New("no documents to ingest")

	// ErrNoChunks indicates chunking produced nothing to index.
	ErrNoChunks = errors.New("no chunks produced")

	// ErrInvalidConfig indicates invalid pipeline configuration.
	ErrInvalidConfig = errors.New("invalid ingest configuration")
)

// Config controls pipeline batching.
type Config struct {
	// BatchSize is the number of chunk texts per embedding request.
	BatchSize int

	// Rebuild drops and recreates the collection before indexing.
	Rebuild bool
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	return nil
}

// Stats summarizes one pipeline run.
type Stats struct {
	Documents int           `json:"documents"`
	Chunks    int           `json:"chunks"`
	Points    int           `json:"points"`
	Duration  time.Duration `json:"duration"`
}

// Pipeline chunks documents, embeds the chunk texts, and upserts the
// resulting points into the vector store.
type Pipeline struct {
	chunker  *chunker.SemanticChunker
	embedder embeddings.Provider
	store    vectorstore.Store
	config   Config
	logger   *zap.Logger
}

// New creates a Pipeline.
func New(ch *chunker.SemanticChunker, embedder embeddings.Provider, store vectorstore.Store, config Config, logger *zap.Logger) (*Pipeline, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: chunker is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		chunker:  ch,
		embedder: embedder,
		store:    store,
		config:   config,
		logger:   logger,
	}, nil
}

// Run ingests docs and returns run statistics. Documents that fail to chunk
// are skipped and logged; embedding or upsert failures abort the run.
func (p *Pipeline) Run(ctx context.Context, docs []*document.Document) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	span.SetAttributes(
		attribute.Int("document_count", len(docs)),
		attribute.Bool("rebuild", p.config.Rebuild),
	)

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	start := time.Now()

	if err := p.ensureCollection(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	chunks := p.chunker.ChunkDocuments(docs)
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	p.logger.Info("chunking complete",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)

	points := 0
	for offset := 0; offset < len(chunks); offset += p.config.BatchSize {
		end := offset + p.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]

		if err := p.indexBatch(ctx, batch); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("indexing batch at offset %d: %w", offset, err)
		}
		points += len(batch)

		p.logger.Debug("batch indexed",
			zap.Int("offset", offset),
			zap.Int("batch_size", len(batch)),
		)
	}

	stats := &Stats{
		Documents: len(docs),
		Chunks:    len(chunks),
		Points:    points,
		Duration:  time.Since(start),
	}

	p.logger.Info("ingestion complete",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
		zap.Int("points", stats.Points),
		zap.Duration("duration", stats.Duration),
	)

	span.SetAttributes(attribute.Int("points", points))
	span.SetStatus(codes.Ok, "success")
	return stats, nil
}

// ensureCollection creates the collection if missing, dropping it first
// when a rebuild was requested.
func (p *Pipeline) ensureCollection(ctx context.Context) error {
	exists, err := p.store.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}

	if exists && p.config.Rebuild {
		p.logger.Info("rebuilding collection")
		if err := p.store.DeleteCollection(ctx); err != nil {
			return fmt.Errorf("deleting collection for rebuild: %w", err)
		}
		exists = false
	}

	if !exists {
		if err := p.store.CreateCollection(ctx, p.embedder.Dimension()); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
	}
	return nil
}

// indexBatch embeds one batch of chunks and upserts the points. Embedding
// and upsert stay batch-aligned so every vector pairs with its chunk.
func (p *Pipeline) indexBatch(ctx context.Context, batch []chunker.ContentChunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(batch))
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	points := make([]vectorstore.Point, len(batch))
	for i, chunk := range batch {
		points[i] = vectorstore.Point{
			ID:      uuid.New().String(),
			Vector:  vectors[i],
			Payload: chunkPayload(chunk, createdAt),
		}
	}

	for offset := 0; offset < len(points); offset += upsertBatchSize {
		end := offset + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := p.store.Upsert(ctx, points[offset:end]); err != nil {
			return fmt.Errorf("upserting points: %w", err)
		}
	}
	return nil
}

// chunkPayload flattens a chunk into the stored payload shape.
func chunkPayload(chunk chunker.ContentChunk, createdAt string) map[string]interface{} {
	return map[string]interface{}{
		"text":         chunk.Text,
		"chapter":      chunk.Metadata.Chapter,
		"title":        chunk.Metadata.Title,
		"section":      chunk.Metadata.Section,
		"heading_path": chunk.Metadata.HeadingPath,
		"url":          chunk.Metadata.URL,
		"description":  chunk.Metadata.Description,
		"keywords":     chunk.Metadata.Keywords,
		"source_file":  chunk.SourceFile,
		"chunk_index":  chunk.ChunkIndex,
		"token_count":  chunk.TokenCount,
		"line_start":   chunk.LineStart,
		"line_end":     chunk.LineEnd,
		"created_at":   createdAt,
	}
}
