package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/docquery/internal/bm25"
	"github.com/fyrsmithlabs/docquery/internal/vectorstore"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("docquery.retrieval")

// Embedder is the subset of the embedding provider retrieval needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config controls retrieval behavior.
type Config struct {
	// TopK is the number of results returned to the caller.
	TopK int

	// RetrievalTopK caps each retrieval path before fusion. A wider
	// per-path window gives fusion more overlap to work with.
	RetrievalTopK int

	// RRFK is the reciprocal rank fusion constant.
	RRFK int

	// MinScore drops vector hits below this cosine similarity.
	// Zero disables the threshold.
	MinScore float32

	// CandidateLimit caps how many points the lexical path scrolls
	// into memory for BM25 scoring.
	CandidateLimit int

	// UseHybrid enables the BM25 path and fusion. When false retrieval
	// is vector-only.
	UseHybrid bool
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.RetrievalTopK == 0 {
		c.RetrievalTopK = 20
	}
	if c.RRFK == 0 {
		c.RRFK = DefaultRRFK
	}
	if c.CandidateLimit == 0 {
		c.CandidateLimit = 1000
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.RetrievalTopK < c.TopK {
		return fmt.Errorf("%w: retrieval_top_k %d below top_k %d", ErrInvalidConfig, c.RetrievalTopK, c.TopK)
	}
	if c.RRFK <= 0 {
		return fmt.Errorf("%w: rrf_k must be positive, got %d", ErrInvalidConfig, c.RRFK)
	}
	if c.CandidateLimit <= 0 {
		return fmt.Errorf("%w: candidate_limit must be positive, got %d", ErrInvalidConfig, c.CandidateLimit)
	}
	return nil
}

// HybridRetriever retrieves chunks by fusing dense vector search with BM25
// lexical scoring. Both paths run concurrently against the same store and
// share the same metadata filter, so they rank over the same candidate
// universe.
type HybridRetriever struct {
	store    vectorstore.Store
	embedder Embedder
	scorer   *bm25.Scorer
	config   Config
	logger   *zap.Logger
}

// New creates a HybridRetriever.
func New(store vectorstore.Store, embedder Embedder, config Config, logger *zap.Logger) (*HybridRetriever, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &HybridRetriever{
		store:    store,
		embedder: embedder,
		scorer:   bm25.NewScorer(bm25.DefaultK1, bm25.DefaultB),
		config:   config,
		logger:   logger,
	}, nil
}

// Retrieve returns the top results for query, restricted to points matching
// filter. With hybrid mode enabled the vector and lexical paths run in
// parallel and their rankings are fused; either path failing fails the
// whole retrieval.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, filter vectorstore.Filter) ([]RetrievedChunk, error) {
	ctx, span := tracer.Start(ctx, "HybridRetriever.Retrieve")
	defer span.End()

	span.SetAttributes(
		attribute.Int("top_k", r.config.TopK),
		attribute.Bool("hybrid", r.config.UseHybrid),
	)

	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if !r.config.UseHybrid {
		chunks, err := r.vectorSearch(ctx, query, filter)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("%w: vector search: %v", ErrRetrievalFailed, err)
		}
		chunks = truncate(chunks, r.config.TopK)
		span.SetAttributes(attribute.Int("results_count", len(chunks)))
		span.SetStatus(codes.Ok, "success")
		return chunks, nil
	}

	var (
		vectorChunks  []RetrievedChunk
		lexicalChunks []RetrievedChunk
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chunks, err := r.vectorSearch(gctx, query, filter)
		if err != nil {
			return fmt.Errorf("vector search: %w", err)
		}
		vectorChunks = chunks
		return nil
	})
	g.Go(func() error {
		chunks, err := r.lexicalSearch(gctx, query, filter)
		if err != nil {
			return fmt.Errorf("lexical search: %w", err)
		}
		lexicalChunks = chunks
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	r.logger.Debug("retrieval paths complete",
		zap.Int("vector_results", len(vectorChunks)),
		zap.Int("lexical_results", len(lexicalChunks)),
	)

	fused := ReciprocalRankFusion(r.config.RRFK, vectorChunks, lexicalChunks)
	fused = truncate(fused, r.config.TopK)

	span.SetAttributes(attribute.Int("results_count", len(fused)))
	span.SetStatus(codes.Ok, "success")
	return fused, nil
}

// vectorSearch embeds the query and runs similarity search.
func (r *HybridRetriever) vectorSearch(ctx context.Context, query string, filter vectorstore.Filter) ([]RetrievedChunk, error) {
	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := r.store.Search(ctx, vector, r.config.RetrievalTopK, filter, r.config.MinScore)
	if err != nil {
		return nil, err
	}

	chunks := make([]RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunk := chunkFromPayload(hit.ID, hit.Payload)
		chunk.Score = float64(hit.Score)
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// lexicalSearch scrolls matching points and ranks them with BM25. Only
// positively scoring chunks are kept; BM25 zero means no query term
// overlap at all.
func (r *HybridRetriever) lexicalSearch(ctx context.Context, query string, filter vectorstore.Filter) ([]RetrievedChunk, error) {
	points, err := r.store.Scroll(ctx, filter, r.config.CandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}

	docs := make([]bm25.Doc, 0, len(points))
	payloads := make(map[string]map[string]interface{}, len(points))
	for _, p := range points {
		text, _ := p.Payload["text"].(string)
		docs = append(docs, bm25.Doc{ID: p.ID, Text: text})
		payloads[p.ID] = p.Payload
	}

	ranked := r.scorer.Score(query, docs)

	chunks := make([]RetrievedChunk, 0, r.config.RetrievalTopK)
	for _, ds := range ranked {
		if ds.Score <= 0 {
			continue
		}
		chunk := chunkFromPayload(ds.ID, payloads[ds.ID])
		chunk.Score = ds.Score
		chunks = append(chunks, chunk)
		if len(chunks) == r.config.RetrievalTopK {
			break
		}
	}
	return chunks, nil
}

// chunkFromPayload maps a stored payload onto a RetrievedChunk.
func chunkFromPayload(id string, payload map[string]interface{}) RetrievedChunk {
	chunk := RetrievedChunk{ID: id, Metadata: payload}
	if payload == nil {
		return chunk
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Content = v
	}
	if v, ok := payload["chapter"].(string); ok {
		chunk.Chapter = v
	}
	if v, ok := payload["section"].(string); ok {
		chunk.Section = v
	}
	if v, ok := payload["url"].(string); ok {
		chunk.URL = v
	}
	return chunk
}

// truncate limits chunks to at most n results.
func truncate(chunks []RetrievedChunk, n int) []RetrievedChunk {
	if len(chunks) > n {
		return chunks[:n]
	}
	return chunks
}
