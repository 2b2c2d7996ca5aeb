package vectorstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// chromemTracer for OpenTelemetry instrumentation.
var chromemTracer = otel.Tracer("docquery.vectorstore.chromem")

// ChromemConfig holds configuration for the chromem-go embedded store.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means in-memory
	// only, which is what tests and one-off runs want.
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// CollectionName is the collection this store operates on.
	CollectionName string
}

// Validate validates the configuration.
func (c ChromemConfig) Validate() error {
	if c.CollectionName == "" {
		return fmt.Errorf("%w: collection name required", ErrInvalidConfig)
	}
	return nil
}

// ChromemStore implements the Store interface using chromem-go, an
// embeddable pure-Go vector database. No external service is needed, which
// makes it the development and test backend.
//
// chromem-go has no payload listing API, so the store keeps a registry of
// typed payloads alongside the index to serve Scroll. The registry is
// in-memory; with a persistent Path the vectors survive restarts but Scroll
// only sees points upserted in the current process.
type ChromemStore struct {
	db     *chromem.DB
	config ChromemConfig
	logger *zap.Logger

	mu         sync.RWMutex
	collection *chromem.Collection
	payloads   map[string]map[string]interface{}
	vectorSize int
}

// NewChromemStore creates a ChromemStore bound to the configured collection.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if err := ValidateCollectionName(config.CollectionName); err != nil {
		return nil, fmt.Errorf("validating collection name: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		db  *chromem.DB
		err error
	)
	if config.Path != "" {
		path, pathErr := expandChromemPath(config.Path)
		if pathErr != nil {
			return nil, fmt.Errorf("expanding path: %w", pathErr)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", path, err)
		}
		db, err = chromem.NewPersistentDB(path, config.Compress)
	} else {
		db = chromem.NewDB()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &ChromemStore{
		db:       db,
		config:   config,
		logger:   logger,
		payloads: make(map[string]map[string]interface{}),
	}

	// Reopen an existing collection so a persistent store is usable
	// without another CreateCollection call.
	store.collection = db.GetCollection(config.CollectionName, embeddingFunc)

	logger.Info("chromem store initialized",
		zap.String("path", config.Path),
		zap.String("collection", config.CollectionName),
	)

	return store, nil
}

// expandChromemPath expands ~ to the home directory.
func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// embeddingFunc rejects calls. All vectors are precomputed by the embedding
// provider; chromem must never generate its own.
func embeddingFunc(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("embeddings must be precomputed")
}

// getCollection returns the bound collection, or ErrCollectionNotFound.
// Callers must hold at least a read lock.
func (s *ChromemStore) getCollection() (*chromem.Collection, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, s.config.CollectionName)
	}
	return s.collection, nil
}

// Upsert inserts or replaces points in the collection.
func (s *ChromemStore) Upsert(ctx context.Context, points []Point) error {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Upsert")
	defer span.End()

	span.SetAttributes(
		attribute.Int("point_count", len(points)),
		attribute.String("collection", s.config.CollectionName),
	)

	if len(points) == 0 {
		return fmt.Errorf("%w: nothing to upsert", ErrEmptyPoints)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.getCollection()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		content, _ := p.Payload["text"].(string)
		metadata := make(map[string]string, len(p.Payload))
		for k, v := range p.Payload {
			if k == "text" {
				continue
			}
			metadata[k] = fmt.Sprint(v)
		}
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   content,
			Embedding: p.Vector,
			Metadata:  metadata,
		}
	}

	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upserting points to collection %s: %w", s.config.CollectionName, err)
	}

	for _, p := range points {
		payload := make(map[string]interface{}, len(p.Payload))
		for k, v := range p.Payload {
			payload[k] = v
		}
		s.payloads[p.ID] = payload
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// matchesFilter reports whether a payload satisfies every filter entry.
// Values are compared through their string form, matching the string
// metadata chromem stores.
func matchesFilter(payload map[string]interface{}, filter Filter) bool {
	for k, want := range filter {
		v, ok := payload[k]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

// Search performs similarity search over the collection.
func (s *ChromemStore) Search(ctx context.Context, vector []float32, limit int, filter Filter, minScore float32) ([]ScoredPoint, error) {
	ctx, span := chromemTracer.Start(ctx, "ChromemStore.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", s.config.CollectionName),
		attribute.Int("limit", limit),
	)

	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, err := s.getCollection()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// chromem rejects nResults above the document count.
	count := collection.Count()
	if count == 0 {
		span.SetStatus(codes.Ok, "empty collection")
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	var where map[string]string
	if len(filter) > 0 {
		where = map[string]string(filter)
	}

	results, err := collection.QueryEmbedding(ctx, vector, limit, where, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("searching collection %s: %w", s.config.CollectionName, err)
	}

	scored := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		if minScore > 0 && r.Similarity < minScore {
			continue
		}
		sp := ScoredPoint{Score: r.Similarity}
		sp.ID = r.ID
		if payload, ok := s.payloads[r.ID]; ok {
			sp.Payload = payload
		} else {
			payload := make(map[string]interface{}, len(r.Metadata)+1)
			for k, v := range r.Metadata {
				payload[k] = v
			}
			payload["text"] = r.Content
			sp.Payload = payload
		}
		scored = append(scored, sp)
	}

	span.SetAttributes(attribute.Int("results_count", len(scored)))
	span.SetStatus(codes.Ok, "success")
	return scored, nil
}

// Scroll returns up to limit points matching filter, in ID order.
func (s *ChromemStore) Scroll(ctx context.Context, filter Filter, limit int) ([]Point, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.Scroll")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", s.config.CollectionName),
		attribute.Int("limit", limit),
	)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getCollection(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids := make([]string, 0, len(s.payloads))
	for id := range s.payloads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	points := make([]Point, 0, limit)
	for _, id := range ids {
		payload := s.payloads[id]
		if !matchesFilter(payload, filter) {
			continue
		}
		points = append(points, Point{ID: id, Payload: payload})
		if len(points) == limit {
			break
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(points)))
	span.SetStatus(codes.Ok, "success")
	return points, nil
}

// CreateCollection creates the bound collection.
func (s *ChromemStore) CreateCollection(ctx context.Context, vectorSize int) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.CreateCollection")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", s.config.CollectionName),
		attribute.Int("vector_size", vectorSize),
	)

	if vectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive, got %d", ErrInvalidConfig, vectorSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection, err := s.db.GetOrCreateCollection(s.config.CollectionName, nil, embeddingFunc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", s.config.CollectionName, err)
	}

	s.collection = collection
	s.vectorSize = vectorSize

	span.SetStatus(codes.Ok, "success")
	return nil
}

// DeleteCollection deletes the bound collection and all its points.
func (s *ChromemStore) DeleteCollection(ctx context.Context) error {
	_, span := chromemTracer.Start(ctx, "ChromemStore.DeleteCollection")
	defer span.End()

	span.SetAttributes(attribute.String("collection", s.config.CollectionName))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.config.CollectionName); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting collection %s: %w", s.config.CollectionName, err)
	}

	s.collection = nil
	s.payloads = make(map[string]map[string]interface{})
	s.vectorSize = 0

	span.SetStatus(codes.Ok, "success")
	return nil
}

// CollectionExists checks if the bound collection exists.
func (s *ChromemStore) CollectionExists(ctx context.Context) (bool, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.CollectionExists")
	defer span.End()

	span.SetAttributes(attribute.String("collection", s.config.CollectionName))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.collection != nil {
		return true, nil
	}
	return s.db.GetCollection(s.config.CollectionName, embeddingFunc) != nil, nil
}

// GetCollectionInfo returns metadata about the bound collection.
func (s *ChromemStore) GetCollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	_, span := chromemTracer.Start(ctx, "ChromemStore.GetCollectionInfo")
	defer span.End()

	span.SetAttributes(attribute.String("collection", s.config.CollectionName))

	s.mu.RLock()
	defer s.mu.RUnlock()

	collection, err := s.getCollection()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection not found")
		return nil, ErrCollectionNotFound
	}

	info := &CollectionInfo{
		Name:       s.config.CollectionName,
		PointCount: collection.Count(),
		VectorSize: s.vectorSize,
	}

	span.SetAttributes(attribute.Int("point_count", info.PointCount))
	span.SetStatus(codes.Ok, "success")
	return info, nil
}

// Close is a no-op for the embedded store.
func (s *ChromemStore) Close() error {
	return nil
}

// Ensure ChromemStore implements Store interface.
var _ Store = (*ChromemStore)(nil)
