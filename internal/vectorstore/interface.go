// Package vectorstore provides vector index implementations for chunk
// storage and similarity search.
//
// A Store is bound to one collection at construction. Implementations are
// transport-agnostic: QdrantStore speaks gRPC to an external Qdrant server,
// ChromemStore embeds an in-process index for development and tests.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyPoints indicates empty or nil points.
	ErrEmptyPoints = errors.New("empty or nil points")

	// ErrConnectionFailed indicates backend connection issues.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Point is a stored vector with its chunk payload.
type Point struct {
	// ID is the point identifier, assigned at persistence time.
	ID string

	// Vector is the embedding. Length must match the collection's
	// configured dimensionality.
	Vector []float32

	// Payload carries the chunk record: text, chapter, title, section,
	// heading_path, url, description, keywords, source_file, chunk_index,
	// token_count, line_start, line_end, created_at.
	Payload map[string]interface{}
}

// ScoredPoint is a search hit. Score is cosine similarity in [-1, 1].
type ScoredPoint struct {
	Point
	Score float32
}

// Filter restricts operations to points whose payload matches every entry
// exactly. A nil or empty filter matches all points.
type Filter map[string]string

// CollectionInfo contains metadata about the bound collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// PointCount is the number of vectors in the collection.
	PointCount int `json:"point_count"`

	// VectorSize is the dimensionality of vectors in this collection.
	VectorSize int `json:"vector_size"`
}

// Store is the interface to a vector index bound to a single collection.
//
// Search and Scroll share filter semantics so the vector and lexical
// retrieval paths operate over the same candidate universe. Timeouts and
// retries are the implementation's responsibility; callers see failures
// after the retry budget is spent.
type Store interface {
	// Upsert inserts or replaces points in the collection.
	Upsert(ctx context.Context, points []Point) error

	// Search returns up to limit points nearest to vector, best first.
	// Hits scoring below minScore are dropped.
	Search(ctx context.Context, vector []float32, limit int, filter Filter, minScore float32) ([]ScoredPoint, error)

	// Scroll returns up to limit points matching filter, without ranking.
	// Vectors are not returned; only IDs and payloads.
	Scroll(ctx context.Context, filter Filter, limit int) ([]Point, error)

	// CreateCollection creates the bound collection with the given
	// dimensionality and cosine distance.
	CreateCollection(ctx context.Context, vectorSize int) error

	// DeleteCollection deletes the bound collection and all its points.
	DeleteCollection(ctx context.Context) error

	// CollectionExists reports whether the bound collection exists.
	CollectionExists(ctx context.Context) (bool, error)

	// GetCollectionInfo returns metadata about the bound collection.
	// Returns ErrCollectionNotFound if it does not exist.
	GetCollectionInfo(ctx context.Context) (*CollectionInfo, error)

	// Close releases the backend connection.
	Close() error
}
