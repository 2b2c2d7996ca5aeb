package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/docquery/internal/chunker"
	"github.com/fyrsmithlabs/docquery/internal/document"
	"github.com/fyrsmithlabs/docquery/internal/vectorstore"
)

// wordCodec counts whitespace-separated words as tokens.
type wordCodec struct {
	words []string
	index map[string]int
}

func newWordCodec() *wordCodec {
	return &wordCodec{index: make(map[string]int)}
}

func (c *wordCodec) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func (c *wordCodec) Encode(text string) []int {
	fields := strings.Fields(text)
	ids := make([]int, len(fields))
	for i, w := range fields {
		id, ok := c.index[w]
		if !ok {
			id = len(c.words)
			c.words = append(c.words, w)
			c.index[w] = id
		}
		ids[i] = id
	}
	return ids
}

func (c *wordCodec) Decode(tokens []int) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = c.words[t]
	}
	return strings.Join(words, " ")
}

// fakeEmbedder produces fixed-size vectors and records batch sizes.
type fakeEmbedder struct {
	batches []int
	err     error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, len(texts))
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 2, 3}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }
func (f *fakeEmbedder) Close() error   { return nil }

// fakeStore records lifecycle calls and upserted points.
type fakeStore struct {
	vectorstore.Store

	exists     bool
	created    int
	createdDim int
	deleted    int
	upserts    [][]vectorstore.Point
	upsertErr  error
}

func (f *fakeStore) CollectionExists(_ context.Context) (bool, error) { return f.exists, nil }

func (f *fakeStore) CreateCollection(_ context.Context, vectorSize int) error {
	f.created++
	f.createdDim = vectorSize
	f.exists = true
	return nil
}

func (f *fakeStore) DeleteCollection(_ context.Context) error {
	f.deleted++
	f.exists = false
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, points []vectorstore.Point) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, points)
	return nil
}

func newTestChunker(t *testing.T) *chunker.SemanticChunker {
	t.Helper()
	c, err := chunker.New(chunker.Config{MinChunkSize: 5, MaxChunkSize: 50, OverlapSize: 2}, newWordCodec(), zap.NewNop())
	require.NoError(t, err)
	return c
}

func sampleDocs() []*document.Document {
	return []*document.Document{
		{
			FilePath: "ch01.json",
			Title:    "Kinematics",
			Chapter:  "kinematics",
			Keywords: []string{"kinematics"},
			URLPath:  "/book/kinematics",
			Sections: []document.Section{
				{Heading: "Overview", Level: 1, Content: "intro words about robot kinematics and frames", LineStart: 1, LineEnd: 5},
				{Heading: "Jacobians", Level: 2, Content: "jacobian relates joint velocities to twists", LineStart: 6, LineEnd: 12},
			},
		},
		{
			FilePath: "ch02.json",
			Title:    "Dynamics",
			Chapter:  "dynamics",
			Sections: []document.Section{
				{Heading: "Overview", Level: 1, Content: "newton euler and lagrangian formulations compared", LineStart: 1, LineEnd: 8},
			},
		},
	}
}

func newTestPipeline(t *testing.T, embedder *fakeEmbedder, store *fakeStore, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(newTestChunker(t), embedder, store, cfg, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, &fakeEmbedder{}, &fakeStore{}, Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(newTestChunker(t), nil, &fakeStore{}, Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(newTestChunker(t), &fakeEmbedder{}, nil, Config{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunNoDocuments(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, &fakeStore{}, Config{})

	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestRunCreatesCollection(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{})

	stats, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)

	assert.Equal(t, 1, store.created)
	assert.Equal(t, 3, store.createdDim, "collection dimension comes from the embedder")
	assert.Equal(t, 0, store.deleted)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 3, stats.Points)
}

func TestRunExistingCollectionKept(t *testing.T) {
	store := &fakeStore{exists: true}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{})

	_, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)

	assert.Equal(t, 0, store.created)
	assert.Equal(t, 0, store.deleted)
}

func TestRunRebuild(t *testing.T) {
	store := &fakeStore{exists: true}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{Rebuild: true})

	_, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)

	assert.Equal(t, 1, store.deleted)
	assert.Equal(t, 1, store.created)
}

func TestRunPayloadShape(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{})

	_, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)
	require.NotEmpty(t, store.upserts)

	point := store.upserts[0][0]
	assert.NotEmpty(t, point.ID)
	assert.Equal(t, []float32{1, 2, 3}, point.Vector)

	payload := point.Payload
	assert.Equal(t, "kinematics", payload["chapter"])
	assert.Equal(t, "Kinematics", payload["title"])
	assert.Equal(t, "Overview", payload["section"])
	assert.Equal(t, "Overview", payload["heading_path"])
	assert.Equal(t, "/book/kinematics", payload["url"])
	assert.Equal(t, "ch01.json", payload["source_file"])
	assert.Equal(t, 0, payload["chunk_index"])
	assert.Equal(t, 1, payload["line_start"])
	assert.Equal(t, 5, payload["line_end"])
	assert.NotEmpty(t, payload["text"])
	assert.NotEmpty(t, payload["created_at"])
	assert.NotZero(t, payload["token_count"])
}

func TestRunUniquePointIDs(t *testing.T) {
	store := &fakeStore{}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{})

	_, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, batch := range store.upserts {
		for _, point := range batch {
			assert.False(t, seen[point.ID], "duplicate point ID %s", point.ID)
			seen[point.ID] = true
		}
	}
	assert.Len(t, seen, 3)
}

func TestRunBatchesEmbedding(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{}
	p := newTestPipeline(t, embedder, store, Config{BatchSize: 2})

	_, err := p.Run(context.Background(), sampleDocs())
	require.NoError(t, err)

	// 3 chunks with batch size 2 -> batches of 2 and 1.
	assert.Equal(t, []int{2, 1}, embedder.batches)
}

func TestRunEmbeddingFailureAborts(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	p := newTestPipeline(t, embedder, store, Config{})

	_, err := p.Run(context.Background(), sampleDocs())
	assert.Error(t, err)
	assert.Empty(t, store.upserts)
}

func TestRunUpsertFailureAborts(t *testing.T) {
	store := &fakeStore{upsertErr: errors.New("store down")}
	p := newTestPipeline(t, &fakeEmbedder{}, store, Config{})

	_, err := p.Run(context.Background(), sampleDocs())
	assert.Error(t, err)
}
