package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTEIServer(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewService(Config{BaseURL: server.URL, Model: "test-model"})
	require.NoError(t, err)
	return svc, server
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEmbedDocuments(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		inputs, ok := req.Inputs.([]interface{})
		require.True(t, ok)
		vectors := make([][]float32, len(inputs))
		for i := range vectors {
			vectors[i] = []float32{float32(i), float32(i) + 0.5}
		}
		require.NoError(t, json.NewEncoder(w).Encode(vectors))
	})

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0, 0.5}, vectors[0])
	assert.Equal(t, []float32{1, 1.5}, vectors[1])
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("server must not be called for empty input")
	})

	_, err := svc.EmbedDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEmbedDocumentsRateLimited(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := svc.EmbedDocuments(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRetryable(err))
}

func TestEmbedDocumentsServerError(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := svc.EmbedDocuments(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([][]float32{{1, 2}}))
	})

	_, err := svc.EmbedDocuments(context.Background(), []string{"one", "two"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbedQuery(t *testing.T) {
	svc, _ := newTEIServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req teiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is a jacobian", req.Inputs)
		require.NoError(t, json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}}))
	})

	vector, err := svc.EmbedQuery(context.Background(), "what is a jacobian")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbedQueryEmpty(t *testing.T) {
	svc, _ := newTEIServer(t, nil)

	_, err := svc.EmbedQuery(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
