package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var body ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nomic-embed-text", body.Model)
		assert.Equal(t, "spicy breakfast", body.Prompt)

		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	vec, err := p.Embed(context.Background(), "spicy breakfast")
	require.NoError(t, err)

	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Embed(context.Background(), "x")
	assert.ErrorContains(t, err, "status 404")
}

func TestNormalizeZeroVector(t *testing.T) {
	vec := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, vec)
	assert.False(t, math.IsNaN(float64(vec[0])))
}
