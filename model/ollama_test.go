package model

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// Encode the prompt length so order preservation is observable.
		vec := []float32{float32(len(req.Prompt)), 1, 2}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vec})
	}))
}

func TestOllamaEmbedderPreservesOrder(t *testing.T) {
	srv := newEmbedServer(t)
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text", 5*time.Second, 0)

	texts := []string{"a", "bb", "cccc"}
	vecs, err := e.Embed(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), vecs[i][0])
	}
}

func TestOllamaEmbedderEmptyInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty batch")
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text", time.Second, 0)
	vecs, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
}

func TestOllamaEmbedderModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'missing-model' not found, try pulling it first"}`)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "missing-model", time.Second, 0)
	_, err := e.Embed(context.Background(), []string{"anything"})
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err))
	assert.Contains(t, err.Error(), "missing-model")
}

func TestOllamaEmbedderBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	e := NewOllamaEmbedder(srv.URL, "nomic-embed-text", time.Second, 0)
	_, err := e.Embed(context.Background(), []string{"anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
	assert.False(t, IsModelNotFound(err))
}

func TestOllamaGenerator(t *testing.T) {
	var gotReq ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  the sky is blue\n", Done: true})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:3b", 5*time.Second)
	out, err := g.Generate(context.Background(), "system rules", "the prompt", GenerateOptions{Temperature: 0.1, MaxTokens: 600})
	require.NoError(t, err)

	assert.Equal(t, "  the sky is blue\n", out)
	assert.Equal(t, "llama3.2:3b", gotReq.Model)
	assert.Equal(t, "system rules", gotReq.System)
	assert.Equal(t, "the prompt", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
	require.NotNil(t, gotReq.Options)
	assert.Equal(t, 600, gotReq.Options.NumPredict)
}

func TestOllamaGeneratorModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'nope' not found"}`)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "nope", time.Second)
	_, err := g.Generate(context.Background(), "", "prompt", GenerateOptions{})
	require.Error(t, err)
	assert.True(t, IsModelNotFound(err))
}

func TestOllamaGeneratorErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "something broke"})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "llama3.2:3b", time.Second)
	_, err := g.Generate(context.Background(), "", "prompt", GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}
