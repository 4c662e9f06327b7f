package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaEmbedder produces embeddings through the Ollama /api/embeddings
// endpoint, one request per text. An optional fixed delay between calls
// throttles load on shared inference hardware.
type OllamaEmbedder struct {
	baseURL  string
	model    string
	throttle time.Duration
	client   *http.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func NewOllamaEmbedder(baseURL, model string, timeout, throttle time.Duration) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		throttle: throttle,
		client:   &http.Client{Timeout: timeout},
	}
}

// Embed calls the endpoint once per text, preserving input order. A 404 with
// a "not found" body is reported as a missing model, anything else on the
// wire as a backend availability failure.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vec, err := e.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d/%d: %w", i+1, len(texts), err)
		}
		vecs = append(vecs, vec)
		if e.throttle > 0 {
			select {
			case <-time.After(e.throttle):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return vecs, nil
}

func (e *OllamaEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(string(respBody)), "not found") {
			return nil, &ModelNotFoundError{Model: e.model}
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrBackendUnavailable, resp.StatusCode, string(respBody))
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response for model %q", e.model)
	}
	return embedResp.Embedding, nil
}
