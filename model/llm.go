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

// GenerateOptions are the fixed decoding parameters passed per request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Generator is the opaque remote text-generation capability.
type Generator interface {
	Generate(ctx context.Context, system, prompt string, opts GenerateOptions) (string, error)
}

// OllamaGenerator produces completions through the Ollama /api/generate
// endpoint, non-streaming.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaGenOpts `json:"options,omitempty"`
}

type ollamaGenOpts struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
	Done     bool   `json:"done"`
}

func NewOllamaGenerator(baseURL, model string, timeout time.Duration) *OllamaGenerator {
	return &OllamaGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate renders one completion. A 404 "not found" names the missing
// model, other failures surface as backend unavailability or payload errors.
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string, opts GenerateOptions) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  g.model,
		System: system,
		Prompt: prompt,
		Stream: false,
		Options: &ollamaGenOpts{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(string(respBody)), "not found") {
			return "", &ModelNotFoundError{Model: g.model}
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrBackendUnavailable, resp.StatusCode, string(respBody))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("generate error from backend: %s", genResp.Error)
	}
	if genResp.Response == "" {
		return "", fmt.Errorf("unexpected generate payload: empty response field")
	}
	return genResp.Response, nil
}
